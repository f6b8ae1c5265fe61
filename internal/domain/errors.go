package domain

import "errors"

var (
	// ErrInvalidName is returned for empty or oversized player names.
	ErrInvalidName = errors.New("name must be between 1 and 40 characters")
	// ErrNameTaken is returned when a name collides case-insensitively with another player.
	ErrNameTaken = errors.New("name is already taken")
	// ErrNotRegistered is returned when a player acts before registering.
	ErrNotRegistered = errors.New("player is not registered")
	// ErrQuizInProgress blocks renames and restarts outside the lobby.
	ErrQuizInProgress = errors.New("quiz is already in progress")
	// ErrNotAcceptingAnswers is returned for submissions outside the question phase.
	ErrNotAcceptingAnswers = errors.New("answers are not being accepted right now")
	// ErrRateLimited is returned when a player resubmits within the cooldown window.
	ErrRateLimited = errors.New("submitted too recently, please wait")
	// ErrNotStarted is returned when advancing a session still in the lobby.
	ErrNotStarted = errors.New("quiz has not been started")
	// ErrUnauthorized is returned for admin operations without a valid credential.
	ErrUnauthorized = errors.New("unauthorized")
)
