package domain

import "time"

// Phase is one discrete stage of the quiz lifecycle.
type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhaseQuestion Phase = "question"
	PhaseAnswer   Phase = "answer"
	PhaseReveal   Phase = "reveal"
	PhaseFinal    Phase = "final"
)

// Question models one multiple-choice question from the bank. Answer is nil
// when the bank does not define a correct option; such questions are shown
// but never scored.
type Question struct {
	Text    string   `json:"text" yaml:"text"`
	Options []string `json:"options" yaml:"options"`
	Answer  *int     `json:"answer,omitempty" yaml:"answer"`
	Note    string   `json:"note,omitempty" yaml:"note"`
}

// Scorable reports whether the question carries a usable correct-option index.
func (q Question) Scorable() bool {
	return q.Answer != nil && *q.Answer >= 0 && *q.Answer < len(q.Options)
}

// Public returns the player-facing view of q with the answer key stripped.
func (q Question) Public() PublicQuestion {
	return PublicQuestion{Text: q.Text, Options: q.Options, Note: q.Note}
}

// PublicQuestion is the view of the current question safe to send to players.
type PublicQuestion struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
	Note    string   `json:"note,omitempty"`
}

// PublicState is the phase/progress view served to every client. Epoch
// changes whenever the session is started or reset, so clients can detect a
// new round and discard stale local state.
type PublicState struct {
	Phase          Phase           `json:"phase"`
	Epoch          string          `json:"epoch"`
	QuestionIndex  int             `json:"questionIndex"`
	QuestionCount  int             `json:"questionCount"`
	PlayerCount    int             `json:"playerCount"`
	SubmittedCount int             `json:"submittedCount"`
	Question       *PublicQuestion `json:"question,omitempty"`
}

// AdminState adds the facilitator-only fields to PublicState.
type AdminState struct {
	PublicState
	Answer    *int     `json:"answer,omitempty"`
	Players   []string `json:"players"`
	Submitted []string `json:"submitted"`
}

// LeaderboardRow is a single ranked entry of a leaderboard snapshot.
type LeaderboardRow struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Leaderboard is a scoreboard view frozen at a reveal or final transition.
// Rows are sorted by score descending; ties keep registration order.
type Leaderboard struct {
	Rows       []LeaderboardRow `json:"rows"`
	Winners    []string         `json:"winners"`
	MaxScore   int              `json:"maxScore"`
	CapturedAt time.Time        `json:"capturedAt"`
}
