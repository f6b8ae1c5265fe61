package app

import "time"

// answerRecord holds a player's submission for the current question. Choice
// is nil when the player explicitly submitted a blank.
type answerRecord struct {
	choice      *int
	submittedAt time.Time
}

// answerBoard tracks submissions for the current question only. Values are
// last-write-wins; presence of a key marks the player as having submitted,
// so resubmitting never double-counts. The board is cleared on every
// transition to a new question.
type answerBoard struct {
	answers map[string]answerRecord
}

func newAnswerBoard() *answerBoard {
	return &answerBoard{answers: make(map[string]answerRecord)}
}

func (b *answerBoard) record(key string, choice *int, at time.Time) {
	b.answers[key] = answerRecord{choice: choice, submittedAt: at}
}

// choice returns the player's recorded option and whether they submitted at all.
func (b *answerBoard) choice(key string) (*int, bool) {
	rec, ok := b.answers[key]
	if !ok {
		return nil, false
	}
	return rec.choice, true
}

func (b *answerBoard) hasSubmitted(key string) bool {
	_, ok := b.answers[key]
	return ok
}

func (b *answerBoard) submittedCount() int {
	return len(b.answers)
}

func (b *answerBoard) migrate(oldKey, newKey string) {
	if rec, ok := b.answers[oldKey]; ok {
		delete(b.answers, oldKey)
		b.answers[newKey] = rec
	}
}

func (b *answerBoard) clear() {
	b.answers = make(map[string]answerRecord)
}
