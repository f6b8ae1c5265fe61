package app

import (
	"github.com/sot015/ocp-quiz-app/internal/domain"
)

// scoreLedger owns cumulative per-player scores. Entries are created at
// registration time; looking up a missing entry indicates a state-machine
// bug and panics rather than materializing a zero.
type scoreLedger struct {
	scores     map[string]int
	lastScored int // highest question index already scored, -1 initially
}

func newScoreLedger() *scoreLedger {
	return &scoreLedger{scores: make(map[string]int), lastScored: -1}
}

func (l *scoreLedger) init(key string) {
	if _, ok := l.scores[key]; !ok {
		l.scores[key] = 0
	}
}

func (l *scoreLedger) score(key string) int {
	score, ok := l.scores[key]
	if !ok {
		panic("quiz: score lookup for unregistered player " + key)
	}
	return score
}

func (l *scoreLedger) migrate(oldKey, newKey string) {
	if score, ok := l.scores[oldKey]; ok {
		delete(l.scores, oldKey)
		l.scores[newKey] = score
	}
}

// scoreOnce applies the scoring pass for one question: each registered
// player gains 1 point iff their last recorded choice equals the correct
// option. Replays of an already-scored index and questions without a usable
// answer key are no-ops. Returns whether scores were updated.
func (l *scoreLedger) scoreOnce(index int, question domain.Question, board *answerBoard, registry *nameRegistry) bool {
	if index <= l.lastScored {
		return false
	}
	l.lastScored = index
	if !question.Scorable() {
		return false
	}
	correct := *question.Answer
	for _, key := range registry.order {
		choice, ok := board.choice(key)
		if !ok || choice == nil {
			continue
		}
		if *choice == correct {
			l.scores[key]++
		}
	}
	return true
}

// zero resets all scores to 0 but keeps the registered entries.
func (l *scoreLedger) zero() {
	for key := range l.scores {
		l.scores[key] = 0
	}
	l.lastScored = -1
}

func (l *scoreLedger) reset() {
	l.scores = make(map[string]int)
	l.lastScored = -1
}
