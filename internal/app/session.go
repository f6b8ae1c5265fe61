package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sot015/ocp-quiz-app/internal/domain"
)

// QuestionSource supplies the ordered question bank. Implementations may
// re-read a backing file or table on every call; the session only loads on
// Start, so edits take effect on the next round.
type QuestionSource interface {
	Load(ctx context.Context) ([]domain.Question, error)
}

// DefaultCooldown is the minimum interval between submissions from the same
// player. It is a spam guard, not a correctness invariant.
const DefaultCooldown = 10 * time.Second

// Session is the quiz aggregate: the phase state machine, player registry,
// answer board, score ledger and the frozen leaderboard snapshot. One
// Session serves the whole process; every mutation runs in a short critical
// section behind a single lock, which also serializes the all-players-
// submitted auto-advance check against concurrent submits and renames.
type Session struct {
	source   QuestionSource
	cooldown time.Duration
	now      func() time.Time

	mu             sync.RWMutex
	phase          domain.Phase
	current        int // -1 while in the lobby
	epoch          string
	questions      []domain.Question
	registry       *nameRegistry
	board          *answerBoard
	ledger         *scoreLedger
	lastSubmission map[string]time.Time
	snapshot       domain.Leaderboard
	subscribers    map[chan domain.PublicState]struct{}
}

// NewSession creates a session in the lobby phase. A non-positive cooldown
// disables the submission throttle.
func NewSession(source QuestionSource, cooldown time.Duration) *Session {
	return NewSessionWithClock(source, cooldown, time.Now)
}

// NewSessionWithClock allows deterministic timestamps in tests.
func NewSessionWithClock(source QuestionSource, cooldown time.Duration, now func() time.Time) *Session {
	return &Session{
		source:         source,
		cooldown:       cooldown,
		now:            now,
		phase:          domain.PhaseLobby,
		current:        -1,
		epoch:          uuid.NewString(),
		registry:       newNameRegistry(),
		board:          newAnswerBoard(),
		ledger:         newScoreLedger(),
		lastSubmission: make(map[string]time.Time),
		subscribers:    make(map[chan domain.PublicState]struct{}),
	}
}

// Register adds a player, or confirms an existing registration of the exact
// same name. Registration is allowed in any phase so latecomers can join
// mid-quiz; they simply start at zero.
func (s *Session) Register(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	canonical, err := s.registry.register(name)
	if err != nil {
		return "", err
	}
	s.ledger.init(nameKey(canonical))
	s.broadcastLocked()
	return canonical, nil
}

// Rename changes a player's display name while the session is still in the
// lobby, carrying over score, in-flight answer and throttle state. An
// unknown source name falls back to a fresh registration.
func (s *Session) Rename(previous, requested string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseLobby {
		return "", domain.ErrQuizInProgress
	}
	oldKey, _, ok := s.registry.resolve(previous)
	if !ok {
		canonical, err := s.registry.register(requested)
		if err != nil {
			return "", err
		}
		s.ledger.init(nameKey(canonical))
		s.broadcastLocked()
		return canonical, nil
	}

	newKey, canonical, err := s.registry.rename(oldKey, requested)
	if err != nil {
		return "", err
	}
	if newKey != oldKey {
		s.ledger.migrate(oldKey, newKey)
		s.board.migrate(oldKey, newKey)
		if ts, ok := s.lastSubmission[oldKey]; ok {
			delete(s.lastSubmission, oldKey)
			s.lastSubmission[newKey] = ts
		}
	}
	s.broadcastLocked()
	return canonical, nil
}

// Submit records a player's choice for the current question. A nil choice is
// a deliberate blank and scores as incorrect. Resubmitting overwrites the
// previous choice without double-counting; once every registered player has
// submitted, the session advances to the answer phase on its own.
func (s *Session) Submit(name string, choice *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseQuestion {
		return domain.ErrNotAcceptingAnswers
	}
	key, _, ok := s.registry.resolve(name)
	if !ok {
		return domain.ErrNotRegistered
	}
	now := s.now()
	if s.cooldown > 0 {
		if last, ok := s.lastSubmission[key]; ok && now.Sub(last) < s.cooldown {
			return domain.ErrRateLimited
		}
	}
	s.lastSubmission[key] = now
	s.board.record(key, choice, now)
	if s.board.submittedCount() >= s.registry.count() {
		s.enterAnswerLocked()
	}
	s.broadcastLocked()
	return nil
}

// Start begins a new round from the lobby, freezing the question bank for
// the whole session. An empty bank finishes the round immediately.
func (s *Session) Start(ctx context.Context) error {
	// Loading may hit a file or database; keep it outside the lock.
	questions, err := s.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseLobby {
		return domain.ErrQuizInProgress
	}
	s.questions = questions
	s.epoch = uuid.NewString()
	s.board.clear()
	if len(questions) == 0 {
		s.phase = domain.PhaseFinal
		s.snapshot = snapshotLeaderboard(s.registry, s.ledger, s.now())
	} else {
		s.phase = domain.PhaseQuestion
		s.current = 0
	}
	s.broadcastLocked()
	return nil
}

// Advance moves the session to its next phase. From final it is an
// idempotent no-op; from the lobby it is rejected.
func (s *Session) Advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case domain.PhaseLobby:
		return domain.ErrNotStarted
	case domain.PhaseQuestion:
		s.enterAnswerLocked()
	case domain.PhaseAnswer:
		s.phase = domain.PhaseReveal
		s.snapshot = snapshotLeaderboard(s.registry, s.ledger, s.now())
	case domain.PhaseReveal:
		if s.current+1 < len(s.questions) {
			s.current++
			s.phase = domain.PhaseQuestion
			s.board.clear()
		} else {
			s.phase = domain.PhaseFinal
			s.snapshot = snapshotLeaderboard(s.registry, s.ledger, s.now())
		}
	case domain.PhaseFinal:
		// terminal state, nothing to do
	}
	s.broadcastLocked()
	return nil
}

// enterAnswerLocked runs the single scoring pass and moves to the answer
// phase. The ledger's last-scored marker makes a replayed transition a no-op.
func (s *Session) enterAnswerLocked() {
	question := s.questions[s.current]
	if !question.Scorable() {
		log.Printf("question %d has no usable answer key, skipping scoring", s.current)
	}
	s.ledger.scoreOnce(s.current, question, s.board, s.registry)
	s.phase = domain.PhaseAnswer
}

// ResetSoft returns the session to the lobby keeping registered players,
// zeroing their scores.
func (s *Session) ResetSoft() {
	s.reset(false)
}

// ResetHard additionally wipes the player registry, so everyone must
// re-register for the next round.
func (s *Session) ResetHard() {
	s.reset(true)
}

func (s *Session) reset(hard bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase = domain.PhaseLobby
	s.current = -1
	s.epoch = uuid.NewString()
	s.questions = nil
	s.board.clear()
	s.lastSubmission = make(map[string]time.Time)
	s.snapshot = domain.Leaderboard{}
	if hard {
		s.registry.reset()
		s.ledger.reset()
	} else {
		s.ledger.zero()
	}
	s.broadcastLocked()
}

// PublicState reports phase, progress and the current question without the
// answer key. It is safe to poll at arbitrary frequency and never has side
// effects.
func (s *Session) PublicState() domain.PublicState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.publicStateLocked()
}

func (s *Session) publicStateLocked() domain.PublicState {
	state := domain.PublicState{
		Phase:          s.phase,
		Epoch:          s.epoch,
		QuestionIndex:  s.current,
		QuestionCount:  len(s.questions),
		PlayerCount:    s.registry.count(),
		SubmittedCount: s.board.submittedCount(),
	}
	if s.current >= 0 && s.current < len(s.questions) && s.phase != domain.PhaseFinal {
		question := s.questions[s.current].Public()
		state.Question = &question
	}
	return state
}

// AdminState is the facilitator view: public state plus the correct-option
// index and the per-player roster. Authorization happens at the transport
// layer.
func (s *Session) AdminState() domain.AdminState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	admin := domain.AdminState{PublicState: s.publicStateLocked()}
	if admin.Question != nil {
		admin.Answer = s.questions[s.current].Answer
	}
	for _, key := range s.registry.order {
		name := s.registry.canonical[key]
		admin.Players = append(admin.Players, name)
		if s.board.hasSubmitted(key) {
			admin.Submitted = append(admin.Submitted, name)
		}
	}
	return admin
}

// Leaderboard returns the snapshot frozen at the last reveal or final
// transition, so player-facing rankings never move mid-question. Before the
// first reveal it is the zero value.
func (s *Session) Leaderboard() domain.Leaderboard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Subscribe returns a channel receiving a public-state snapshot after every
// mutation. The caller must invoke the returned cancel function to avoid
// leaks.
func (s *Session) Subscribe() (<-chan domain.PublicState, func()) {
	ch := make(chan domain.PublicState, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.publicStateLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() {
	state := s.publicStateLocked()
	for ch := range s.subscribers {
		select {
		case ch <- state:
		default:
			// drop the stale update so a slow reader never blocks the session
			select {
			case <-ch:
			default:
			}
			ch <- state
		}
	}
}
