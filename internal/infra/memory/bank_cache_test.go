package memory

import (
	"context"
	"testing"
	"time"

	"github.com/sot015/ocp-quiz-app/internal/app"
	"github.com/sot015/ocp-quiz-app/internal/domain"
)

type countingSource struct {
	app.QuestionSource
	calls int
}

func (s *countingSource) Load(ctx context.Context) ([]domain.Question, error) {
	s.calls++
	return s.QuestionSource.Load(ctx)
}

func sampleQuestions() []domain.Question {
	answer := 1
	return []domain.Question{
		{
			Text:    "What is 2 + 2?",
			Options: []string{"3", "4", "5"},
			Answer:  &answer,
		},
	}
}

func TestBankCacheCaches(t *testing.T) {
	source := &countingSource{QuestionSource: NewStaticSource(sampleQuestions())}
	cache := NewBankCache(source, time.Minute)

	if _, err := cache.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected source loaded once, got %d", source.calls)
	}

	questions, err := cache.Load(context.Background())
	if err != nil {
		t.Fatalf("load 2: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected cache hit, source calls %d", source.calls)
	}
	if len(questions) != 1 {
		t.Fatalf("expected cached bank, got %d questions", len(questions))
	}
}

func TestBankCacheExpires(t *testing.T) {
	source := &countingSource{QuestionSource: NewStaticSource(sampleQuestions())}
	cache := NewBankCache(source, time.Second)

	now := time.Date(2025, 8, 12, 10, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }

	if _, err := cache.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	now = now.Add(5 * time.Second)
	if _, err := cache.Load(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if source.calls != 2 {
		t.Fatalf("expected expired entry to reload, got %d calls", source.calls)
	}
}
