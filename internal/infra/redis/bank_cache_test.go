package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/sot015/ocp-quiz-app/internal/app"
	"github.com/sot015/ocp-quiz-app/internal/domain"
	"github.com/sot015/ocp-quiz-app/internal/infra/memory"
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
	answer := 0
	return []domain.Question{
		{
			Text:    "Which CLI talks to an OpenShift cluster?",
			Options: []string{"oc", "ssh", "ftp"},
			Answer:  &answer,
		},
	}
}

func TestBankCacheStoresInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	source := &countingSource{QuestionSource: memory.NewStaticSource(sampleQuestions())}
	cache := NewBankCache(client, source, "default", time.Minute)

	questions, err := cache.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(questions) != 1 || source.calls != 1 {
		t.Fatalf("expected one load through the source, got %d questions, %d calls", len(questions), source.calls)
	}
	if !mr.Exists("quiz:bank:default") {
		t.Fatalf("expected bank cached in redis")
	}

	// Second call is served from Redis.
	if _, err := cache.Load(context.Background()); err != nil {
		t.Fatalf("load 2: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected cache hit, source calls %d", source.calls)
	}
}

func TestBankCacheExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	source := &countingSource{QuestionSource: memory.NewStaticSource(sampleQuestions())}
	cache := NewBankCache(client, source, "default", time.Minute)

	if _, err := cache.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := cache.Load(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if source.calls != 2 {
		t.Fatalf("expected reload after expiry, got %d calls", source.calls)
	}
}
