package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/sot015/ocp-quiz-app/internal/app"
	"github.com/sot015/ocp-quiz-app/internal/domain"
)

// BankCache keeps the marshalled question bank in Redis so several replicas
// can share one hot copy: SET quiz:bank:{id} {json} EX ttl. On a miss it
// falls back to the wrapped source, coalescing concurrent reloads.
type BankCache struct {
	client *redis.Client
	source app.QuestionSource
	bankID string
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewBankCache(client *redis.Client, source app.QuestionSource, bankID string, ttl time.Duration) *BankCache {
	return &BankCache{
		client: client,
		source: source,
		bankID: bankID,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *BankCache) Load(ctx context.Context) ([]domain.Question, error) {
	key := c.key()

	if cached, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var questions []domain.Question
		if err := json.Unmarshal(cached, &questions); err == nil {
			return questions, nil
		}
		// corrupt entry, fall through and rebuild it
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check the cache in case another goroutine filled it.
		if cached, err := c.client.Get(ctx, key).Bytes(); err == nil {
			var questions []domain.Question
			if err := json.Unmarshal(cached, &questions); err == nil {
				return questions, nil
			}
		}

		questions, err := c.source.Load(ctx)
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(questions); err == nil {
			// best-effort: serving the bank must not depend on Redis health
			_ = c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *BankCache) key() string {
	return "quiz:bank:" + c.bankID
}

func (c *BankCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
