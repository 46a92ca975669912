package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"devquiz/internal/domain"
	"devquiz/internal/infra/memory"
)

// QuestionRepository caches category pools in Redis and falls back to a loader on a miss.
// Each pool is stored as a JSON array under quiz:questions:{category}.
type QuestionRepository struct {
	client *redis.Client
	loader memory.QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewQuestionRepository(client *redis.Client, loader memory.QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) QuestionsByCategory(ctx context.Context, category domain.Category) ([]domain.Question, error) {
	key := questionsKey(category)
	if pool, ok := r.cached(ctx, key); ok {
		return pool, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if pool, ok := r.cached(ctx, key); ok {
			return pool, nil
		}

		pool, err := r.loader.LoadQuestions(ctx, category)
		if err != nil {
			return nil, err
		}
		if len(pool) == 0 {
			return pool, nil
		}

		raw, err := json.Marshal(pool)
		if err != nil {
			return nil, err
		}
		_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	pool := result.([]domain.Question)
	out := make([]domain.Question, len(pool))
	copy(out, pool)
	return out, nil
}

// Invalidate drops every cached pool, e.g. after reseeding.
func (r *QuestionRepository) Invalidate(ctx context.Context) error {
	keys := make([]string, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		keys = append(keys, questionsKey(c))
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *QuestionRepository) cached(ctx context.Context, key string) ([]domain.Question, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var pool []domain.Question
	if err := json.Unmarshal(raw, &pool); err != nil {
		// corrupt entry, reload
		_ = r.client.Del(ctx, key).Err()
		return nil, false
	}
	return pool, true
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

func questionsKey(category domain.Category) string {
	return "quiz:questions:" + string(category)
}
