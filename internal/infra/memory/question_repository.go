package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"devquiz/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches a category's questions from a backing store.
type QuestionLoader interface {
	LoadQuestions(ctx context.Context, category domain.Category) ([]domain.Question, error)
}

// QuestionRepository caches category pools with TTL to avoid repeated DB hits.
type QuestionRepository struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[domain.Category]cachedPool
}

type cachedPool struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionRepository(loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[domain.Category]cachedPool),
	}
}

func (r *QuestionRepository) QuestionsByCategory(ctx context.Context, category domain.Category) ([]domain.Question, error) {
	if pool, ok := r.cached(category, r.clock()); ok {
		return pool, nil
	}

	result, err, _ := r.sf.Do(string(category), func() (interface{}, error) {
		now := r.clock()
		if pool, ok := r.cached(category, now); ok {
			return pool, nil
		}

		pool, err := r.loader.LoadQuestions(ctx, category)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[category] = cachedPool{
			questions: pool,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return clonePool(result.([]domain.Question)), nil
}

func (r *QuestionRepository) cached(category domain.Category, now time.Time) ([]domain.Question, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[category]
	if !ok || !entry.expiresAt.After(now) {
		return nil, false
	}
	return clonePool(entry.questions), true
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

func clonePool(pool []domain.Question) []domain.Question {
	out := make([]domain.Question, len(pool))
	copy(out, pool)
	return out
}

// StaticQuestionLoader serves a fixed question set, used when no database is configured.
type StaticQuestionLoader struct {
	byCategory map[domain.Category][]domain.Question
}

func NewStaticQuestionLoader(questions []domain.Question) *StaticQuestionLoader {
	byCategory := make(map[domain.Category][]domain.Question)
	for _, q := range questions {
		byCategory[q.Category] = append(byCategory[q.Category], q)
	}
	return &StaticQuestionLoader{byCategory: byCategory}
}

func (l *StaticQuestionLoader) LoadQuestions(_ context.Context, category domain.Category) ([]domain.Question, error) {
	return clonePool(l.byCategory[category]), nil
}

// QuestionsByCategory lets the loader stand in for a repository without caching.
func (l *StaticQuestionLoader) QuestionsByCategory(ctx context.Context, category domain.Category) ([]domain.Question, error) {
	return l.LoadQuestions(ctx, category)
}
