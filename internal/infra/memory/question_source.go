package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"got-trivia-service/internal/domain"
)

// QuestionLoader fetches question sets from a backing store (CMS, Postgres).
type QuestionLoader interface {
	QuestionsByDifficulty(ctx context.Context, ref string) ([]domain.Question, error)
}

// QuestionCache caches question sets per content reference with TTL to avoid
// hammering the upstream source on every request.
type QuestionCache struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedSet
}

type cachedSet struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionCache(loader QuestionLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedSet),
	}
}

func (c *QuestionCache) QuestionsByDifficulty(ctx context.Context, ref string) ([]domain.Question, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[ref]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.questions, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(ref, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[ref]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.questions, nil
		}
		c.mu.RUnlock()

		questions, err := c.loader.QuestionsByDifficulty(ctx, ref)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[ref] = cachedSet{
			questions: questions,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// StaticSource is a loader backed by an in-memory map keyed by content
// reference (useful for tests and the demo fallback).
type StaticSource struct {
	sets map[string][]domain.Question
}

func NewStaticSource(sets map[string][]domain.Question) *StaticSource {
	return &StaticSource{sets: sets}
}

func (s *StaticSource) QuestionsByDifficulty(_ context.Context, ref string) ([]domain.Question, error) {
	return s.sets[ref], nil
}
