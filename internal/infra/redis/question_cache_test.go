package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"got-trivia-service/internal/domain"
	"got-trivia-service/internal/infra/memory"
)

func TestQuestionCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		QuestionLoader: memory.NewStaticSource(map[string][]domain.Question{
			"easy-ref": sampleQuestions(),
		}),
	}
	cache := NewQuestionCache(client, loader, time.Minute)

	questions, err := cache.QuestionsByDifficulty(context.Background(), "easy-ref")
	if err != nil {
		t.Fatalf("load questions: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if !mr.Exists("questions:easy-ref") {
		t.Fatalf("expected cached key in redis")
	}

	// Second call should hit redis, loader not incremented.
	_, _ = cache.QuestionsByDifficulty(context.Background(), "easy-ref")
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
}

func TestQuestionCacheReloadsAfterExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	loader := &countingLoader{
		QuestionLoader: memory.NewStaticSource(map[string][]domain.Question{
			"easy-ref": sampleQuestions(),
		}),
	}
	cache := NewQuestionCache(client, loader, time.Minute)

	if _, err := cache.QuestionsByDifficulty(context.Background(), "easy-ref"); err != nil {
		t.Fatalf("load: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := cache.QuestionsByDifficulty(context.Background(), "easy-ref"); err != nil {
		t.Fatalf("load after expiry: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls=%d", loader.calls)
	}
}

type countingLoader struct {
	memory.QuestionLoader
	calls int
}

func (l *countingLoader) QuestionsByDifficulty(ctx context.Context, ref string) ([]domain.Question, error) {
	l.calls++
	return l.QuestionLoader.QuestionsByDifficulty(ctx, ref)
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:      "q1",
			Slug:    "stark-sigil",
			Text:    "What animal is the sigil of House Stark?",
			Choices: []string{"Lion", "Direwolf", "Stag"},
			Answer:  "Direwolf",
		},
		{
			ID:      "q2",
			Slug:    "stark-seat",
			Text:    "What is the seat of House Stark?",
			Choices: []string{"Casterly Rock", "Winterfell"},
			Answer:  "Winterfell",
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
