package memory

import (
	"context"
	"testing"
	"time"

	"got-trivia-service/internal/domain"
)

func TestQuestionCacheLoadsOnce(t *testing.T) {
	loader := &countingLoader{
		QuestionLoader: NewStaticSource(map[string][]domain.Question{
			"easy-ref": sampleQuestions(),
		}),
	}
	cache := NewQuestionCache(loader, time.Minute)

	if _, err := cache.QuestionsByDifficulty(context.Background(), "easy-ref"); err != nil {
		t.Fatalf("load questions: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	questions, err := cache.QuestionsByDifficulty(context.Background(), "easy-ref")
	if err != nil {
		t.Fatalf("load questions 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
}

func TestQuestionCacheKeysByReference(t *testing.T) {
	loader := &countingLoader{
		QuestionLoader: NewStaticSource(map[string][]domain.Question{
			"easy-ref": sampleQuestions(),
			"top-ref":  sampleQuestions()[:1],
		}),
	}
	cache := NewQuestionCache(loader, time.Minute)

	if _, err := cache.QuestionsByDifficulty(context.Background(), "easy-ref"); err != nil {
		t.Fatalf("load easy: %v", err)
	}
	if _, err := cache.QuestionsByDifficulty(context.Background(), "top-ref"); err != nil {
		t.Fatalf("load top: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected one load per reference, got %d", loader.calls)
	}
}

type countingLoader struct {
	QuestionLoader
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
