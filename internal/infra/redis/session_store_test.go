package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"got-trivia-service/internal/domain"
	"got-trivia-service/internal/quiz"
)

func TestSessionStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	if _, ok, err := store.Get(ctx, "tok"); err != nil || ok {
		t.Fatalf("expected absent session, got ok=%v err=%v", ok, err)
	}

	choice := "Winterfell"
	session := quiz.Session{
		Version:        quiz.SessionVersion,
		Difficulty:     domain.DifficultyLegendary,
		RemainingSlugs: []string{"s2"},
		UserChoices: []domain.UserChoice{
			{QuestionID: "q1", Slug: "s1", Choice: &choice},
		},
		AttemptedSlugs: []string{"s1"},
		QuestionCount:  2,
	}
	if err := store.Put(ctx, "tok", session); err != nil {
		t.Fatalf("put: %v", err)
	}
	if !mr.Exists("quiz:session:tok") {
		t.Fatalf("expected redis key to be set")
	}

	loaded, ok, err := store.Get(ctx, "tok")
	if err != nil || !ok {
		t.Fatalf("expected session back, ok=%v err=%v", ok, err)
	}
	if loaded.Difficulty != domain.DifficultyLegendary || len(loaded.UserChoices) != 1 {
		t.Fatalf("unexpected session %+v", loaded)
	}

	if err := store.Delete(ctx, "tok"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("quiz:session:tok") {
		t.Fatalf("expected redis key to be removed")
	}
}

func TestSessionStoreExpiresWithTTL(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	if err := store.Put(ctx, "tok", quiz.Session{Version: quiz.SessionVersion, Difficulty: domain.DifficultyEasy}); err != nil {
		t.Fatalf("put: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, ok, _ := store.Get(ctx, "tok"); ok {
		t.Fatalf("expected session expired")
	}
}

func TestSessionStoreRejectsTamperedRecord(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	mr.Set("quiz:session:tok", `{"version":99}`)
	_, _, err = store.Get(ctx, "tok")
	if !errors.Is(err, domain.ErrBadSession) {
		t.Fatalf("expected ErrBadSession, got %v", err)
	}
}
