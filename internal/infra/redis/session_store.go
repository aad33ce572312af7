package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"got-trivia-service/internal/quiz"
)

// SessionStore keeps serialized session records in Redis with a TTL, keyed
// by the client-held token. There is no read-modify-write atomicity across
// one user event; racing events for the same token are last-write-wins.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Get(ctx context.Context, token string) (quiz.Session, bool, error) {
	data, err := s.client.Get(ctx, s.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return quiz.Session{}, false, nil
	}
	if err != nil {
		return quiz.Session{}, false, err
	}
	session, err := quiz.DecodeSession(data)
	if err != nil {
		return quiz.Session{}, false, err
	}
	return session, true, nil
}

func (s *SessionStore) Put(ctx context.Context, token string, session quiz.Session) error {
	data, err := quiz.EncodeSession(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(token), data, s.ttl).Err()
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.key(token)).Err()
}

func (s *SessionStore) key(token string) string {
	return "quiz:session:" + token
}
