package memory

import (
	"context"
	"sync"

	"got-trivia-service/internal/quiz"
)

// SessionStore is an in-memory implementation of quiz.SessionStore. Records
// round-trip through the JSON codec so the schema validation path is the
// same as in production.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string][]byte),
	}
}

func (s *SessionStore) Get(_ context.Context, token string) (quiz.Session, bool, error) {
	s.mu.RLock()
	data, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return quiz.Session{}, false, nil
	}
	session, err := quiz.DecodeSession(data)
	if err != nil {
		return quiz.Session{}, false, err
	}
	return session, true, nil
}

func (s *SessionStore) Put(_ context.Context, token string, session quiz.Session) error {
	data, err := quiz.EncodeSession(session)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sessions[token] = data
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}
