package quiz

import (
	"context"
	"encoding/json"
	"fmt"

	"got-trivia-service/internal/domain"
)

// SessionVersion is bumped whenever the persisted session schema changes.
// Decoding a record with a different version fails with ErrBadSession so a
// stale cookie can never be interpreted under the wrong schema.
const SessionVersion = 1

// Session is the full per-attempt record. It is passed by value into and out
// of every engine operation; callers own the load -> mutate -> persist
// sequence and must write back whatever the engine returns.
type Session struct {
	Version        int                 `json:"version"`
	Difficulty     domain.Difficulty   `json:"difficulty"`
	RemainingSlugs []string            `json:"remainingSlugs"`
	UserChoices    []domain.UserChoice `json:"userChoices"`
	AttemptedSlugs []string            `json:"attemptedSlugs"`
	QuestionCount  int                 `json:"questionCount"`
}

// SessionStore is the opaque key-value bag holding session records, keyed by
// a client-held token. Racing writes for the same token are last-write-wins.
type SessionStore interface {
	Get(ctx context.Context, token string) (Session, bool, error)
	Put(ctx context.Context, token string, session Session) error
	Delete(ctx context.Context, token string) error
}

// Complete reports whether the quiz is finished: no slugs remain to present.
func (s Session) Complete() bool {
	return len(s.RemainingSlugs) == 0
}

// AttemptedCount backs the "N of M" progress counter.
func (s Session) AttemptedCount() int {
	return len(s.AttemptedSlugs)
}

// markVisited toggles slug membership in the attempted set: a first visit
// counts the question, a revisit outside the forward flow uncounts it. This
// keeps the progress counter stable across reloads of the same question.
// The toggle policy is confined to this one method.
func (s *Session) markVisited(slug string) {
	for i, attempted := range s.AttemptedSlugs {
		if attempted == slug {
			s.AttemptedSlugs = append(s.AttemptedSlugs[:i], s.AttemptedSlugs[i+1:]...)
			return
		}
	}
	s.AttemptedSlugs = append(s.AttemptedSlugs, slug)
}

// removeRemaining drops slug from the remaining set if present. Idempotent.
func (s *Session) removeRemaining(slug string) {
	for i, remaining := range s.RemainingSlugs {
		if remaining == slug {
			s.RemainingSlugs = append(s.RemainingSlugs[:i], s.RemainingSlugs[i+1:]...)
			return
		}
	}
}

// recordChoice replaces any prior choice for the slug, then appends the new
// one, so at most one UserChoice exists per slug at any time.
func (s *Session) recordChoice(questionID, slug string, choice *string) {
	for i, uc := range s.UserChoices {
		if uc.Slug == slug {
			s.UserChoices = append(s.UserChoices[:i], s.UserChoices[i+1:]...)
			break
		}
	}
	s.UserChoices = append(s.UserChoices, domain.UserChoice{
		QuestionID: questionID,
		Slug:       slug,
		Choice:     choice,
	})
}

// priorChoice returns the recorded choice for slug, if any.
func (s Session) priorChoice(slug string) (domain.UserChoice, bool) {
	for _, uc := range s.UserChoices {
		if uc.Slug == slug {
			return uc, true
		}
	}
	return domain.UserChoice{}, false
}

// clone deep-copies the session so engine operations never alias the
// caller's slices; a failed operation leaves the input untouched.
func (s Session) clone() Session {
	out := s
	out.RemainingSlugs = append([]string(nil), s.RemainingSlugs...)
	out.AttemptedSlugs = append([]string(nil), s.AttemptedSlugs...)
	out.UserChoices = append([]domain.UserChoice(nil), s.UserChoices...)
	return out
}

// EncodeSession serializes a session for the store.
func EncodeSession(s Session) ([]byte, error) {
	s.Version = SessionVersion
	return json.Marshal(s)
}

// DecodeSession parses and validates a persisted session record.
func DecodeSession(data []byte) (Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("%w: %v", domain.ErrBadSession, err)
	}
	if err := s.validate(); err != nil {
		return Session{}, err
	}
	if s.Difficulty == "" {
		s.Difficulty = domain.DifficultyEasy
	}
	return s, nil
}

func (s Session) validate() error {
	if s.Version != SessionVersion {
		return fmt.Errorf("%w: schema version %d", domain.ErrBadSession, s.Version)
	}
	if s.Difficulty != "" {
		if _, err := domain.ParseDifficulty(string(s.Difficulty)); err != nil {
			return fmt.Errorf("%w: difficulty %q", domain.ErrBadSession, s.Difficulty)
		}
	}
	seen := make(map[string]struct{}, len(s.RemainingSlugs))
	for _, slug := range s.RemainingSlugs {
		if _, dup := seen[slug]; dup {
			return fmt.Errorf("%w: duplicate remaining slug %q", domain.ErrBadSession, slug)
		}
		seen[slug] = struct{}{}
	}
	return nil
}
