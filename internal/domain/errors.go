package domain

import "errors"

var (
	// ErrSessionNotFound is returned when no quiz session exists for the caller's token.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrBadSession indicates persisted session state that failed schema validation.
	ErrBadSession = errors.New("invalid session state")
	// ErrQuestionNotFound indicates a slug unknown to the content source (stale or tampered session).
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInvalidDifficulty indicates a difficulty outside the three tiers.
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	// ErrNoQuestions means a difficulty maps to zero questions; a configuration
	// fault, never a playable empty quiz.
	ErrNoQuestions = errors.New("no questions configured for difficulty")
)
