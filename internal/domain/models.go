package domain

import "fmt"

// Difficulty is one of the three quiz tiers. Each tier maps to exactly one
// per-question time limit and one content reference (the reference binding
// lives in configuration, see quiz.DifficultyRefs).
type Difficulty string

const (
	DifficultyEasy         Difficulty = "Easy"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyLegendary    Difficulty = "Legendary"
)

// Difficulties lists every tier, in ascending order of pain.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyIntermediate, DifficultyLegendary}

// ParseDifficulty validates a raw tier name.
func ParseDifficulty(raw string) (Difficulty, error) {
	switch Difficulty(raw) {
	case DifficultyEasy, DifficultyIntermediate, DifficultyLegendary:
		return Difficulty(raw), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDifficulty, raw)
}

// TimeLimitSeconds is the per-question countdown for the tier.
// An unset difficulty falls back to Easy.
func (d Difficulty) TimeLimitSeconds() int {
	switch d {
	case DifficultyIntermediate:
		return 30
	case DifficultyLegendary:
		return 20
	default:
		return 40
	}
}

// Question is a single trivia question as served by the content source.
// Immutable once fetched; Answer is guaranteed by the source to be one of
// Choices and is never re-validated here.
type Question struct {
	ID      string   `json:"id"`
	Slug    string   `json:"slug"`
	Text    string   `json:"text"`
	Choices []string `json:"choices"`
	Answer  string   `json:"answer"`
}

// UserChoice records the user's pick for one question. A nil Choice means
// the timer expired with nothing selected, which is a valid terminal state.
type UserChoice struct {
	QuestionID string  `json:"questionId"`
	Slug       string  `json:"slug"`
	Choice     *string `json:"choice"`
}

// QuestionResult pairs a question with the user's recorded choice.
type QuestionResult struct {
	Question Question `json:"question"`
	Choice   *string  `json:"choice"`
	Correct  bool     `json:"correct"`
}

// Scorecard is the results view derived from a finished (or abandoned)
// session. TotalCount counts recorded choices, not the drawn question set.
type Scorecard struct {
	Results      []QuestionResult `json:"results"`
	CorrectCount int              `json:"correctCount"`
	TotalCount   int              `json:"totalCount"`
	Percentage   int              `json:"percentage"`
}
