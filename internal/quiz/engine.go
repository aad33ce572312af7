package quiz

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"got-trivia-service/internal/domain"
)

// QuestionSource loads the question set behind a content reference. The
// lookup is the engine's only suspension point; implementations must bound
// it (timeouts live in the infra layer).
type QuestionSource interface {
	QuestionsByDifficulty(ctx context.Context, ref string) ([]domain.Question, error)
}

// DifficultyRefs binds each tier to its opaque content reference.
type DifficultyRefs struct {
	Easy         string
	Intermediate string
	Legendary    string
}

// Ref resolves a difficulty to its content reference. The mapping is total:
// every tier has exactly one reference, validated at engine construction.
func (r DifficultyRefs) Ref(d domain.Difficulty) string {
	switch d {
	case domain.DifficultyIntermediate:
		return r.Intermediate
	case domain.DifficultyLegendary:
		return r.Legendary
	default:
		return r.Easy
	}
}

// Validate checks that all three tiers are bound.
func (r DifficultyRefs) Validate() error {
	for _, d := range domain.Difficulties {
		if r.Ref(d) == "" {
			return fmt.Errorf("no content reference bound for difficulty %s", d)
		}
	}
	return nil
}

// DefaultDrawSize is how many questions one attempt draws from the pool.
const DefaultDrawSize = 10

// Engine computes quiz state transitions. All operations take the session by
// value and return the updated record; nothing is persisted here.
type Engine struct {
	source   QuestionSource
	refs     DifficultyRefs
	drawSize int

	mu  sync.Mutex
	rnd *rand.Rand
}

// Option tweaks engine construction.
type Option func(*Engine)

// WithRand injects the randomness source, mainly for deterministic tests.
func WithRand(rnd *rand.Rand) Option {
	return func(e *Engine) { e.rnd = rnd }
}

// WithDrawSize caps how many questions one quiz attempt draws; 0 means all.
func WithDrawSize(n int) Option {
	return func(e *Engine) { e.drawSize = n }
}

func NewEngine(source QuestionSource, refs DifficultyRefs, opts ...Option) (*Engine, error) {
	if err := refs.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		source:   source,
		refs:     refs,
		drawSize: DefaultDrawSize,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// StartResult is the outcome of a difficulty selection.
type StartResult struct {
	Session          Session
	FirstSlug        string
	QuestionCount    int
	TimeLimitSeconds int
}

// Start begins a fresh quiz attempt: draws a random question subset for the
// difficulty, picks the first question at random, and returns the initial
// session with the remaining slugs. A tier with zero questions is a fatal
// configuration error, never an empty-but-complete quiz.
func (e *Engine) Start(ctx context.Context, difficulty domain.Difficulty) (StartResult, error) {
	if _, err := domain.ParseDifficulty(string(difficulty)); err != nil {
		return StartResult{}, err
	}

	questions, err := e.source.QuestionsByDifficulty(ctx, e.refs.Ref(difficulty))
	if err != nil {
		return StartResult{}, fmt.Errorf("load questions: %w", err)
	}
	if len(questions) == 0 {
		return StartResult{}, fmt.Errorf("%w: %s", domain.ErrNoQuestions, difficulty)
	}

	slugs := e.drawSlugs(questions)
	first := slugs[e.intn(len(slugs))]

	remaining := make([]string, 0, len(slugs)-1)
	for _, slug := range slugs {
		if slug != first {
			remaining = append(remaining, slug)
		}
	}

	session := Session{
		Version:        SessionVersion,
		Difficulty:     difficulty,
		RemainingSlugs: remaining,
		UserChoices:    []domain.UserChoice{},
		AttemptedSlugs: []string{},
		QuestionCount:  len(slugs),
	}
	return StartResult{
		Session:          session,
		FirstSlug:        first,
		QuestionCount:    len(slugs),
		TimeLimitSeconds: difficulty.TimeLimitSeconds(),
	}, nil
}

// QuestionView is everything the presentation layer needs for one question.
type QuestionView struct {
	Question         domain.Question
	PriorChoice      *string
	AttemptedCount   int
	QuestionCount    int
	TimeLimitSeconds int
	Difficulty       domain.Difficulty
}

// Present resolves a question by slug and returns the view plus the updated
// session. Reading a question mutates the attempted set (see markVisited),
// so callers must persist the returned session. On failure the input session
// is returned unmodified.
func (e *Engine) Present(ctx context.Context, session Session, slug string) (QuestionView, Session, error) {
	questions, err := e.source.QuestionsByDifficulty(ctx, e.refs.Ref(session.Difficulty))
	if err != nil {
		return QuestionView{}, session, fmt.Errorf("load questions: %w", err)
	}

	var question domain.Question
	found := false
	for _, q := range questions {
		if q.Slug == slug {
			question, found = q, true
			break
		}
	}
	if !found {
		return QuestionView{}, session, fmt.Errorf("%w: slug %q", domain.ErrQuestionNotFound, slug)
	}

	updated := session.clone()
	updated.markVisited(slug)

	view := QuestionView{
		Question:         question,
		AttemptedCount:   updated.AttemptedCount(),
		QuestionCount:    updated.QuestionCount,
		TimeLimitSeconds: updated.Difficulty.TimeLimitSeconds(),
		Difficulty:       updated.Difficulty,
	}
	if prior, ok := updated.priorChoice(slug); ok {
		view.PriorChoice = prior.Choice
	}
	return view, updated, nil
}

// Advance tells the caller where to go after a submission.
type Advance struct {
	Complete bool
	NextSlug string
}

// Submit records the user's choice for a question and selects the next one.
// Resubmission for the same slug is idempotent (the prior choice is
// replaced). A nil choice records "time expired, nothing picked". When no
// slugs remain the quiz is complete; otherwise the next slug is drawn
// uniformly at random from the remaining set, so it can never be the slug
// just submitted.
func (e *Engine) Submit(session Session, slug, questionID string, choice *string) (Session, Advance) {
	updated := session.clone()
	updated.removeRemaining(slug)
	updated.recordChoice(questionID, slug, choice)

	if updated.Complete() {
		return updated, Advance{Complete: true}
	}
	next := updated.RemainingSlugs[e.intn(len(updated.RemainingSlugs))]
	return updated, Advance{NextSlug: next}
}

// ScoreSession derives the results view from the recorded choices. Pure:
// identical state yields identical output. Users who never finished are
// scored on what they answered.
func (e *Engine) ScoreSession(ctx context.Context, session Session) (domain.Scorecard, error) {
	questions, err := e.source.QuestionsByDifficulty(ctx, e.refs.Ref(session.Difficulty))
	if err != nil {
		return domain.Scorecard{}, fmt.Errorf("load questions: %w", err)
	}

	byID := make(map[string]domain.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	card := domain.Scorecard{
		Results:    make([]domain.QuestionResult, 0, len(session.UserChoices)),
		TotalCount: len(session.UserChoices),
	}
	for _, uc := range session.UserChoices {
		question := byID[uc.QuestionID]
		correct := uc.Choice != nil && question.ID != "" && *uc.Choice == question.Answer
		if correct {
			card.CorrectCount++
		}
		card.Results = append(card.Results, domain.QuestionResult{
			Question: question,
			Choice:   uc.Choice,
			Correct:  correct,
		})
	}
	if card.TotalCount > 0 {
		card.Percentage = int(math.Round(100 * float64(card.CorrectCount) / float64(card.TotalCount)))
	}
	return card, nil
}

// drawSlugs samples up to drawSize slugs uniformly without replacement.
func (e *Engine) drawSlugs(questions []domain.Question) []string {
	n := len(questions)
	size := e.drawSize
	if size <= 0 || size > n {
		size = n
	}

	e.mu.Lock()
	perm := e.rnd.Perm(n)
	e.mu.Unlock()

	slugs := make([]string, 0, size)
	for _, idx := range perm[:size] {
		slugs = append(slugs, questions[idx].Slug)
	}
	return slugs
}

// intn is a uniform pick over [0, n), safe for concurrent requests.
func (e *Engine) intn(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rnd.Intn(n)
}
