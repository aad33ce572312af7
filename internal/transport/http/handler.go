package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"got-trivia-service/internal/domain"
	"got-trivia-service/internal/quiz"
)

const sessionCookie = "quiz_session"

// Handler serves the quiz flow over cookie-token REST. Every mutating route
// follows load -> engine -> persist; state is only written back after the
// engine succeeds, so a failed event never leaves a half-applied session.
type Handler struct {
	engine *quiz.Engine
	store  quiz.SessionStore
}

func NewHandler(engine *quiz.Engine, store quiz.SessionStore) *Handler {
	return &Handler{engine: engine, store: store}
}

// Register wires the quiz routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /difficulty", h.handleSelectDifficulty)
	mux.HandleFunc("GET /questions/{slug}", h.handleGetQuestion)
	mux.HandleFunc("POST /questions/{slug}", h.handleSubmitChoice)
	mux.HandleFunc("GET /results", h.handleResults)
	mux.HandleFunc("POST /restart", h.handleRestart)
}

type errorBody struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type selectDifficultyRequest struct {
	Difficulty string `json:"difficulty"`
}

type selectDifficultyResponse struct {
	FirstSlug        string `json:"firstSlug"`
	QuestionCount    int    `json:"questionCount"`
	TimeLimitSeconds int    `json:"timeLimitSeconds"`
}

func (h *Handler) handleSelectDifficulty(w http.ResponseWriter, r *http.Request) {
	var req selectDifficultyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFieldError(w, "difficulty", "Select a level to continue")
		return
	}
	if req.Difficulty == "" {
		writeFieldError(w, "difficulty", "Select a level to continue")
		return
	}
	difficulty, err := domain.ParseDifficulty(req.Difficulty)
	if err != nil {
		writeFieldError(w, "difficulty", "Select a level to continue")
		return
	}

	result, err := h.engine.Start(r.Context(), difficulty)
	if err != nil {
		h.writeError(w, err)
		return
	}

	token := h.token(r)
	if token == "" {
		token = uuid.NewString()
	}
	if err := h.store.Put(r.Context(), token, result.Session); err != nil {
		h.writeError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, selectDifficultyResponse{
		FirstSlug:        result.FirstSlug,
		QuestionCount:    result.QuestionCount,
		TimeLimitSeconds: result.TimeLimitSeconds,
	})
}

// questionPayload withholds the canonical answer from clients.
type questionPayload struct {
	ID      string   `json:"id"`
	Slug    string   `json:"slug"`
	Text    string   `json:"text"`
	Choices []string `json:"choices"`
}

type questionResponse struct {
	Question         questionPayload   `json:"question"`
	PriorChoice      *string           `json:"priorChoice"`
	AttemptedCount   int               `json:"attemptedCount"`
	QuestionCount    int               `json:"questionCount"`
	TimeLimitSeconds int               `json:"timeLimitSeconds"`
	Difficulty       domain.Difficulty `json:"difficulty"`
}

func (h *Handler) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	view, updated, err := h.engine.Present(r.Context(), session, r.PathValue("slug"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	// Presenting a question counts it in the attempted set.
	if err := h.store.Put(r.Context(), h.token(r), updated); err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, questionResponse{
		Question: questionPayload{
			ID:      view.Question.ID,
			Slug:    view.Question.Slug,
			Text:    view.Question.Text,
			Choices: view.Question.Choices,
		},
		PriorChoice:      view.PriorChoice,
		AttemptedCount:   view.AttemptedCount,
		QuestionCount:    view.QuestionCount,
		TimeLimitSeconds: view.TimeLimitSeconds,
		Difficulty:       view.Difficulty,
	})
}

type submitChoiceRequest struct {
	QuestionID string  `json:"questionId"`
	Choice     *string `json:"choice"`
}

type submitChoiceResponse struct {
	Complete bool   `json:"complete"`
	NextSlug string `json:"nextSlug,omitempty"`
}

func (h *Handler) handleSubmitChoice(w http.ResponseWriter, r *http.Request) {
	var req submitChoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFieldError(w, "", "malformed choice payload")
		return
	}
	if req.QuestionID == "" {
		writeFieldError(w, "questionId", "questionId is required")
		return
	}

	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	updated, advance := h.engine.Submit(session, r.PathValue("slug"), req.QuestionID, req.Choice)
	if err := h.store.Put(r.Context(), h.token(r), updated); err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, submitChoiceResponse{
		Complete: advance.Complete,
		NextSlug: advance.NextSlug,
	})
}

func (h *Handler) handleResults(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	card, err := h.engine.ScoreSession(r.Context(), session)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (h *Handler) handleRestart(w http.ResponseWriter, r *http.Request) {
	if token := h.token(r); token != "" {
		if err := h.store.Delete(r.Context(), token); err != nil {
			h.writeError(w, err)
			return
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) token(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *Handler) loadSession(w http.ResponseWriter, r *http.Request) (quiz.Session, bool) {
	token := h.token(r)
	if token == "" {
		h.writeError(w, domain.ErrSessionNotFound)
		return quiz.Session{}, false
	}
	session, ok, err := h.store.Get(r.Context(), token)
	if err != nil {
		h.writeError(w, err)
		return quiz.Session{}, false
	}
	if !ok {
		h.writeError(w, domain.ErrSessionNotFound)
		return quiz.Session{}, false
	}
	return session, true
}

// writeError maps the domain error taxonomy onto HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrQuestionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrBadSession),
		errors.Is(err, domain.ErrInvalidDifficulty):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNoQuestions):
		status = http.StatusInternalServerError
	default:
		log.Printf("upstream failure: %v", err)
	}
	writeJSON(w, status, errorEnvelope{Error: errorBody{Message: err.Error()}})
}

func writeFieldError(w http.ResponseWriter, field, message string) {
	writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: errorBody{Message: message, Field: field}})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}
