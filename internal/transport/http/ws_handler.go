package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"got-trivia-service/internal/domain"
	"got-trivia-service/internal/quiz"
)

// WSHandler drives a whole quiz attempt over one websocket: start with a
// difficulty, receive questions, answer each, get the scorecard at the end.
// The session lives in connection scope; messages arrive serialized, so the
// single-actor model of the engine holds without extra locking.
type WSHandler struct {
	engine   *quiz.Engine
	upgrader websocket.Upgrader
}

func NewWSHandler(engine *quiz.Engine) *WSHandler {
	return &WSHandler{
		engine: engine,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Difficulty string `json:"difficulty"`
}

type answerPayload struct {
	Choice *string `json:"choice"`
}

type wsQuestion struct {
	Question         questionPayload `json:"question"`
	PriorChoice      *string         `json:"priorChoice"`
	AttemptedCount   int             `json:"attemptedCount"`
	QuestionCount    int             `json:"questionCount"`
	TimeLimitSeconds int             `json:"timeLimitSeconds"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type wsError struct {
	Message string `json:"message"`
}

// ServePlay upgrades the connection and runs the quiz loop until the client
// disconnects or the attempt completes.
func (h *WSHandler) ServePlay(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	var (
		session     quiz.Session
		started     bool
		currentSlug string
		currentID   string
	)

	sendErr := func(msg string) bool {
		return conn.WriteJSON(outboundMessage[wsError]{Type: "error", Payload: wsError{Message: msg}}) == nil
	}
	sendQuestion := func(slug string) bool {
		view, updated, err := h.engine.Present(ctx, session, slug)
		if err != nil {
			return sendErr(err.Error())
		}
		session = updated
		currentSlug = view.Question.Slug
		currentID = view.Question.ID
		return conn.WriteJSON(outboundMessage[wsQuestion]{Type: "question", Payload: wsQuestion{
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
		}}) == nil
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}

		switch inbound.Type {
		case "start":
			var payload startPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				if !sendErr("invalid start payload") {
					return
				}
				continue
			}
			difficulty, err := domain.ParseDifficulty(payload.Difficulty)
			if err != nil {
				if !sendErr("Select a level to continue") {
					return
				}
				continue
			}
			result, err := h.engine.Start(ctx, difficulty)
			if err != nil {
				if !sendErr(err.Error()) {
					return
				}
				continue
			}
			session = result.Session
			started = true
			if !sendQuestion(result.FirstSlug) {
				return
			}

		case "answer":
			if !started {
				if !sendErr("start a quiz first") {
					return
				}
				continue
			}
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				if !sendErr("invalid answer payload") {
					return
				}
				continue
			}
			updated, advance := h.engine.Submit(session, currentSlug, currentID, payload.Choice)
			session = updated
			if advance.Complete {
				card, err := h.engine.ScoreSession(ctx, session)
				if err != nil {
					if !sendErr(err.Error()) {
						return
					}
					continue
				}
				if conn.WriteJSON(outboundMessage[domain.Scorecard]{Type: "results", Payload: card}) != nil {
					return
				}
				started = false
				continue
			}
			if !sendQuestion(advance.NextSlug) {
				return
			}

		default:
			if !sendErr("unsupported message type") {
				return
			}
		}
	}
}
