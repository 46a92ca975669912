package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"devquiz/internal/app"
)

const defaultTickInterval = time.Second

// WSHandler drives one session over a websocket: it streams timer ticks while the
// session is active and applies answer/navigation commands from the client.
type WSHandler struct {
	service      *app.QuizService
	log          logrus.FieldLogger
	upgrader     websocket.Upgrader
	tickInterval time.Duration
}

type WSOption func(*WSHandler)

// WithTickInterval overrides the one-second timer tick.
func WithTickInterval(d time.Duration) WSOption {
	return func(h *WSHandler) {
		if d > 0 {
			h.tickInterval = d
		}
	}
}

func NewWSHandler(service *app.QuizService, log logrus.FieldLogger, opts ...WSOption) *WSHandler {
	h := &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		tickInterval: defaultTickInterval,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID string `json:"questionId"`
	Option     int    `json:"option"`
}

type tickPayload struct {
	ElapsedSeconds int `json:"elapsedSeconds"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets bound to an existing session.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing sessionId"})
		return
	}
	view, err := h.service.View(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	log := h.log.WithField("session_id", sessionID)
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	ticksDone := make(chan struct{})

	// single writer: gorilla connections allow one concurrent writer
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.WithError(err).Debug("ws write failed")
				return
			}
		}
	}()

	go func() {
		defer close(ticksDone)
		ticker := time.NewTicker(h.tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				current, err := h.service.View(ctx, sessionID)
				if err != nil {
					select {
					case send <- errorMessage(err):
					case <-writerDone:
					case <-closeSignals:
					}
					return
				}
				if current.State != app.StateActive.String() {
					continue
				}
				select {
				case send <- outboundMessage[any]{Type: "tick", Payload: tickPayload{ElapsedSeconds: current.Elapsed}}:
				case <-writerDone:
					return
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	deliver(send, writerDone, outboundMessage[any]{Type: "state", Payload: view})

read:
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		for _, msg := range h.handle(ctx, sessionID, inbound) {
			if !deliver(send, writerDone, msg) {
				break read
			}
		}
	}

	close(closeSignals)
	<-ticksDone
	close(send)
	<-writerDone
}

func (h *WSHandler) handle(ctx context.Context, sessionID string, inbound inboundMessage) []outboundMessage[any] {
	var (
		view app.SessionView
		err  error
	)
	switch inbound.Type {
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return []outboundMessage[any]{{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}}
		}
		view, err = h.service.Answer(ctx, sessionID, payload.QuestionID, payload.Option)
	case "next":
		view, err = h.service.Next(ctx, sessionID)
	case "previous":
		view, err = h.service.Previous(ctx, sessionID)
	case "complete":
		view, err = h.service.Complete(ctx, sessionID)
	default:
		return []outboundMessage[any]{{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}}
	}
	if err != nil {
		return []outboundMessage[any]{errorMessage(err)}
	}

	out := []outboundMessage[any]{{Type: "state", Payload: view}}
	if view.State == app.StateCompleted.String() && inbound.Type != "answer" {
		result, err := h.service.Result(ctx, sessionID)
		if err != nil {
			return append(out, errorMessage(err))
		}
		out = append(out, outboundMessage[any]{Type: "result", Payload: result})
	}
	return out
}

// deliver queues msg for the writer. It reports false once the writer has stopped.
func deliver(send chan<- outboundMessage[any], writerDone <-chan struct{}, msg outboundMessage[any]) bool {
	select {
	case send <- msg:
		return true
	case <-writerDone:
		return false
	}
}

func errorMessage(err error) outboundMessage[any] {
	msg := err.Error()
	if errors.Is(err, context.Canceled) {
		msg = "connection closed"
	}
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}
