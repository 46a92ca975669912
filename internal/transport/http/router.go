package http

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"devquiz/internal/app"
)

// NewRouter exposes the quiz use cases over REST and the live session channel over /ws.
func NewRouter(service *app.QuizService, log logrus.FieldLogger, wsOpts ...WSOption) http.Handler {
	api := NewAPI(service, log)
	ws := NewWSHandler(service, log, wsOpts...)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /categories", api.HandleCategories)
	mux.HandleFunc("GET /questions", api.HandleQuestions)
	mux.HandleFunc("POST /sessions", api.HandleStart)
	mux.HandleFunc("GET /sessions/{id}", api.HandleView)
	mux.HandleFunc("DELETE /sessions/{id}", api.HandleAbandon)
	mux.HandleFunc("PUT /sessions/{id}/answers", api.HandleAnswer)
	mux.HandleFunc("POST /sessions/{id}/next", api.HandleNext)
	mux.HandleFunc("POST /sessions/{id}/previous", api.HandlePrevious)
	mux.HandleFunc("POST /sessions/{id}/complete", api.HandleComplete)
	mux.HandleFunc("GET /sessions/{id}/questions/{questionId}/feedback", api.HandleFeedback)
	mux.HandleFunc("GET /sessions/{id}/result", api.HandleResult)
	mux.HandleFunc("GET /leaderboard", api.HandleLeaderboard)
	mux.HandleFunc("GET /stats", api.HandleStats)
	mux.HandleFunc("GET /users/{id}/sessions", api.HandleHistory)
	mux.HandleFunc("GET /records/{id}", api.HandleRecord)
	mux.HandleFunc("GET /ws", ws.ServeWS)

	return requestLogger(log, mux)
}
