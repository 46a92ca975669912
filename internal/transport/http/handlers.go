package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"devquiz/internal/app"
	"devquiz/internal/domain"
)

type API struct {
	service *app.QuizService
	log     logrus.FieldLogger
}

func NewAPI(service *app.QuizService, log logrus.FieldLogger) *API {
	return &API{service: service, log: log}
}

func (a *API) HandleCategories(w http.ResponseWriter, r *http.Request) {
	stats, err := a.service.Catalog(r.Context())
	if err != nil {
		writeServiceError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) HandleQuestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	category, err := parseCategoryParam(query.Get("category"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	filter := app.QuestionFilter{Category: category, Tag: strings.TrimSpace(query.Get("tag"))}
	if raw := query.Get("difficulty"); raw != "" {
		d, ok := domain.ParseDifficulty(raw)
		if !ok {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown difficulty"})
			return
		}
		filter.Difficulty = d
	}

	questions, err := a.service.ListQuestions(r.Context(), filter)
	if err != nil {
		writeServiceError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (a *API) HandleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	category, ok := domain.ParseCategory(req.Category)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown category"})
		return
	}

	view, err := a.service.Start(r.Context(), app.StartRequest{Category: category, Count: req.Count, UserID: req.UserID})
	if errors.Is(err, domain.ErrEmptyCategory) {
		writeJSON(w, http.StatusOK, emptyCategoryResponse{
			Empty:    true,
			Category: category,
			Message:  "no questions available for this category",
		})
		return
	}
	if err != nil {
		writeServiceError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (a *API) HandleView(w http.ResponseWriter, r *http.Request) {
	view, err := a.service.View(r.Context(), r.PathValue("id"))
	a.writeView(w, view, err)
}

func (a *API) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if strings.TrimSpace(req.QuestionID) == "" || req.Option == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "questionId and option are required"})
		return
	}

	view, err := a.service.Answer(r.Context(), r.PathValue("id"), req.QuestionID, *req.Option)
	if status := answerStatus(err); status != 0 {
		writeJSON(w, status, answerRejection{Error: err.Error(), Session: view})
		return
	}
	a.writeView(w, view, err)
}

func (a *API) HandleNext(w http.ResponseWriter, r *http.Request) {
	view, err := a.service.Next(r.Context(), r.PathValue("id"))
	a.writeView(w, view, err)
}

func (a *API) HandlePrevious(w http.ResponseWriter, r *http.Request) {
	view, err := a.service.Previous(r.Context(), r.PathValue("id"))
	a.writeView(w, view, err)
}

func (a *API) HandleComplete(w http.ResponseWriter, r *http.Request) {
	view, err := a.service.Complete(r.Context(), r.PathValue("id"))
	a.writeView(w, view, err)
}

func (a *API) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	fb, err := a.service.Feedback(r.Context(), r.PathValue("id"), r.PathValue("questionId"))
	if err != nil {
		writeServiceError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, fb)
}

func (a *API) HandleResult(w http.ResponseWriter, r *http.Request) {
	result, err := a.service.Result(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) HandleAbandon(w http.ResponseWriter, r *http.Request) {
	if err := a.service.Abandon(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, a.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	category, err := parseCategoryParam(r.URL.Query().Get("category"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	limit, err := parseLimit(r, app.DefaultLeaderboardLimit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	entries, err := a.service.Leaderboard(r.Context(), category, limit)
	if err != nil {
		writeServiceError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (a *API) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.service.Stats(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		writeServiceError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) HandleHistory(w http.ResponseWriter, r *http.Request) {
	records, err := a.service.History(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (a *API) HandleRecord(w http.ResponseWriter, r *http.Request) {
	record, err := a.service.Record(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (a *API) writeView(w http.ResponseWriter, view app.SessionView, err error) {
	if err != nil {
		writeServiceError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
