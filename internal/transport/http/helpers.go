package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"devquiz/internal/domain"
)

func writeServiceError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "quiz session not found"})
	case errors.Is(err, domain.ErrRecordNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "quiz record not found"})
	case errors.Is(err, domain.ErrQuestionNotFound), errors.Is(err, domain.ErrUnknownQuestion):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrUnknownCategory), errors.Is(err, domain.ErrInvalidQuestionCount):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidOption):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrSessionCompleted), errors.Is(err, domain.ErrSessionNotStarted):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		log.WithError(err).Error("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "request failed"})
	}
}

// answerStatus maps a rejected answer to its HTTP status, or 0 when err is not a rejection.
func answerStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownQuestion), errors.Is(err, domain.ErrInvalidOption):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSessionCompleted), errors.Is(err, domain.ErrSessionNotStarted):
		return http.StatusConflict
	}
	return 0
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

func parseLimit(r *http.Request, defaultValue int) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get("limit"))
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}
	return parsed, nil
}

func parseCategoryParam(raw string) (domain.Category, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	c, ok := domain.ParseCategory(raw)
	if !ok {
		return "", errors.New("unknown category " + strconv.Quote(raw))
	}
	return c, nil
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
