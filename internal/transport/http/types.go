package http

import (
	"devquiz/internal/app"
	"devquiz/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

type startRequest struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
	UserID   string `json:"userId"`
}

type emptyCategoryResponse struct {
	Empty    bool            `json:"empty"`
	Category domain.Category `json:"category"`
	Message  string          `json:"message"`
}

type answerRequest struct {
	QuestionID string `json:"questionId"`
	Option     *int   `json:"option"`
}

// answerRejection carries the unchanged session alongside the reason.
type answerRejection struct {
	Error   string          `json:"error"`
	Session app.SessionView `json:"session"`
}
