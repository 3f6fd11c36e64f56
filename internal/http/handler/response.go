package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/teamtodo/teamtodo-api/internal/service"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
		},
	})
}

// handleServiceError maps the service error taxonomy onto HTTP statuses.
// Input problems (validation, quota, duplicate membership) are 4xx the
// caller can fix; everything unclassified is an opaque 500.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case errors.Is(err, service.ErrQuotaExceeded):
		WriteError(w, http.StatusBadRequest, "QUOTA_EXCEEDED", err.Error())
	case errors.Is(err, service.ErrAlreadyMember):
		WriteError(w, http.StatusBadRequest, "ALREADY_MEMBER", err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		WriteError(w, http.StatusForbidden, "UNAUTHORIZED", err.Error())
	case errors.Is(err, service.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
	case errors.Is(err, service.ErrInvalidState):
		WriteError(w, http.StatusConflict, "INVALID_STATE", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
