package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/auth"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
	Field string `json:"field,omitempty"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeError maps err onto a status code and a JSON error body.
// Unexpected errors are logged and reported as 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errResponse{Error: ve.Message, Field: ve.Field})
	case errors.Is(err, auth.ErrBadCredentials):
		writeJSON(w, http.StatusUnauthorized, errorBody("invalid email or password"))
	case errors.Is(err, apperr.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
	case errors.Is(err, apperr.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorBody("forbidden"))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody("already exists"))
	default:
		slog.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &apperr.ValidationError{Message: "invalid JSON body"}
	}
	return nil
}
