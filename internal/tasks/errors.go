package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"smart-tasks-backend/internal/ai"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrNotFound            = errors.New("task not found")
	ErrUnprocessableIntent = errors.New("model referenced a task that is not open")
)

// ValidationError carries a message that is safe to return to the caller as is.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error {
	return &ValidationError{Msg: msg}
}

// fail maps err onto the HTTP error taxonomy. Internal details are logged,
// never returned; fallback is the generic message for unclassified errors.
func (h *TaskHandler) fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	log := h.Logger.With(zap.String("method", r.Method), zap.String("path", r.URL.Path))

	var vErr *ValidationError
	var mErr *ai.MalformedOutputError

	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: vErr.Msg})

	case errors.Is(err, ErrUnprocessableIntent):
		log.Warn("unprocessable intent", zap.Error(err))
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "AI matched a task that does not exist or is no longer open"})

	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "task not found"})

	case errors.As(err, &mErr):
		log.Error("AI returned invalid JSON", zap.String("raw", mErr.Raw), zap.Error(mErr.Err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to parse AI response"})

	case errors.Is(err, ai.ErrNotConfigured):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "text generation is not configured"})

	case errors.Is(err, context.DeadlineExceeded):
		log.Error("request timed out", zap.Error(err))
		writeJSON(w, http.StatusGatewayTimeout, errorResponse{Error: "text generation timed out"})

	default:
		log.Error(fallback, zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: fallback})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
