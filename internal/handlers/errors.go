package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/replyhub/identity-api/internal/apperr"
	"github.com/rs/zerolog"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP statuses in one place.
// Unexpected errors are logged with context and surfaced as a generic failure.
func writeError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	var planErr *apperr.PlanLimitError
	switch {
	case apperr.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, apperr.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	case apperr.IsForbidden(err):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotFoundOrExpired):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": apperr.ErrNotFoundOrExpired.Error()})
	case apperr.IsConflict(err):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.As(err, &planErr):
		writeJSON(w, http.StatusPaymentRequired, map[string]interface{}{
			"error":   "plan limit exceeded",
			"plan":    planErr.Plan,
			"limit":   planErr.Limit,
			"current": planErr.Current,
		})
	default:
		logger.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
