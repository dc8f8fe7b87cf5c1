package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/regifting/internal/bot"
	"github.com/freeeve/regifting/internal/logger"
	"github.com/freeeve/regifting/internal/service"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Error encoding response")
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps service and configuration errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case bot.IsConfigError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrTournamentNotFound):
		writeError(w, http.StatusNotFound, "tournament not found")
	case errors.Is(err, service.ErrArchiveDisabled), errors.Is(err, service.ErrCacheDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, service.ErrTournamentRunning):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrBusy):
		writeError(w, http.StatusTooManyRequests, err.Error())
	default:
		l := logger.ForRequest(r.Context())
		l.Error().Err(err).Msg("Request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON reads and decodes JSON from a request body, rejecting unknown
// fields.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
