package handler

import (
	"net/http"
	"strconv"

	"github.com/freeeve/regifting/internal/auth"
	"github.com/freeeve/regifting/internal/logger"
	"github.com/freeeve/regifting/internal/model"
	"github.com/freeeve/regifting/internal/service"
)

// TournamentHandler serves tournament, strategy and leaderboard endpoints.
type TournamentHandler struct {
	svc *service.TournamentService
}

// NewTournamentHandler creates a TournamentHandler.
func NewTournamentHandler(svc *service.TournamentService) *TournamentHandler {
	return &TournamentHandler{svc: svc}
}

// RunTournament handles POST /api/v1/tournaments. With ?async=true the
// tournament runs in the background and 202 carries its id; otherwise the
// response is the full result.
func (h *TournamentHandler) RunTournament(w http.ResponseWriter, r *http.Request) {
	var req service.TournamentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	l := logger.ForRequest(r.Context())

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		id, err := h.svc.Start(req)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		l.Info().Str("tournamentId", id).Str("operator", auth.NameFromContext(r.Context())).Msg("Tournament started")
		writeJSON(w, http.StatusAccepted, map[string]string{"id": id})
		return
	}

	res, err := h.svc.Run(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	l.Info().Str("tournamentId", res.ID).Str("operator", auth.NameFromContext(r.Context())).Msg("Tournament run")
	writeJSON(w, http.StatusOK, res)
}

// ListTournaments handles GET /api/v1/tournaments?limit=
func (h *TournamentHandler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit", 50)
	if !ok {
		return
	}
	list, err := h.svc.List(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []model.Tournament{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GetTournament handles GET /api/v1/tournaments/{id}
func (h *TournamentHandler) GetTournament(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// LiveTournament handles GET /api/v1/tournaments/{id}/live
func (h *TournamentHandler) LiveTournament(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Live(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(snap)
}

// ListStrategies handles GET /api/v1/strategies
func (h *TournamentHandler) ListStrategies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Strategies())
}

// Leaderboard handles GET /api/v1/leaderboard?limit=
func (h *TournamentHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit", 10)
	if !ok {
		return
	}
	top, err := h.svc.Leaderboard(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if top == nil {
		top = []model.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, top)
}

func queryInt(w http.ResponseWriter, r *http.Request, key string, def int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		writeError(w, http.StatusBadRequest, key+" must be a positive integer")
		return 0, false
	}
	return v, true
}
