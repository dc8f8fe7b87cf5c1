package handler

import (
	"net/http"

	"github.com/freeeve/regifting/internal/auth"
	"github.com/freeeve/regifting/internal/middleware"
	"github.com/freeeve/regifting/internal/service"
)

// RouterConfig holds the dependencies of NewRouter.
type RouterConfig struct {
	Service  *service.TournamentService
	Hub      *Hub
	JWT      *auth.JWTManager
	DevLogin bool
	Origins  string
}

// NewRouter builds the HTTP API. Reads need any valid token; starting a
// tournament needs the operator role.
func NewRouter(cfg RouterConfig) http.Handler {
	th := NewTournamentHandler(cfg.Service)
	ah := NewAuthHandler(cfg.JWT, cfg.DevLogin)
	ws := NewWSHandler(cfg.Hub, cfg.JWT)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /auth/dev", ah.DevLogin)

	api := http.NewServeMux()
	api.HandleFunc("GET /strategies", th.ListStrategies)
	api.HandleFunc("GET /tournaments", th.ListTournaments)
	api.HandleFunc("GET /tournaments/{id}", th.GetTournament)
	api.HandleFunc("GET /tournaments/{id}/live", th.LiveTournament)
	api.HandleFunc("GET /leaderboard", th.Leaderboard)
	api.Handle("POST /tournaments", auth.Middleware(cfg.JWT, auth.RoleOperator)(http.HandlerFunc(th.RunTournament)))

	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", auth.Middleware(cfg.JWT)(api)))

	// WebSocket authenticates through the query string.
	mux.HandleFunc("GET /api/v1/ws", ws.ServeWS)

	origins := cfg.Origins
	if origins == "" {
		origins = "*"
	}
	return middleware.Chain(mux, middleware.Recover, middleware.Logger, middleware.CORS(origins), middleware.JSON)
}
