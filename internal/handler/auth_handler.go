package handler

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/regifting/internal/auth"
)

// AuthHandler issues tokens.
type AuthHandler struct {
	jwtMgr  *auth.JWTManager
	enabled bool
}

// NewAuthHandler creates an AuthHandler. When devLogin is false the
// endpoint answers 404.
func NewAuthHandler(jwtMgr *auth.JWTManager, devLogin bool) *AuthHandler {
	return &AuthHandler{jwtMgr: jwtMgr, enabled: devLogin}
}

// DevLogin handles GET /auth/dev?name=&role=, issuing a token without any
// identity check. role defaults to spectator.
func (h *AuthHandler) DevLogin(w http.ResponseWriter, r *http.Request) {
	if !h.enabled {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing name parameter")
		return
	}
	role := r.URL.Query().Get("role")
	switch role {
	case "":
		role = auth.RoleSpectator
	case auth.RoleSpectator, auth.RoleOperator:
	default:
		writeError(w, http.StatusBadRequest, "role must be spectator or operator")
		return
	}

	tok, err := h.jwtMgr.Issue(name, role)
	if err != nil {
		log.Error().Err(err).Str("name", name).Msg("Failed to issue token")
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	writeJSON(w, http.StatusOK, tok)
}
