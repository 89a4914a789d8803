package handlers

import (
	"context"
	"net/http"

	"github.com/replyhub/identity-api/internal/authz"
	"github.com/replyhub/identity-api/internal/service"
	"github.com/rs/zerolog"
)

// Resolver is the authorization oracle consulted for the /access/me endpoint.
type Resolver interface {
	ResolveAccess(ctx context.Context, credentialID string) (service.AccessGrant, error)
}

type AccessHandler struct {
	resolver Resolver
	logger   zerolog.Logger
}

func NewAccessHandler(resolver Resolver, logger zerolog.Logger) *AccessHandler {
	return &AccessHandler{
		resolver: resolver,
		logger:   logger.With().Str("component", "access_handler").Logger(),
	}
}

// Me returns the authoritative role, workspace, and plan limits for the
// authenticated credential. Clients poll this right after login; see the
// access retry client for the tolerant caller side.
func (h *AccessHandler) Me(w http.ResponseWriter, r *http.Request) {
	access, ok := authz.AccessFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	grant, err := h.resolver.ResolveAccess(r.Context(), access.CredentialID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, grant)
}
