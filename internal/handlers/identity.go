package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/replyhub/identity-api/internal/models"
	"github.com/replyhub/identity-api/internal/repository"
	"github.com/rs/zerolog"
)

type IdentityHandler struct {
	identities repository.IdentityRepository
	workspaces repository.WorkspaceRepository
	logger     zerolog.Logger
}

func NewIdentityHandler(identities repository.IdentityRepository, workspaces repository.WorkspaceRepository, logger zerolog.Logger) *IdentityHandler {
	return &IdentityHandler{
		identities: identities,
		workspaces: workspaces,
		logger:     logger.With().Str("component", "identity_handler").Logger(),
	}
}

// CreateAdmin provisions an admin or super_admin identity. The email claim is
// written in the same transaction, so an email already bound to an employee is
// rejected with a conflict. Credentials are bound later, on first login.
func (h *IdentityHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email       string  `json:"email"`
		Role        string  `json:"role"`
		WorkspaceID *string `json:"workspace_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request payload"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid email address"})
		return
	}

	role := models.Role(strings.ToLower(strings.TrimSpace(payload.Role)))
	switch role {
	case models.RoleSuperAdmin:
		if payload.WorkspaceID != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "super_admin identities are not workspace-scoped"})
			return
		}
	case models.RoleAdmin:
		if payload.WorkspaceID == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "admin identities require a workspace"})
			return
		}
		if models.IsPlatformWorkspace(*payload.WorkspaceID) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "admins cannot be scoped to the platform workspace"})
			return
		}
		if _, err := h.workspaces.GetWorkspaceByID(r.Context(), *payload.WorkspaceID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "workspace not found"})
				return
			}
			writeError(w, h.logger, err)
			return
		}
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "role must be admin or super_admin"})
		return
	}

	identity, err := h.identities.CreateAdminIdentity(r.Context(), email, role, payload.WorkspaceID)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "email is already claimed"})
			return
		}
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, identity)
}
