package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/replyhub/identity-api/internal/authz"
	"github.com/replyhub/identity-api/internal/models"
	"github.com/replyhub/identity-api/internal/repository"
	"github.com/replyhub/identity-api/internal/service"
	"github.com/rs/zerolog"
)

// Issuer mints invite tokens.
type Issuer interface {
	CreateInvite(ctx context.Context, email string, role models.Role, workspaceID *string, invoker service.Invoker) (service.CreatedInvite, error)
}

// Acceptor consumes invite tokens and provisions staff records.
type Acceptor interface {
	AcceptInvite(ctx context.Context, token string, profile service.ProfileParams, password string) (service.AcceptResult, error)
}

type InviteHandler struct {
	issuer   Issuer
	acceptor Acceptor
	invites  repository.InviteRepository
	logger   zerolog.Logger
	now      func() time.Time
}

type createInviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type acceptInviteRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

func NewInviteHandler(issuer Issuer, acceptor Acceptor, invites repository.InviteRepository, logger zerolog.Logger) *InviteHandler {
	return &InviteHandler{
		issuer:   issuer,
		acceptor: acceptor,
		invites:  invites,
		logger:   logger.With().Str("component", "invite_handler").Logger(),
		now:      time.Now,
	}
}

// CreateWorkspaceInvite issues a tenant invite scoped to the workspace in the
// path. The service enforces that admins only invite into their own workspace.
func (h *InviteHandler) CreateWorkspaceInvite(w http.ResponseWriter, r *http.Request) {
	workspaceID := mux.Vars(r)["workspaceID"]
	if workspaceID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "workspace id is required"})
		return
	}
	h.createInvite(w, r, &workspaceID)
}

// CreatePlatformInvite issues a platform-wide invite; super_admin only.
func (h *InviteHandler) CreatePlatformInvite(w http.ResponseWriter, r *http.Request) {
	h.createInvite(w, r, nil)
}

func (h *InviteHandler) createInvite(w http.ResponseWriter, r *http.Request, workspaceID *string) {
	access, ok := authz.AccessFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var payload createInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request payload"})
		return
	}
	role := models.Role(strings.ToLower(strings.TrimSpace(payload.Role)))
	if role == "" {
		role = models.RoleEmployee
	}

	invoker := service.Invoker{
		IdentityID:  access.IdentityID,
		Role:        access.Role,
		WorkspaceID: access.WorkspaceID,
	}
	created, err := h.issuer.CreateInvite(r.Context(), payload.Email, role, workspaceID, invoker)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListWorkspaceInvites returns the retained invite trail for a workspace.
func (h *InviteHandler) ListWorkspaceInvites(w http.ResponseWriter, r *http.Request) {
	access, ok := authz.AccessFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	workspaceID := mux.Vars(r)["workspaceID"]
	if workspaceID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "workspace id is required"})
		return
	}
	if access.Role != models.RoleSuperAdmin {
		if access.WorkspaceID == nil || *access.WorkspaceID != workspaceID {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "insufficient permissions for workspace"})
			return
		}
	}

	invites, err := h.invites.ListInvitesByWorkspace(r.Context(), workspaceID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, invites)
}

// PreviewInvite lets the invite page show who the invite is for. It applies
// the same generic collapse as acceptance: missing, used, and expired tokens
// are indistinguishable.
func (h *InviteHandler) PreviewInvite(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(mux.Vars(r)["token"])
	if token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "token is required"})
		return
	}

	invite, err := h.invites.GetInviteByToken(r.Context(), token)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		writeError(w, h.logger, err)
		return
	}
	if err != nil || invite.Status != models.InvitePending || invite.IsExpired(h.now()) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "invite not found or expired"})
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Email       string    `json:"email"`
		Role        string    `json:"role"`
		WorkspaceID *string   `json:"workspace_id,omitempty"`
		ExpiresAt   time.Time `json:"expires_at"`
	}{
		Email:       invite.Email,
		Role:        string(invite.Role),
		WorkspaceID: invite.WorkspaceID,
		ExpiresAt:   invite.ExpiresAt,
	})
}

// AcceptInvite consumes the token and provisions the invitee. The response
// never includes a session; provisioning and login are separate concerns.
func (h *InviteHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(mux.Vars(r)["token"])
	if token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "token is required"})
		return
	}

	var payload acceptInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request payload"})
		return
	}

	result, err := h.acceptor.AcceptInvite(r.Context(), token, service.ProfileParams{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
	}, payload.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
