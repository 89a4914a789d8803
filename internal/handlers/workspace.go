package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/replyhub/identity-api/internal/audit"
	"github.com/replyhub/identity-api/internal/authz"
	"github.com/replyhub/identity-api/internal/models"
	"github.com/replyhub/identity-api/internal/repository"
	"github.com/rs/zerolog"
)

type WorkspaceHandler struct {
	workspaces repository.WorkspaceRepository
	employees  repository.EmployeeRepository
	audit      audit.Recorder
	plans      map[string]models.Plan
	logger     zerolog.Logger
}

func NewWorkspaceHandler(
	workspaces repository.WorkspaceRepository,
	employees repository.EmployeeRepository,
	recorder audit.Recorder,
	plans map[string]models.Plan,
	logger zerolog.Logger,
) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaces: workspaces,
		employees:  employees,
		audit:      recorder,
		plans:      plans,
		logger:     logger.With().Str("component", "workspace_handler").Logger(),
	}
}

// CreateWorkspace provisions a tenant workspace on a named plan.
func (h *WorkspaceHandler) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name string `json:"name"`
		Plan string `json:"plan"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request payload"})
		return
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "workspace name is required"})
		return
	}
	plan := strings.ToLower(strings.TrimSpace(payload.Plan))
	if plan == "" {
		plan = models.PlanStarter
	}
	if _, ok := h.plans[plan]; !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown plan"})
		return
	}

	workspace, err := h.workspaces.CreateWorkspace(r.Context(), payload.Name, plan)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "workspace name already exists"})
			return
		}
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, workspace)
}

// ListEmployees returns the staff roster of a workspace.
func (h *WorkspaceHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := h.authorizeWorkspace(w, r)
	if !ok {
		return
	}

	employees, err := h.employees.ListByWorkspace(r.Context(), workspaceID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, employees)
}

// ListAuditEvents returns the recent audit trail for a workspace.
func (h *WorkspaceHandler) ListAuditEvents(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := h.authorizeWorkspace(w, r)
	if !ok {
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	records, err := h.audit.ListRecent(r.Context(), workspaceID, limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// authorizeWorkspace extracts the workspace path variable and checks that the
// principal is a super_admin or that workspace's own admin.
func (h *WorkspaceHandler) authorizeWorkspace(w http.ResponseWriter, r *http.Request) (string, bool) {
	access, ok := authz.AccessFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return "", false
	}
	workspaceID := mux.Vars(r)["workspaceID"]
	if workspaceID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "workspace id is required"})
		return "", false
	}
	if access.Role != models.RoleSuperAdmin {
		if access.WorkspaceID == nil || *access.WorkspaceID != workspaceID {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "insufficient permissions for workspace"})
			return "", false
		}
	}
	return workspaceID, true
}
