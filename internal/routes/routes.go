package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/replyhub/identity-api/internal/authz"
	"github.com/replyhub/identity-api/internal/handlers"
	"github.com/replyhub/identity-api/internal/models"
)

// NewRouter wires the public invite endpoints and the protected API. Every
// protected route passes through the authenticator, which re-derives the
// caller's role and workspace from storage.
func NewRouter(
	auth *authz.Authenticator,
	invite *handlers.InviteHandler,
	workspace *handlers.WorkspaceHandler,
	identity *handlers.IdentityHandler,
	access *handlers.AccessHandler,
) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", handlers.HealthCheck).Methods(http.MethodGet)

	// Public invite endpoints: the invitee has no account yet.
	router.HandleFunc("/api/invites/preview/{token}", invite.PreviewInvite).Methods(http.MethodGet)
	router.HandleFunc("/api/invites/accept/{token}", invite.AcceptInvite).Methods(http.MethodPost)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(auth.Middleware)

	api.Handle("/access/me", http.HandlerFunc(access.Me)).Methods(http.MethodGet)

	requireAdmin := authz.RequireRole(models.RoleAdmin)
	requireSuperAdmin := authz.RequireRole(models.RoleSuperAdmin)

	api.Handle("/invites", requireSuperAdmin(http.HandlerFunc(invite.CreatePlatformInvite))).Methods(http.MethodPost)
	api.Handle("/workspaces", requireSuperAdmin(http.HandlerFunc(workspace.CreateWorkspace))).Methods(http.MethodPost)
	api.Handle("/identities/admins", requireSuperAdmin(http.HandlerFunc(identity.CreateAdmin))).Methods(http.MethodPost)

	api.Handle("/workspaces/{workspaceID}/invites", requireAdmin(http.HandlerFunc(invite.CreateWorkspaceInvite))).Methods(http.MethodPost)
	api.Handle("/workspaces/{workspaceID}/invites", requireAdmin(http.HandlerFunc(invite.ListWorkspaceInvites))).Methods(http.MethodGet)
	api.Handle("/workspaces/{workspaceID}/employees", requireAdmin(http.HandlerFunc(workspace.ListEmployees))).Methods(http.MethodGet)
	api.Handle("/workspaces/{workspaceID}/audit", requireAdmin(http.HandlerFunc(workspace.ListAuditEvents))).Methods(http.MethodGet)

	return router
}
