package authz

import (
	"context"
	"net/http"

	"github.com/replyhub/identity-api/internal/models"
)

type contextKey string

const accessKey contextKey = "access"

// Access is the storage-derived principal attached to a request after the
// role resolver has been consulted.
type Access struct {
	CredentialID string
	IdentityID   string
	Role         models.Role
	WorkspaceID  *string
}

// WithAccess stores the resolved principal on the context.
func WithAccess(ctx context.Context, access Access) context.Context {
	return context.WithValue(ctx, accessKey, access)
}

// AccessFromRequest returns the resolved principal for the request, if any.
func AccessFromRequest(r *http.Request) (Access, bool) {
	access, ok := r.Context().Value(accessKey).(Access)
	if !ok || access.CredentialID == "" {
		return Access{}, false
	}
	return access, true
}
