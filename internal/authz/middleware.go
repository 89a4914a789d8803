package authz

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/replyhub/identity-api/internal/apperr"
	"github.com/replyhub/identity-api/internal/models"
	"github.com/replyhub/identity-api/internal/service"
	"github.com/rs/zerolog"
)

// AccessResolver re-derives role and workspace for a credential from storage.
type AccessResolver interface {
	ResolveAccess(ctx context.Context, credentialID string) (service.AccessGrant, error)
}

// Authenticator validates bearer tokens and resolves the principal they name.
// Tokens carry only the credential id; role and workspace always come from
// the resolver, never from token claims.
type Authenticator struct {
	jwtSecret string
	resolver  AccessResolver
	logger    zerolog.Logger
}

func NewAuthenticator(jwtSecret string, resolver AccessResolver, logger zerolog.Logger) *Authenticator {
	return &Authenticator{
		jwtSecret: jwtSecret,
		resolver:  resolver,
		logger:    logger.With().Str("component", "authz").Logger(),
	}
}

// Middleware authenticates the request and attaches the resolved Access to
// its context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization format", http.StatusUnauthorized)
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(a.jwtSecret), nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !claims.VerifyExpiresAt(time.Now().Unix(), true) {
			http.Error(w, "Token expired", http.StatusUnauthorized)
			return
		}
		credentialID, _ := claims["sub"].(string)
		if credentialID == "" {
			http.Error(w, "Missing subject claim", http.StatusUnauthorized)
			return
		}

		grant, err := a.resolver.ResolveAccess(r.Context(), credentialID)
		if err != nil {
			if apperr.IsForbidden(err) {
				http.Error(w, err.Error(), http.StatusForbidden)
				return
			}
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := WithAccess(r.Context(), Access{
			CredentialID: credentialID,
			IdentityID:   grant.PrincipalID,
			Role:         grant.Role,
			WorkspaceID:  grant.WorkspaceID,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole ensures the resolved principal has at least the required role
// tier before the handler runs.
func RequireRole(required models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			access, ok := AccessFromRequest(r)
			if !ok || !models.HasAtLeast(access.Role, required) {
				http.Error(w, "insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
