// Package credential integrates the external credential provider that owns
// login credentials. The identity service never stores passwords itself.
package credential

import (
	"context"
	"errors"
)

// ErrEmailTaken is returned when the provider already holds a credential for
// the email and the supplied password does not match it.
var ErrEmailTaken = errors.New("credential already exists for email")

// ErrNotFound is returned when no credential exists for the given id.
var ErrNotFound = errors.New("credential not found")

// Profile is the subset of provider-side profile data the service reads back.
type Profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Provider creates and reads login credentials. CreateCredential must be
// idempotent for a given email+password pair so invite acceptance can be
// retried safely after a partial failure.
type Provider interface {
	CreateCredential(ctx context.Context, email, password string) (string, error)
	GetCredential(ctx context.Context, credentialID string) (Profile, error)
}
