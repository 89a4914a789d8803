// Package apperr defines the error taxonomy shared by services, repositories,
// and HTTP handlers. Handlers map these onto status codes in one place.
package apperr

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

var (
	// ErrNotFoundOrExpired is deliberately generic: missing, already-used, and
	// expired invite tokens all collapse to it so callers cannot enumerate
	// which case applied.
	ErrNotFoundOrExpired = errors.New("invite not found or expired")

	// ErrUnauthorized means no principal could be resolved for a credential.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError rejects syntactically or semantically invalid input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ConflictError rejects writes that would collide with existing state, such as
// a reserved email or a duplicate invite.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

func Conflictf(format string, args ...interface{}) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

// ForbiddenError rejects an operation the caller is not allowed to perform,
// including inconsistent admin account states.
type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string { return e.Msg }

func Forbiddenf(format string, args ...interface{}) error {
	return &ForbiddenError{Msg: fmt.Sprintf(format, args...)}
}

// PlanLimitError carries the actionable detail a caller needs to upgrade.
type PlanLimitError struct {
	Plan    string
	Limit   int
	Current int
}

func (e *PlanLimitError) Error() string {
	return fmt.Sprintf("plan %q allows %d employees, workspace already has %d", e.Plan, e.Limit, e.Current)
}

// StorageError wraps an unexpected database failure. The wrapped cause is kept
// for logs; handlers surface it as a generic failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

func Storage(op string, err error) error {
	return &StorageError{Op: op, Err: pkgerrors.WithStack(err)}
}

// UpstreamError wraps a failure from the external credential provider.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("upstream: %s: %v", e.Op, e.Err) }
func (e *UpstreamError) Unwrap() error { return e.Err }

func Upstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: pkgerrors.WithStack(err)}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

func IsForbidden(err error) bool {
	var f *ForbiddenError
	return errors.As(err, &f)
}

func IsPlanLimit(err error) bool {
	var p *PlanLimitError
	return errors.As(err, &p)
}
