package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrDuplicate marks a unique-constraint violation in a driver-agnostic way so
// service-level idempotency logic can be exercised against fakes as well as
// against Postgres.
var ErrDuplicate = errors.New("duplicate record")

// IsUniqueViolation reports whether the error is a unique-constraint
// violation, either the Postgres 23505 class or the ErrDuplicate sentinel.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, ErrDuplicate) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
