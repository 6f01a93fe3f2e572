package postgres

import (
	"errors"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique constraint violation, optionally on the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var perr *pq.Error
	if !errors.As(err, &perr) || perr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || perr.Constraint == constraint
}
