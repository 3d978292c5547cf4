// Package sqlxrepos provides the PostgreSQL repositories, built on sqlx.
//
// Reads go through the connection pool with sqlx struct scanning. Writes run
// on the executor the caller passes in, so a service-level transaction covers
// every statement issued inside it.
package sqlxrepos

import (
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const pqUniqueViolation = "23505"

// uniqueViolation reports whether err is a postgres unique-index violation
// and, if so, which constraint tripped. Repositories translate constraint
// names into domain conflict errors; the index stays the authoritative guard.
func uniqueViolation(err error) (constraint string, ok bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
		return pqErr.Constraint, true
	}
	return "", false
}
