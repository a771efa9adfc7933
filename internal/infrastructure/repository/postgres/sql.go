package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

func isNotFound(err error) bool {
	return err == sql.ErrNoRows
}

// isConflict reports whether err is a postgres uniqueness or exclusion
// violation. Resolvers treat both as "someone else inserted first".
func isConflict(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "23505" || pqErr.Code == "23P01"
}
