package repo

import (
	"database/sql"

	"runclub.dev/backend/internal/pkg/rcerr"
)

// expectAffected turns an update or delete that touched no row into ErrNotFound.
func expectAffected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return rcerr.ErrNotFound
	}
	return nil
}
