package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrRelationMissing marks reads against a table that has not been
// provisioned yet (Postgres undefined_table, 42P01). Callers treat it as an
// empty result rather than a hard failure.
var ErrRelationMissing = errors.New("relation does not exist")

const undefinedTableCode = "42P01"

func mapTableError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTableCode {
		return ErrRelationMissing
	}
	return err
}
