package pg

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrOpenConnection        = errors.New("failed to open db connection")
	ErrParseConfig           = errors.New("failed to parse db config")
	ErrHealthcheckFailed     = errors.New("db healthcheck failed")
	ErrApplyMigrations       = errors.New("failed to apply migrations")
	ErrMigrationsDirNotFound = errors.New("migrations directory not found")
)

// IsNotFound detects pgx.ErrNoRows for uniform not-found handling.
func IsNotFound(err error) bool {
	return err != nil && errors.Is(err, pgx.ErrNoRows)
}

// IsDuplicateKey detects unique constraint violations (SQLSTATE
// 23505), e.g. a concurrent insert of the same email.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
