package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a lookup matches no active row.
var ErrNotFound = errors.New("record not found")

// DBTX is the statement surface shared by *pgxpool.Pool, pgx.Tx and pgxmock.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// TxBeginner opens transactions. A pgx.Tx also satisfies it, in which case
// Begin creates a savepoint.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Postgres error codes the document engine reacts to.
const (
	PgErrUniqueViolation = "23505" // unique_violation
	PgErrUndefinedTable  = "42P01" // undefined_table
	PgErrUndefinedColumn = "42703" // undefined_column
)

// Partial unique indexes backing business-number uniqueness among active rows.
const (
	ConstraintHouseNumberActive  = "ux_house_documents_number_active"
	ConstraintMasterNumberActive = "ux_master_documents_number_active"
)

func pgErrorCode(err error) (string, string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName, true
	}
	return "", "", false
}

// IsUniqueViolation reports whether err is a unique violation, optionally
// restricted to one constraint name.
func IsUniqueViolation(err error, constraint string) bool {
	code, name, ok := pgErrorCode(err)
	if !ok || code != PgErrUniqueViolation {
		return false
	}
	return constraint == "" || name == constraint
}

// IsMissingRelation reports whether err means the table or column is not
// provisioned in the connected schema.
func IsMissingRelation(err error) bool {
	code, _, ok := pgErrorCode(err)
	return ok && (code == PgErrUndefinedTable || code == PgErrUndefinedColumn)
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func execAffected(ctx context.Context, db DBTX, query string, args ...interface{}) (int64, error) {
	tag, err := db.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

