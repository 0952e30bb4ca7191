package dbhelper

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	errCodeUniqueViolation     = "23505"
	errCodeForeignKeyViolation = "23503"
)

func hasErrorCode(err error, code string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == code
	}
	return false
}

func IsUniqueViolation(err error) bool {
	return hasErrorCode(err, errCodeUniqueViolation)
}

func IsForeignKeyViolation(err error) bool {
	return hasErrorCode(err, errCodeForeignKeyViolation)
}

func affected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}
