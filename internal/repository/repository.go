package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// DBTX is an interface abstracting *sqlx.DB and *sqlx.Tx for repository use.
type DBTX interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	Rebind(query string) string
}

// insertReturningID runs an INSERT and returns the generated id.
// SQLite uses RETURNING, Oracle needs an out bind.
func insertReturningID(ctx context.Context, exec DBTX, oracle bool, query string, args ...interface{}) (int64, error) {
	var id int64
	if oracle {
		args = append(args, sql.Out{Dest: &id})
		if _, err := exec.ExecContext(ctx, exec.Rebind(query+" RETURNING id INTO ?"), args...); err != nil {
			return 0, err
		}
		return id, nil
	}
	if err := exec.QueryRowxContext(ctx, exec.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// paginate appends a dialect specific window clause and its arguments.
func paginate(oracle bool, query string, args []interface{}, offset, limit int) (string, []interface{}) {
	if oracle {
		return query + " OFFSET ? ROWS FETCH NEXT ? ROWS ONLY", append(args, offset, limit)
	}
	return query + " LIMIT ? OFFSET ?", append(args, limit, offset)
}

// limitRows caps a query to n rows.
func limitRows(oracle bool, query string, args []interface{}, n int) (string, []interface{}) {
	if oracle {
		return query + " FETCH FIRST ? ROWS ONLY", append(args, n)
	}
	return query + " LIMIT ?", append(args, n)
}
