package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ErrNoRow signals that a statement expected to return a row returned none.
var ErrNoRow = errors.New("no row returned")

const uniqueViolation = "23505"

// OpError wraps any failure of a Querier operation. Callers do not inspect
// the driver error except through IsUniqueViolation.
type OpError struct {
	Op    string
	Table string
	Err   error
}

func (e *OpError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("database operation failed: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("database operation failed: %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// IsUniqueViolation reports whether err was caused by a unique constraint.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// Querier executes builder-generated statements and scans rows into typed
// records. Each call borrows a pooled connection, or runs on the
// transaction it was created with.
type Querier struct {
	db DBTX
}

func NewQuerier(db DBTX) *Querier {
	return &Querier{db: db}
}

// WithTx returns a Querier bound to tx.
func (q *Querier) WithTx(tx *sqlx.Tx) *Querier {
	return &Querier{db: tx}
}

// Insert inserts data into table and scans the returned row into dest.
// It returns ErrNoRow if the statement produced no row.
func (q *Querier) Insert(ctx context.Context, dest any, table string, data Fields, returning ...string) error {
	query, args, err := BuildInsert(table, data, returning)
	if err != nil {
		return &OpError{Op: "insert", Table: table, Err: err}
	}
	if err := q.db.GetContext(ctx, dest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNoRow
		}
		return &OpError{Op: "insert", Table: table, Err: err}
	}
	return nil
}

// SelectOne scans the first matching row into dest. It reports false when
// nothing matched.
func (q *Querier) SelectOne(ctx context.Context, dest any, sel SelectQuery) (bool, error) {
	query, args, err := BuildSelect(sel)
	if err != nil {
		return false, &OpError{Op: "select", Table: sel.Table, Err: err}
	}
	if err := q.db.GetContext(ctx, dest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, &OpError{Op: "select", Table: sel.Table, Err: err}
	}
	return true, nil
}

// SelectAll scans every matching row into dest, which must be a pointer to a slice.
func (q *Querier) SelectAll(ctx context.Context, dest any, sel SelectQuery) error {
	query, args, err := BuildSelect(sel)
	if err != nil {
		return &OpError{Op: "select", Table: sel.Table, Err: err}
	}
	if err := q.db.SelectContext(ctx, dest, query, args...); err != nil {
		return &OpError{Op: "select", Table: sel.Table, Err: err}
	}
	return nil
}

// Update applies data to rows matching where and scans the first returned
// row into dest. It reports false when no row matched.
func (q *Querier) Update(ctx context.Context, dest any, table string, data, where Fields, returning ...string) (bool, error) {
	query, args, err := BuildUpdate(table, data, where, returning)
	if err != nil {
		return false, &OpError{Op: "update", Table: table, Err: err}
	}
	if err := q.db.GetContext(ctx, dest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, &OpError{Op: "update", Table: table, Err: err}
	}
	return true, nil
}

// Delete removes rows matching where. The result only says the statement
// ran; it is true even when no row matched.
func (q *Querier) Delete(ctx context.Context, table string, where Fields) (bool, error) {
	query, args, err := BuildDelete(table, where)
	if err != nil {
		return false, &OpError{Op: "delete", Table: table, Err: err}
	}
	if _, err := q.db.ExecContext(ctx, query, args...); err != nil {
		return false, &OpError{Op: "delete", Table: table, Err: err}
	}
	return true, nil
}

// Raw runs a caller-written parameterized query and scans all rows into dest.
func (q *Querier) Raw(ctx context.Context, dest any, query string, args ...any) error {
	if err := q.db.SelectContext(ctx, dest, query, args...); err != nil {
		return &OpError{Op: "raw", Err: err}
	}
	return nil
}

// Exec runs a caller-written statement and returns the affected row count.
func (q *Querier) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	result, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, &OpError{Op: "exec", Err: err}
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, &OpError{Op: "exec", Err: err}
	}
	return n, nil
}
