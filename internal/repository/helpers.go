package repository

import (
	"github.com/jmoiron/sqlx"

	"github.com/aeroway/aeroway-api/internal/database"
)

// found converts a Querier lookup result into the nil-on-miss convention
// used by every Find* method: a missing row is not an error.
//
// Usage:
//
//	var item model.Item
//	ok, err := r.q.SelectOne(ctx, &item, sel)
//	return found(&item, ok, err)
func found[T any](result *T, ok bool, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return result, nil
}

// first returns the first element of rows, or nil when rows is empty.
func first[T any](rows []T, err error) (*T, error) {
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// optional appends name=value to fields only when value is non-nil.
func optional[T any](fields database.Fields, name string, value *T) database.Fields {
	if value == nil {
		return fields
	}
	return fields.Set(name, *value)
}

// MaxListLimit caps every list query.
const MaxListLimit = 100

// limitOr clamps a caller-supplied limit into [1, max], falling back to def.
func limitOr(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

func bind(q *database.Querier, tx *sqlx.Tx) *database.Querier {
	if tx == nil {
		return q
	}
	return q.WithTx(tx)
}
