package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildInsert(t *testing.T) {
	t.Run("binds values in field order", func(t *testing.T) {
		expires := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		query, args, err := BuildInsert("meet_greet", Fields{
			F("tracking_code", "AB12CD"),
			F("passenger_id", "u1"),
			F("expires_at", expires),
		}, nil)

		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO meet_greet (tracking_code, passenger_id, expires_at) VALUES ($1, $2, $3) RETURNING *", query)
		assert.Equal(t, []any{"AB12CD", "u1", expires}, args)
	})

	t.Run("honours returning columns", func(t *testing.T) {
		query, _, err := BuildInsert("users", Fields{F("email", "a@b.c")}, []string{"id", "email"})
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO users (email) VALUES ($1) RETURNING id, email", query)
	})

	t.Run("rejects empty data", func(t *testing.T) {
		_, _, err := BuildInsert("users", nil, nil)
		assert.ErrorIs(t, err, ErrNoFields)
	})

	t.Run("rejects injected identifiers", func(t *testing.T) {
		_, _, err := BuildInsert("users; DROP TABLE users", Fields{F("email", "x")}, nil)
		assert.ErrorIs(t, err, ErrIdentifier)

		_, _, err = BuildInsert("users", Fields{F("email) VALUES ('x'); --", "x")}, nil)
		assert.ErrorIs(t, err, ErrIdentifier)
	})

	t.Run("rejects duplicate columns", func(t *testing.T) {
		_, _, err := BuildInsert("users", Fields{F("email", "a"), F("email", "b")}, nil)
		assert.ErrorIs(t, err, ErrDuplicateKey)
	})
}

func TestBuildSelect(t *testing.T) {
	t.Run("plain select", func(t *testing.T) {
		query, args, err := BuildSelect(SelectQuery{Table: "flights"})
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM flights", query)
		assert.Empty(t, args)
	})

	t.Run("where, order and limit", func(t *testing.T) {
		query, args, err := BuildSelect(SelectQuery{
			Table:   "flights",
			Columns: []string{"id", "flight_number"},
			Where:   Fields{F("status", "Delayed"), F("terminal", "T2")},
			OrderBy: "departure_time asc",
			Limit:   50,
		})
		require.NoError(t, err)
		assert.Equal(t, "SELECT id, flight_number FROM flights WHERE status = $1 AND terminal = $2 ORDER BY departure_time ASC LIMIT 50", query)
		assert.Equal(t, []any{"Delayed", "T2"}, args)
	})

	t.Run("nil compares with IS NULL without consuming a placeholder", func(t *testing.T) {
		query, args, err := BuildSelect(SelectQuery{
			Table: "messages",
			Where: Fields{F("user_id", nil), F("session_id", "s1")},
		})
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM messages WHERE user_id IS NULL AND session_id = $1", query)
		assert.Equal(t, []any{"s1"}, args)
	})

	t.Run("multi-column order by", func(t *testing.T) {
		query, _, err := BuildSelect(SelectQuery{Table: "messages", OrderBy: "timestamp DESC, id"})
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM messages ORDER BY timestamp DESC, id", query)
	})

	t.Run("rejects hostile order by", func(t *testing.T) {
		_, _, err := BuildSelect(SelectQuery{Table: "flights", OrderBy: "1; DROP TABLE flights"})
		assert.ErrorIs(t, err, ErrIdentifier)
	})
}

func TestBuildUpdate(t *testing.T) {
	t.Run("set placeholders precede where placeholders", func(t *testing.T) {
		query, args, err := BuildUpdate("meet_greet",
			Fields{F("current_location", "Gate 12"), F("last_updated", "now")},
			Fields{F("tracking_code", "AB12CD")},
			nil,
		)
		require.NoError(t, err)
		assert.Equal(t, "UPDATE meet_greet SET current_location = $1, last_updated = $2 WHERE tracking_code = $3 RETURNING *", query)
		assert.Equal(t, []any{"Gate 12", "now", "AB12CD"}, args)
	})

	t.Run("requires a where clause", func(t *testing.T) {
		_, _, err := BuildUpdate("meet_greet", Fields{F("status", "completed")}, nil, nil)
		assert.ErrorIs(t, err, ErrEmptyWhere)
	})

	t.Run("requires data", func(t *testing.T) {
		_, _, err := BuildUpdate("meet_greet", nil, Fields{F("id", "x")}, nil)
		assert.ErrorIs(t, err, ErrNoFields)
	})
}

func TestBuildDelete(t *testing.T) {
	query, args, err := BuildDelete("messages", Fields{F("session_id", "s1"), F("user_id", "u1")})
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM messages WHERE session_id = $1 AND user_id = $2", query)
	assert.Equal(t, []any{"s1", "u1"}, args)

	_, _, err = BuildDelete("messages", nil)
	assert.ErrorIs(t, err, ErrEmptyWhere)
}

func TestFields(t *testing.T) {
	t.Run("Set replaces in place and keeps order", func(t *testing.T) {
		f := Fields{F("a", 1), F("b", 2)}
		f = f.Set("a", 10).Set("c", 3)

		assert.Equal(t, []string{"a", "b", "c"}, f.Names())
		v, ok := f.Get("a")
		assert.True(t, ok)
		assert.Equal(t, 10, v)
	})

	t.Run("Get reports missing names", func(t *testing.T) {
		_, ok := Fields{}.Get("missing")
		assert.False(t, ok)
	})
}
