package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aeroway/aeroway-api/internal/database"
	"github.com/aeroway/aeroway-api/internal/model"
)

const (
	messagesTable = "messages"

	DefaultHistoryLimit     = 50
	DefaultUserHistoryLimit = 100
	MaxHistoryLimit         = 500
)

type ChatMessageRepository interface {
	Create(ctx context.Context, params model.CreateChatMessageParams) (*model.ChatMessage, error)
	// FindBySession returns a session's messages oldest first. A non-nil
	// userID restricts the result to that user's messages.
	FindBySession(ctx context.Context, sessionID string, userID *string, limit int) ([]model.ChatMessage, error)
	// FindByUser returns a user's messages across sessions, newest first.
	FindByUser(ctx context.Context, userID string, limit int) ([]model.ChatMessage, error)
	DeleteSession(ctx context.Context, sessionID, userID string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	WithTx(tx *sqlx.Tx) ChatMessageRepository
}

type chatMessageRepo struct {
	q *database.Querier
}

func NewChatMessageRepository(q *database.Querier) ChatMessageRepository {
	return &chatMessageRepo{q: q}
}

func (r *chatMessageRepo) WithTx(tx *sqlx.Tx) ChatMessageRepository {
	return &chatMessageRepo{q: bind(r.q, tx)}
}

func (r *chatMessageRepo) Create(ctx context.Context, params model.CreateChatMessageParams) (*model.ChatMessage, error) {
	data := database.Fields{
		database.F("user_id", params.UserID),
		database.F("session_id", params.SessionID),
		database.F("sender", params.Sender),
		database.F("message_text", params.MessageText),
		database.F("timestamp", time.Now().UTC()),
	}

	var msg model.ChatMessage
	if err := r.q.Insert(ctx, &msg, messagesTable, data); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *chatMessageRepo) FindBySession(ctx context.Context, sessionID string, userID *string, limit int) ([]model.ChatMessage, error) {
	where := database.Fields{database.F("session_id", sessionID)}
	where = optional(where, "user_id", userID)

	msgs := []model.ChatMessage{}
	err := r.q.SelectAll(ctx, &msgs, database.SelectQuery{
		Table:   messagesTable,
		Where:   where,
		OrderBy: "timestamp ASC",
		Limit:   limitOr(limit, DefaultHistoryLimit, MaxHistoryLimit),
	})
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *chatMessageRepo) FindByUser(ctx context.Context, userID string, limit int) ([]model.ChatMessage, error) {
	msgs := []model.ChatMessage{}
	err := r.q.SelectAll(ctx, &msgs, database.SelectQuery{
		Table:   messagesTable,
		Where:   database.Fields{database.F("user_id", userID)},
		OrderBy: "timestamp DESC",
		Limit:   limitOr(limit, DefaultUserHistoryLimit, MaxHistoryLimit),
	})
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *chatMessageRepo) DeleteSession(ctx context.Context, sessionID, userID string) error {
	_, err := r.q.Delete(ctx, messagesTable, database.Fields{
		database.F("session_id", sessionID),
		database.F("user_id", userID),
	})
	return err
}

func (r *chatMessageRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.q.Exec(ctx, `DELETE FROM messages WHERE timestamp < $1`, cutoff)
}
