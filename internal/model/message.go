package model

import "time"

type ChatMessage struct {
	ID          string        `db:"id" json:"id"`
	UserID      *string       `db:"user_id" json:"user_id"`
	SessionID   string        `db:"session_id" json:"session_id"`
	Sender      MessageSender `db:"sender" json:"sender"`
	MessageText string        `db:"message_text" json:"message_text"`
	Timestamp   time.Time     `db:"timestamp" json:"timestamp"`
}

type CreateChatMessageParams struct {
	UserID      *string
	SessionID   string
	Sender      MessageSender
	MessageText string
}

// ChatReply is the bot's answer to one user message.
type ChatReply struct {
	Message   string    `json:"message"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
}
