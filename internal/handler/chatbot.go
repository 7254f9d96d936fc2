package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aeroway/aeroway-api/internal/middleware"
	"github.com/aeroway/aeroway-api/internal/model"
	"github.com/aeroway/aeroway-api/internal/repository"
	"github.com/aeroway/aeroway-api/internal/service"
)

type ChatbotService interface {
	Send(ctx context.Context, in service.ChatInput) (*model.ChatReply, error)
	History(ctx context.Context, sessionID, userID string, limit int) ([]model.ChatMessage, error)
	UserHistory(ctx context.Context, userID string, limit int) ([]model.ChatMessage, error)
	DeleteHistory(ctx context.Context, sessionID, userID string) error
}

type ChatbotHandler struct {
	chat     ChatbotService
	required func(http.Handler) http.Handler
	optional func(http.Handler) http.Handler
}

func NewChatbotHandler(chat ChatbotService, required, optional func(http.Handler) http.Handler) *ChatbotHandler {
	return &ChatbotHandler{chat: chat, required: required, optional: optional}
}

func (h *ChatbotHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(h.optional)
		r.Post("/", h.Send)
		r.Get("/history/{sessionID}", h.History)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.required)
		r.Get("/user-history", h.UserHistory)
		r.Delete("/history/{sessionID}", h.DeleteHistory)
	})

	return r
}

type chatRequest struct {
	Message   string `json:"message" validate:"required,min=1,max=2000"`
	SessionID string `json:"session_id" validate:"omitempty,max=100"`
	Language  string `json:"language" validate:"omitempty,oneof=fr en ar"`
}

// POST /api/chatbot
func (h *ChatbotHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reply, err := h.chat.Send(r.Context(), service.ChatInput{
		Message:   req.Message,
		SessionID: req.SessionID,
		Language:  req.Language,
		UserID:    middleware.GetUserID(r.Context()),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// GET /api/chatbot/history/{sessionID}
func (h *ChatbotHandler) History(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, repository.DefaultHistoryLimit, repository.MaxHistoryLimit)
	if err != nil {
		writeError(w, err)
		return
	}

	messages, err := h.chat.History(r.Context(), chi.URLParam(r, "sessionID"), middleware.GetUserID(r.Context()), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// GET /api/chatbot/user-history
func (h *ChatbotHandler) UserHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, repository.DefaultUserHistoryLimit, repository.MaxHistoryLimit)
	if err != nil {
		writeError(w, err)
		return
	}

	messages, err := h.chat.UserHistory(r.Context(), middleware.GetUserID(r.Context()), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// DELETE /api/chatbot/history/{sessionID}
func (h *ChatbotHandler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.chat.DeleteHistory(r.Context(), chi.URLParam(r, "sessionID"), middleware.GetUserID(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
