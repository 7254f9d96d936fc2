package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aeroway/aeroway-api/internal/audit"
	"github.com/aeroway/aeroway-api/internal/middleware"
	"github.com/aeroway/aeroway-api/internal/model"
	"github.com/aeroway/aeroway-api/internal/service"
)

type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
	ValidateTicket(ctx context.Context, userID, ticket string) (*service.TicketFlight, error)
	Me(ctx context.Context, userID string) (*model.User, error)
}

type AuthHandler struct {
	auth      AuthService
	required  func(http.Handler) http.Handler
	loginRate func(http.Handler) http.Handler
}

func NewAuthHandler(auth AuthService, required, loginRate func(http.Handler) http.Handler) *AuthHandler {
	return &AuthHandler{auth: auth, required: required, loginRate: loginRate}
}

func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.With(h.loginRate).Post("/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(h.required)
		r.Post("/validate-ticket", h.ValidateTicket)
		r.Get("/me", h.Me)
		r.Post("/logout", h.Logout)
	})

	return r
}

type registerRequest struct {
	Email         string     `json:"email" validate:"required,email,max=255"`
	Password      string     `json:"password" validate:"required,min=8,max=100,password"`
	Nom           string     `json:"nom" validate:"required,min=1,max=100"`
	Prenom        string     `json:"prenom" validate:"required,min=1,max=100"`
	Telephone     string     `json:"telephone" validate:"required,min=10,max=20"`
	NumIdentite   *string    `json:"num_identite" validate:"omitempty,max=50"`
	DateNaissance *time.Time `json:"date_naissance"`
	LieuNaissance *string    `json:"lieu_naissance" validate:"omitempty,max=100"`
	Ville         *string    `json:"ville" validate:"omitempty,max=100"`
	Pays          *string    `json:"pays" validate:"omitempty,max=100"`
	Role          string     `json:"role" validate:"omitempty,oneof=passenger visitor"`
	TicketNumber  *string    `json:"ticket_number" validate:"omitempty,max=50"`
}

// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.auth.Register(r.Context(), service.RegisterInput{
		Email:         req.Email,
		Password:      req.Password,
		Nom:           req.Nom,
		Prenom:        req.Prenom,
		Telephone:     req.Telephone,
		NumIdentite:   req.NumIdentite,
		DateNaissance: req.DateNaissance,
		LieuNaissance: req.LieuNaissance,
		Ville:         req.Ville,
		Pays:          req.Pays,
		Role:          model.UserRole(req.Role),
		TicketNumber:  req.TicketNumber,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventRegister, UserID: result.User.ID})
	writeJSON(w, http.StatusCreated, result)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		audit.LogFromRequest(r, audit.Event{
			Type:    audit.EventLoginFailure,
			Details: map[string]interface{}{"email": service.NormalizeEmail(req.Email)},
		})
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventLoginSuccess, UserID: result.User.ID})
	writeJSON(w, http.StatusOK, result)
}

type ticketRequest struct {
	TicketNumber string `json:"ticket_number" validate:"required,min=3,max=50"`
}

// POST /api/auth/validate-ticket
func (h *AuthHandler) ValidateTicket(w http.ResponseWriter, r *http.Request) {
	var req ticketRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := middleware.GetUserID(r.Context())
	flight, err := h.auth.ValidateTicket(r.Context(), userID, req.TicketNumber)
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:    audit.EventTicketValidate,
		UserID:  userID,
		Details: map[string]interface{}{"flight_found": flight != nil},
	})

	var data any
	if flight != nil {
		data = map[string]any{"flight": flight}
	}
	writeSuccess(w, "Ticket validated successfully", data)
}

// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.Me(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// POST /api/auth/logout
// Tokens are stateless; the client discards its copy.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	audit.LogFromRequest(r, audit.Event{Type: audit.EventLogout, UserID: middleware.GetUserID(r.Context())})
	writeSuccess(w, "Logged out successfully. Please remove the token from client storage.", nil)
}
