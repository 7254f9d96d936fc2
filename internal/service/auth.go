package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aeroway/aeroway-api/internal/database"
	apperrors "github.com/aeroway/aeroway-api/internal/errors"
	"github.com/aeroway/aeroway-api/internal/model"
	"github.com/aeroway/aeroway-api/internal/repository"
	"github.com/aeroway/aeroway-api/internal/util"
)

const TokenTypeBearer = "bearer"

var errInvalidCredentials = apperrors.Unauthorized("Invalid email or password")

// TokenIssuer is satisfied by *auth.TokenManager.
type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}

type RegisterInput struct {
	Email         string
	Password      string
	Nom           string
	Prenom        string
	Telephone     string
	NumIdentite   *string
	DateNaissance *time.Time
	LieuNaissance *string
	Ville         *string
	Pays          *string
	Role          model.UserRole
	TicketNumber  *string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        *model.User `json:"user"`
}

// TicketFlight is the flight summary attached to a validated ticket.
type TicketFlight struct {
	FlightNumber  string             `json:"flight_number"`
	Destination   *string            `json:"destination"`
	Gate          *string            `json:"gate"`
	Terminal      *string            `json:"terminal"`
	DepartureTime *time.Time         `json:"departure_time"`
	Status        model.FlightStatus `json:"status"`
}

type AuthService struct {
	users   repository.UserRepository
	flights repository.FlightRepository
	tokens  TokenIssuer
}

func NewAuthService(users repository.UserRepository, flights repository.FlightRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, flights: flights, tokens: tokens}
}

// NormalizeEmail lower-cases and trims an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := NormalizeEmail(in.Email)
	if email == "" {
		return nil, apperrors.MissingRequired("email")
	}
	if !util.PasswordStrong(in.Password) {
		return nil, apperrors.InvalidInput("password", "must be at least 8 characters and contain a digit and a letter")
	}

	role := in.Role
	if role == "" {
		role = model.UserRolePassenger
	}
	if role != model.UserRolePassenger && role != model.UserRoleVisitor {
		return nil, apperrors.InvalidInput("role", "must be passenger or visitor")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, storeErr(err)
	}
	if existing != nil {
		return nil, apperrors.Conflict("Email already registered")
	}

	ticket := trimmedOrNil(in.TicketNumber)
	if ticket != nil {
		owner, err := s.users.FindByTicketNumber(ctx, *ticket)
		if err != nil {
			return nil, storeErr(err)
		}
		if owner != nil {
			return nil, apperrors.Conflict("Ticket number already in use")
		}
	}

	hash, err := util.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.Internal("Registration failed").WithCause(err)
	}

	user, err := s.users.Create(ctx, model.CreateUserParams{
		Email:         email,
		PasswordHash:  hash,
		Nom:           strings.TrimSpace(in.Nom),
		Prenom:        strings.TrimSpace(in.Prenom),
		Telephone:     strings.TrimSpace(in.Telephone),
		NumIdentite:   in.NumIdentite,
		DateNaissance: in.DateNaissance,
		LieuNaissance: in.LieuNaissance,
		Ville:         in.Ville,
		Pays:          in.Pays,
		Role:          role,
		TicketNumber:  ticket,
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperrors.Conflict("Email already registered")
		}
		return nil, storeErr(err)
	}

	log.Info().Str("userId", user.ID).Str("role", string(user.Role)).Msg("user registered")
	return s.issue(user)
}

// Login answers unknown email and wrong password with the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, storeErr(err)
	}
	if user == nil || !util.CheckPasswordHash(password, user.PasswordHash) {
		return nil, errInvalidCredentials
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, apperrors.Internal("Could not issue access token").WithCause(err)
	}
	return &AuthResult{AccessToken: token, TokenType: TokenTypeBearer, User: user}, nil
}

// ValidateTicket links ticket to the caller and returns the matching flight
// when one can be found. A ticket held by another user is a Conflict.
func (s *AuthService) ValidateTicket(ctx context.Context, userID, ticket string) (*TicketFlight, error) {
	ticket = strings.TrimSpace(ticket)
	if ticket == "" {
		return nil, apperrors.MissingRequired("ticket_number")
	}

	owner, err := s.users.FindByTicketNumber(ctx, ticket)
	if err != nil {
		return nil, storeErr(err)
	}
	if owner != nil && owner.ID != userID {
		return nil, apperrors.Conflict("Ticket number already in use")
	}

	user, err := s.users.SetTicketNumber(ctx, userID, ticket)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperrors.Conflict("Ticket number already in use")
		}
		return nil, storeErr(err)
	}
	if user == nil {
		return nil, apperrors.NotFound("User")
	}

	flight, err := s.flights.FindByTicket(ctx, ticket)
	if err != nil {
		log.Warn().Err(err).Str("userId", userID).Msg("ticket flight lookup failed")
		return nil, nil
	}
	if flight == nil {
		return nil, nil
	}
	return &TicketFlight{
		FlightNumber:  flight.FlightNumber,
		Destination:   flight.Destination,
		Gate:          flight.Gate,
		Terminal:      flight.Terminal,
		DepartureTime: flight.DepartureTime,
		Status:        flight.Status,
	}, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, storeErr(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return nil, apperrors.NotFound("User")
	}
	return user, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
