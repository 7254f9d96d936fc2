package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aeroway/aeroway-api/internal/auth"
	"github.com/aeroway/aeroway-api/internal/httputil"
	"github.com/aeroway/aeroway-api/internal/middleware"
	"github.com/aeroway/aeroway-api/internal/model"
	"github.com/aeroway/aeroway-api/internal/service"
)

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *mockAuthService) ValidateTicket(ctx context.Context, userID, ticket string) (*service.TicketFlight, error) {
	args := m.Called(ctx, userID, ticket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TicketFlight), args.Error(1)
}

func (m *mockAuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type mockFlightService struct {
	mock.Mock
}

func (m *mockFlightService) List(ctx context.Context, filter model.FlightFilter) ([]model.Flight, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Flight), args.Error(1)
}

func (m *mockFlightService) Get(ctx context.Context, number string) (*model.Flight, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Flight), args.Error(1)
}

func (m *mockFlightService) MyFlight(ctx context.Context, userID string) (*model.Flight, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Flight), args.Error(1)
}

func (m *mockFlightService) SearchArrivals(ctx context.Context, search model.ArrivalSearch) ([]model.Flight, error) {
	args := m.Called(ctx, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Flight), args.Error(1)
}

func (m *mockFlightService) Create(ctx context.Context, params model.CreateFlightParams) (*model.Flight, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Flight), args.Error(1)
}

func (m *mockFlightService) Update(ctx context.Context, number string, params model.UpdateFlightParams) (*model.Flight, error) {
	args := m.Called(ctx, number, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Flight), args.Error(1)
}

type mockChatbotService struct {
	mock.Mock
}

func (m *mockChatbotService) Send(ctx context.Context, in service.ChatInput) (*model.ChatReply, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChatReply), args.Error(1)
}

func (m *mockChatbotService) History(ctx context.Context, sessionID, userID string, limit int) ([]model.ChatMessage, error) {
	args := m.Called(ctx, sessionID, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ChatMessage), args.Error(1)
}

func (m *mockChatbotService) UserHistory(ctx context.Context, userID string, limit int) ([]model.ChatMessage, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ChatMessage), args.Error(1)
}

func (m *mockChatbotService) DeleteHistory(ctx context.Context, sessionID, userID string) error {
	args := m.Called(ctx, sessionID, userID)
	return args.Error(0)
}

type mockDirectoryService struct {
	mock.Mock
}

func (m *mockDirectoryService) Services(ctx context.Context, filter model.PlaceFilter) ([]model.Service, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Service), args.Error(1)
}

func (m *mockDirectoryService) ServicesByCategory(ctx context.Context, category model.ServiceCategory) ([]model.Service, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Service), args.Error(1)
}

func (m *mockDirectoryService) Spaces(ctx context.Context, filter model.PlaceFilter) ([]model.Space, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Space), args.Error(1)
}

type mockTrackingService struct {
	mock.Mock
}

func (m *mockTrackingService) Generate(ctx context.Context, passengerID string) (*service.GenerateResult, error) {
	args := m.Called(ctx, passengerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GenerateResult), args.Error(1)
}

func (m *mockTrackingService) Track(ctx context.Context, code string) (*model.TrackingSession, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TrackingSession), args.Error(1)
}

func (m *mockTrackingService) UpdateLocation(ctx context.Context, code, callerID string, patch model.TrackingPatch) (*model.TrackingSession, error) {
	args := m.Called(ctx, code, callerID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TrackingSession), args.Error(1)
}

func (m *mockTrackingService) Deactivate(ctx context.Context, code, callerID string) error {
	args := m.Called(ctx, code, callerID)
	return args.Error(0)
}

func passThrough(next http.Handler) http.Handler {
	return next
}

// asUser stands in for the auth middleware with a fixed caller.
func asUser(userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := &auth.Claims{
				Email:            userID + "@example.com",
				RegisteredClaims: jwt.RegisteredClaims{Subject: userID},
			}
			next.ServeHTTP(w, r.WithContext(middleware.WithClaims(r.Context(), claims)))
		})
	}
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func serve(h http.Handler, method, target string, body *bytes.Reader) *httptest.ResponseRecorder {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()
	return decodeBody[httputil.ErrorResponse](t, rec)
}

func newRawRequest(method, target, body string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req, httptest.NewRecorder()
}
