package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/aeroway/aeroway-api/internal/config"
	"github.com/aeroway/aeroway-api/internal/middleware"
)

type RouterOptions struct {
	Auth      AuthService
	Flights   FlightService
	Chatbot   ChatbotService
	Directory DirectoryService
	Tracking  TrackingService

	Tokens         middleware.TokenVerifier
	Broker         Subscriber
	TrackLimiter   middleware.Limiter
	TrackRateLimit int
	LoginLimiter   *middleware.LoginRateLimiter

	CORSOrigins  []string
	IsProduction bool
	HealthChecks map[string]HealthCheck
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// NewRouter assembles the HTTP API. Live tracking streams sit outside the
// request timeout.
func NewRouter(opts RouterOptions) http.Handler {
	authMiddleware := middleware.NewAuthMiddleware(opts.Tokens)
	trackRate := middleware.NewRateLimitMiddleware(opts.TrackLimiter, opts.TrackRateLimit, "track")
	loginLimiter := opts.LoginLimiter
	if loginLimiter == nil {
		loginLimiter = middleware.NewLoginRateLimiter()
	}

	health := NewHealthHandler(opts.HealthChecks)
	authHandler := NewAuthHandler(opts.Auth, authMiddleware.Required, loginLimiter.Handler)
	flightHandler := NewFlightHandler(opts.Flights, authMiddleware.Required, authMiddleware.Optional)
	chatbotHandler := NewChatbotHandler(opts.Chatbot, authMiddleware.Required, authMiddleware.Optional)
	directoryHandler := NewDirectoryHandler(opts.Directory)
	meetGreetHandler := NewMeetGreetHandler(opts.Tracking, authMiddleware.Required, trackRate.Handler)
	eventsHandler := NewEventsHandler(opts.Broker, opts.Tracking)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(opts.CORSOrigins))
	r.Use(middleware.NewSecurityHeadersMiddleware(opts.IsProduction).Handler)
	r.Use(middleware.NewBodyLimitMiddleware(0).Handler)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": "Not found", "code": "NOT_FOUND"})
	})

	r.With(trackRate.Handler).Get("/api/meet-greet/track/{code}/events", eventsHandler.ServeHTTP)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))

		r.Get("/", health.Root)
		r.Get("/health", health.Health)

		r.Route("/api", func(r chi.Router) {
			r.Get("/", health.Info)
			r.Mount("/auth", authHandler.Routes())
			r.Mount("/flights", flightHandler.Routes())
			r.Mount("/chatbot", chatbotHandler.Routes())
			r.Mount("/meet-greet", meetGreetHandler.Routes())
			directoryHandler.Register(r)
		})
	})

	return r
}
