package handler

import (
	"context"
	"net/http"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/aeroway/aeroway-api/internal/config"
)

const serviceName = "AeroWay API"

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]HealthCheck
}

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// GET /health
// Answers 503 when any dependency check fails.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), config.DBPingTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "healthy"
	code := http.StatusOK
	deps := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			log.Warn().Err(err).Str("dependency", name).Msg("health check failed")
			deps[name] = "unavailable"
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	writeJSON(w, code, map[string]any{
		"status":       status,
		"service":      serviceName,
		"version":      config.APIVersion,
		"dependencies": deps,
	})
}

// GET /
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Welcome to AeroWay API",
		"version": config.APIVersion,
		"status":  "operational",
	})
}

// GET /api
func (h *HealthHandler) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": serviceName,
		"version": config.APIVersion,
		"endpoints": map[string]map[string]string{
			"auth": {
				"register":        "POST /api/auth/register",
				"login":           "POST /api/auth/login",
				"validate_ticket": "POST /api/auth/validate-ticket",
				"me":              "GET /api/auth/me",
				"logout":          "POST /api/auth/logout",
			},
			"flights": {
				"list":            "GET /api/flights",
				"get":             "GET /api/flights/{flight_number}",
				"my_flight":       "GET /api/flights/user/my-flight",
				"search_arrivals": "GET /api/flights/arrivals/search",
				"create":          "POST /api/flights",
				"update":          "PATCH /api/flights/{flight_number}",
			},
			"chatbot": {
				"send":           "POST /api/chatbot",
				"history":        "GET /api/chatbot/history/{session_id}",
				"user_history":   "GET /api/chatbot/user-history",
				"delete_history": "DELETE /api/chatbot/history/{session_id}",
			},
			"services": {
				"list":        "GET /api/services",
				"by_category": "GET /api/services/{category}",
				"spaces":      "GET /api/spaces",
			},
			"meet_greet": {
				"generate":   "POST /api/meet-greet/generate",
				"track":      "POST /api/meet-greet/track",
				"track_get":  "GET /api/meet-greet/track/{code}",
				"events":     "GET /api/meet-greet/track/{code}/events",
				"update":     "PATCH /api/meet-greet/{code}",
				"deactivate": "DELETE /api/meet-greet/{code}",
			},
		},
	})
}
