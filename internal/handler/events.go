package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/aeroway/aeroway-api/internal/errors"
	"github.com/aeroway/aeroway-api/internal/metrics"
	"github.com/aeroway/aeroway-api/internal/model"
	"github.com/aeroway/aeroway-api/internal/sse"
	"github.com/aeroway/aeroway-api/internal/util"
)

// Subscriber is satisfied by *sse.Broker.
type Subscriber interface {
	Subscribe(ctx context.Context, code string) (*sse.Client, error)
	Unsubscribe(client *sse.Client)
}

// EventsHandler streams live updates for one tracking code. The stream
// ends when the session completes, expires or the client goes away.
type EventsHandler struct {
	broker    Subscriber
	tracking  TrackingService
	heartbeat time.Duration
	now       func() time.Time
}

func NewEventsHandler(broker Subscriber, tracking TrackingService) *EventsHandler {
	return &EventsHandler{
		broker:    broker,
		tracking:  tracking,
		heartbeat: sse.HeartbeatInterval,
		now:       time.Now,
	}
}

// GET /api/meet-greet/track/{code}/events
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	session, err := h.tracking.Track(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, err)
		return
	}
	code := session.TrackingCode

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Streaming not supported"})
		return
	}

	client, err := h.broker.Subscribe(r.Context(), code)
	if err != nil {
		writeError(w, apperrors.Internal("Live updates are unavailable").WithCause(err))
		return
	}
	defer h.broker.Unsubscribe(client)

	// Re-read after subscribing so a change made before the subscription was
	// live is reflected in the connected snapshot.
	session, err = h.tracking.Track(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	metrics.SSEClients.Inc()
	defer metrics.SSEClients.Dec()

	masked := util.MaskCode(code)
	log.Info().Str("code", masked).Msg("sse connection established")

	if err := h.sendEvent(w, flusher, model.TrackingEventConnected, model.TrackingEvent{
		Type:         model.TrackingEventConnected,
		TrackingCode: code,
		Session:      *session,
	}); err != nil {
		return
	}

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	expiry := time.NewTimer(session.ExpiresAt.Sub(h.now()))
	defer expiry.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("code", masked).Msg("sse connection closed by client")
			return

		case <-client.Done:
			log.Info().Str("code", masked).Msg("sse connection closed by broker")
			return

		case <-expiry.C:
			h.sendEvent(w, flusher, model.TrackingEventExpired, map[string]string{
				"type":          model.TrackingEventExpired,
				"tracking_code": code,
			})
			return

		case event := <-client.Events:
			if err := h.sendRawEvent(w, flusher, event); err != nil {
				log.Error().Err(err).Msg("failed to send event")
				return
			}
			if event.Type == model.TrackingEventCompleted {
				return
			}

		case <-heartbeat.C:
			if _, err := fmt.Fprintf(w, ": ping\n\n"); err != nil {
				log.Debug().Str("code", masked).Msg("heartbeat failed, closing connection")
				return
			}
			flusher.Flush()
		}
	}
}

func (h *EventsHandler) sendEvent(w http.ResponseWriter, flusher http.Flusher, eventType string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return h.sendRawEvent(w, flusher, sse.Event{Type: eventType, Data: jsonData})
}

func (h *EventsHandler) sendRawEvent(w http.ResponseWriter, flusher http.Flusher, event sse.Event) error {
	if _, err := fmt.Fprintf(w, "event: %s\n", event.Type); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", event.Data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
