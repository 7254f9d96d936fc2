package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/aeroway/aeroway-api/internal/config"
	"github.com/aeroway/aeroway-api/internal/database"
	apperrors "github.com/aeroway/aeroway-api/internal/errors"
	"github.com/aeroway/aeroway-api/internal/metrics"
	"github.com/aeroway/aeroway-api/internal/model"
	"github.com/aeroway/aeroway-api/internal/repository"
	"github.com/aeroway/aeroway-api/internal/sse"
	"github.com/aeroway/aeroway-api/internal/util"
)

// MaxLocationLength bounds current_location.
const MaxLocationLength = 100

var errCodeSpaceExhausted = errors.New("no free tracking code found")

// EventPublisher fans tracking events out to live followers.
type EventPublisher interface {
	Publish(ctx context.Context, code string, event sse.Event) error
}

// GenerateResult is the outcome of Generate. Created is false when an
// existing live session was returned.
type GenerateResult struct {
	Session *model.TrackingSession
	Created bool
}

// TrackingService owns the meet & greet tracking-code lifecycle.
type TrackingService struct {
	tx       database.Transactor
	users    repository.UserRepository
	flights  repository.FlightRepository
	sessions repository.TrackingSessionRepository
	events   EventPublisher
	now      func() time.Time
	newCode  func() (string, error)
}

func NewTrackingService(
	tx database.Transactor,
	users repository.UserRepository,
	flights repository.FlightRepository,
	sessions repository.TrackingSessionRepository,
	events EventPublisher,
) *TrackingService {
	return &TrackingService{
		tx:       tx,
		users:    users,
		flights:  flights,
		sessions: sessions,
		events:   events,
		now:      time.Now,
		newCode:  generateTrackingCode,
	}
}

func generateTrackingCode() (string, error) {
	return util.RandomCode(util.CodeAlphabet, config.TrackingCodeLength)
}

// Generate returns the passenger's live session, or creates one. The
// passenger's user row is locked for the duration of the check and insert so
// concurrent calls for the same passenger serialise. A unique violation on
// tracking_code restarts the whole transaction with a fresh code.
func (s *TrackingService) Generate(ctx context.Context, passengerID string) (*GenerateResult, error) {
	for attempt := 1; attempt <= config.MaxTrackingCodeRetries; attempt++ {
		result, err := s.generateOnce(ctx, passengerID)
		if err == nil {
			if result.Created {
				metrics.TrackingSessionsCreated.Inc()
				log.Info().
					Str("passengerId", passengerID).
					Str("code", util.MaskCode(result.Session.TrackingCode)).
					Time("expiresAt", result.Session.ExpiresAt).
					Int("attempt", attempt).
					Msg("tracking session created")
			} else {
				metrics.TrackingSessionsReused.Inc()
				log.Info().
					Str("passengerId", passengerID).
					Str("code", util.MaskCode(result.Session.TrackingCode)).
					Msg("reusing live tracking session")
			}
			return result, nil
		}

		if database.IsUniqueViolation(err) {
			metrics.TrackingCodeCollisions.Inc()
			log.Warn().
				Str("passengerId", passengerID).
				Int("attempt", attempt).
				Msg("tracking code taken at insert, retrying")
			continue
		}
		if errors.Is(err, errCodeSpaceExhausted) {
			break
		}
		return nil, storeErr(err)
	}

	return nil, apperrors.Conflict("Could not allocate a unique tracking code")
}

func (s *TrackingService) generateOnce(ctx context.Context, passengerID string) (*GenerateResult, error) {
	var result *GenerateResult

	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		users := s.users.WithTx(tx)
		flights := s.flights.WithTx(tx)
		sessions := s.sessions.WithTx(tx)

		user, err := users.FindByIDForUpdate(ctx, passengerID)
		if err != nil {
			return fmt.Errorf("lock passenger: %w", err)
		}
		if user == nil {
			return apperrors.NotFound("User")
		}

		now := s.now().UTC()

		existing, err := sessions.FindActiveByPassenger(ctx, passengerID)
		if err != nil {
			return fmt.Errorf("find active session: %w", err)
		}
		if existing != nil {
			if !existing.IsExpired(now) {
				result = &GenerateResult{Session: existing}
				return nil
			}
			if err := sessions.MarkExpired(ctx, existing.ID, now); err != nil {
				return fmt.Errorf("expire stale session: %w", err)
			}
		}

		flightID, err := resolveFlight(ctx, flights, user)
		if err != nil {
			return fmt.Errorf("find passenger flight: %w", err)
		}

		code, err := s.freeCode(ctx, sessions)
		if err != nil {
			return err
		}

		location := config.TrackingInitialPlace
		created, err := sessions.Create(ctx, model.CreateTrackingSessionParams{
			TrackingCode:    code,
			PassengerID:     passengerID,
			PassengerName:   user.FullName(),
			FlightID:        flightID,
			CurrentLocation: &location,
			CreatedAt:       now,
			ExpiresAt:       now.Add(config.TrackingSessionTTL),
		})
		if err != nil {
			return err
		}
		result = &GenerateResult{Session: created, Created: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// freeCode draws candidates until one is not already stored.
func (s *TrackingService) freeCode(ctx context.Context, sessions repository.TrackingSessionRepository) (string, error) {
	for i := 0; i < config.MaxTrackingCodeRetries; i++ {
		code, err := s.newCode()
		if err != nil {
			return "", fmt.Errorf("generate tracking code: %w", err)
		}
		taken, err := sessions.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check tracking code: %w", err)
		}
		if !taken {
			return code, nil
		}
		metrics.TrackingCodeCollisions.Inc()
	}
	return "", errCodeSpaceExhausted
}

// resolveFlight looks up the passenger's flight from their ticket number on
// the transaction's connection. A ticket matching no flight leaves flight_id
// empty.
func resolveFlight(ctx context.Context, flights repository.FlightRepository, user *model.User) (*string, error) {
	if user.TicketNumber == nil || *user.TicketNumber == "" {
		return nil, nil
	}
	flight, err := flights.FindByTicket(ctx, *user.TicketNumber)
	if err != nil || flight == nil {
		return nil, err
	}
	return &flight.ID, nil
}

// Track is the public lookup by code. Expiry is checked before status so a
// session past expires_at reports Expired whatever its stored status.
func (s *TrackingService) Track(ctx context.Context, code string) (*model.TrackingSession, error) {
	session, err := s.find(ctx, code)
	if err != nil {
		return nil, err
	}

	if session.IsExpired(s.now()) {
		return nil, apperrors.Expired("Tracking code has expired")
	}
	if session.Status != model.TrackingStatusActive {
		return nil, apperrors.InvalidState(fmt.Sprintf("Tracking code is %s", session.Status))
	}
	return session, nil
}

// UpdateLocation applies the non-empty fields of patch on behalf of the
// session owner.
func (s *TrackingService) UpdateLocation(ctx context.Context, code, callerID string, patch model.TrackingPatch) (*model.TrackingSession, error) {
	session, err := s.findOwned(ctx, code, callerID, "You can only update your own tracking information")
	if err != nil {
		return nil, err
	}

	if patch.CurrentLocation != nil {
		if *patch.CurrentLocation == "" {
			patch.CurrentLocation = nil
		} else if utf8.RuneCountInString(*patch.CurrentLocation) > MaxLocationLength {
			return nil, apperrors.InvalidInput("current_location", fmt.Sprintf("must be at most %d characters", MaxLocationLength))
		}
	}
	if patch.Status != nil {
		if *patch.Status == "" {
			patch.Status = nil
		} else if err := checkTransition(session.Status, *patch.Status); err != nil {
			return nil, err
		}
	}

	updated, err := s.sessions.Update(ctx, session.TrackingCode, patch, s.now().UTC())
	if err != nil {
		return nil, storeErr(err)
	}
	if updated == nil {
		return nil, apperrors.NotFound("Tracking code")
	}

	eventType := model.TrackingEventLocationUpdated
	if updated.Status != model.TrackingStatusActive {
		eventType = model.TrackingEventCompleted
	}
	s.publish(ctx, eventType, updated)

	log.Info().
		Str("code", util.MaskCode(updated.TrackingCode)).
		Str("status", string(updated.Status)).
		Msg("tracking session updated")

	return updated, nil
}

// Deactivate marks the owner's session completed.
func (s *TrackingService) Deactivate(ctx context.Context, code, callerID string) error {
	session, err := s.findOwned(ctx, code, callerID, "You can only deactivate your own tracking code")
	if err != nil {
		return err
	}

	completed := model.TrackingStatusCompleted
	updated, err := s.sessions.Update(ctx, session.TrackingCode, model.TrackingPatch{Status: &completed}, s.now().UTC())
	if err != nil {
		return storeErr(err)
	}
	if updated == nil {
		return apperrors.NotFound("Tracking code")
	}

	s.publish(ctx, model.TrackingEventCompleted, updated)

	log.Info().
		Str("passengerId", callerID).
		Str("code", util.MaskCode(updated.TrackingCode)).
		Msg("tracking session deactivated")

	return nil
}

func (s *TrackingService) find(ctx context.Context, code string) (*model.TrackingSession, error) {
	code = util.NormalizeCode(code)
	if !util.IsTrackingCode(code) {
		return nil, apperrors.NotFound("Tracking code")
	}
	session, err := s.sessions.FindByCode(ctx, code)
	if err != nil {
		return nil, storeErr(err)
	}
	if session == nil {
		return nil, apperrors.NotFound("Tracking code")
	}
	return session, nil
}

func (s *TrackingService) findOwned(ctx context.Context, code, callerID, denied string) (*model.TrackingSession, error) {
	session, err := s.find(ctx, code)
	if err != nil {
		return nil, err
	}
	if !session.OwnedBy(callerID) {
		log.Warn().
			Str("callerId", callerID).
			Str("code", util.MaskCode(session.TrackingCode)).
			Msg("tracking mutation by non-owner rejected")
		return nil, apperrors.Forbidden(denied)
	}
	return session, nil
}

// checkTransition enforces active -> completed and active -> expired.
// Restating the current status is accepted as a no-op.
func checkTransition(from, to model.TrackingStatus) error {
	if !to.Valid() {
		return apperrors.InvalidInput("status", fmt.Sprintf("unknown status %q", to))
	}
	if from == to {
		return nil
	}
	if from == model.TrackingStatusActive &&
		(to == model.TrackingStatusCompleted || to == model.TrackingStatusExpired) {
		return nil
	}
	return apperrors.InvalidState(fmt.Sprintf("Cannot change tracking status from %s to %s", from, to))
}

func (s *TrackingService) publish(ctx context.Context, eventType string, session *model.TrackingSession) {
	if s.events == nil {
		return
	}
	data, err := json.Marshal(model.TrackingEvent{
		Type:         eventType,
		TrackingCode: session.TrackingCode,
		Session:      *session,
	})
	if err != nil {
		log.Error().Err(err).Msg("marshal tracking event")
		return
	}
	if err := s.events.Publish(ctx, session.TrackingCode, sse.Event{Type: eventType, Data: data}); err != nil {
		log.Warn().Err(err).Str("event", eventType).Msg("failed to publish tracking event")
	}
}
