package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aeroway/aeroway-api/internal/database"
	"github.com/aeroway/aeroway-api/internal/model"
)

const trackingTable = "meet_greet"

type TrackingSessionRepository interface {
	FindByCode(ctx context.Context, code string) (*model.TrackingSession, error)
	// FindActiveByPassenger returns the newest session whose stored status is
	// active, regardless of expiry.
	FindActiveByPassenger(ctx context.Context, passengerID string) (*model.TrackingSession, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, params model.CreateTrackingSessionParams) (*model.TrackingSession, error)
	// Update applies patch and refreshes last_updated. It returns nil when the
	// code does not exist.
	Update(ctx context.Context, code string, patch model.TrackingPatch, now time.Time) (*model.TrackingSession, error)
	MarkExpired(ctx context.Context, id string, now time.Time) error
	// ExpireStale rewrites every active session past its expiry to expired.
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
	WithTx(tx *sqlx.Tx) TrackingSessionRepository
}

type trackingSessionRepo struct {
	q *database.Querier
}

func NewTrackingSessionRepository(q *database.Querier) TrackingSessionRepository {
	return &trackingSessionRepo{q: q}
}

func (r *trackingSessionRepo) WithTx(tx *sqlx.Tx) TrackingSessionRepository {
	return &trackingSessionRepo{q: bind(r.q, tx)}
}

func (r *trackingSessionRepo) FindByCode(ctx context.Context, code string) (*model.TrackingSession, error) {
	var s model.TrackingSession
	ok, err := r.q.SelectOne(ctx, &s, database.SelectQuery{
		Table: trackingTable,
		Where: database.Fields{database.F("tracking_code", code)},
	})
	return found(&s, ok, err)
}

func (r *trackingSessionRepo) FindActiveByPassenger(ctx context.Context, passengerID string) (*model.TrackingSession, error) {
	var s model.TrackingSession
	ok, err := r.q.SelectOne(ctx, &s, database.SelectQuery{
		Table: trackingTable,
		Where: database.Fields{
			database.F("passenger_id", passengerID),
			database.F("status", model.TrackingStatusActive),
		},
		OrderBy: "created_at DESC",
		Limit:   1,
	})
	return found(&s, ok, err)
}

func (r *trackingSessionRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	var row struct {
		ID string `db:"id"`
	}
	return r.q.SelectOne(ctx, &row, database.SelectQuery{
		Table:   trackingTable,
		Columns: []string{"id"},
		Where:   database.Fields{database.F("tracking_code", code)},
	})
}

func (r *trackingSessionRepo) Create(ctx context.Context, params model.CreateTrackingSessionParams) (*model.TrackingSession, error) {
	data := database.Fields{
		database.F("tracking_code", params.TrackingCode),
		database.F("passenger_id", params.PassengerID),
		database.F("passenger_name", params.PassengerName),
		database.F("flight_id", params.FlightID),
		database.F("current_location", params.CurrentLocation),
		database.F("status", model.TrackingStatusActive),
		database.F("created_at", params.CreatedAt),
		database.F("expires_at", params.ExpiresAt),
		database.F("last_updated", params.CreatedAt),
	}

	var s model.TrackingSession
	if err := r.q.Insert(ctx, &s, trackingTable, data); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *trackingSessionRepo) Update(ctx context.Context, code string, patch model.TrackingPatch, now time.Time) (*model.TrackingSession, error) {
	var data database.Fields
	data = optional(data, "current_location", patch.CurrentLocation)
	data = optional(data, "status", patch.Status)
	data = data.Set("last_updated", now)

	var s model.TrackingSession
	ok, err := r.q.Update(ctx, &s, trackingTable, data,
		database.Fields{database.F("tracking_code", code)})
	return found(&s, ok, err)
}

func (r *trackingSessionRepo) MarkExpired(ctx context.Context, id string, now time.Time) error {
	var s model.TrackingSession
	_, err := r.q.Update(ctx, &s, trackingTable,
		database.Fields{
			database.F("status", model.TrackingStatusExpired),
			database.F("last_updated", now),
		},
		database.Fields{database.F("id", id)},
	)
	return err
}

func (r *trackingSessionRepo) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	return r.q.Exec(ctx, `
		UPDATE meet_greet
		SET status = $1, last_updated = $2
		WHERE status = $3 AND expires_at < $2
	`, model.TrackingStatusExpired, now, model.TrackingStatusActive)
}
