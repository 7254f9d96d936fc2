package model

import "time"

// TrackingSession is a meet & greet row. Expiry is derived from ExpiresAt;
// Status may still read active after the session has expired.
type TrackingSession struct {
	ID              string         `db:"id" json:"id"`
	TrackingCode    string         `db:"tracking_code" json:"tracking_code"`
	PassengerID     string         `db:"passenger_id" json:"passenger_id"`
	PassengerName   string         `db:"passenger_name" json:"passenger_name"`
	FlightID        *string        `db:"flight_id" json:"flight_id"`
	CurrentLocation *string        `db:"current_location" json:"current_location"`
	Status          TrackingStatus `db:"status" json:"status"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	ExpiresAt       time.Time      `db:"expires_at" json:"expires_at"`
	LastUpdated     time.Time      `db:"last_updated" json:"last_updated"`
}

// IsExpired reports whether now is past the session's expiry.
func (s *TrackingSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// IsLive reports whether the session is active and unexpired at now.
func (s *TrackingSession) IsLive(now time.Time) bool {
	return s.Status == TrackingStatusActive && !s.IsExpired(now)
}

// OwnedBy reports whether userID created the session.
func (s *TrackingSession) OwnedBy(userID string) bool {
	return s.PassengerID == userID
}

type CreateTrackingSessionParams struct {
	TrackingCode    string
	PassengerID     string
	PassengerName   string
	FlightID        *string
	CurrentLocation *string
	CreatedAt       time.Time
	ExpiresAt       time.Time
}

// TrackingPatch holds the mutable fields of an update. Nil fields are not applied.
type TrackingPatch struct {
	CurrentLocation *string
	Status          *TrackingStatus
}

// TrackingEvent is published to live followers of a tracking code.
type TrackingEvent struct {
	Type         string          `json:"type"`
	TrackingCode string          `json:"tracking_code"`
	Session      TrackingSession `json:"session"`
}

const (
	TrackingEventLocationUpdated = "location_updated"
	TrackingEventCompleted       = "tracking_completed"
	TrackingEventExpired         = "tracking_expired"
	TrackingEventConnected       = "connected"
)
