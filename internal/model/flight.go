package model

import "time"

type Flight struct {
	ID            string       `db:"id" json:"id"`
	FlightNumber  string       `db:"flight_number" json:"flight_number"`
	Airline       string       `db:"airline" json:"airline"`
	Origin        *string      `db:"origin" json:"origin"`
	Destination   *string      `db:"destination" json:"destination"`
	DepartureTime *time.Time   `db:"departure_time" json:"departure_time"`
	ArrivalTime   *time.Time   `db:"arrival_time" json:"arrival_time"`
	Gate          *string      `db:"gate" json:"gate"`
	Terminal      *string      `db:"terminal" json:"terminal"`
	Status        FlightStatus `db:"status" json:"status"`
	BoardingTime  *time.Time   `db:"boarding_time" json:"boarding_time"`
	BaggageClaim  *string      `db:"baggage_claim" json:"baggage_claim"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     *time.Time   `db:"updated_at" json:"updated_at,omitempty"`
}

type CreateFlightParams struct {
	FlightNumber  string
	Airline       string
	Origin        *string
	Destination   *string
	DepartureTime *time.Time
	ArrivalTime   *time.Time
	Gate          *string
	Terminal      *string
	Status        FlightStatus
	BoardingTime  *time.Time
	BaggageClaim  *string
}

// UpdateFlightParams carries a partial update; nil fields are left untouched.
type UpdateFlightParams struct {
	Airline       *string
	Origin        *string
	Destination   *string
	DepartureTime *time.Time
	ArrivalTime   *time.Time
	Gate          *string
	Terminal      *string
	Status        *FlightStatus
	BoardingTime  *time.Time
	BaggageClaim  *string
}

type FlightFilter struct {
	Status   *FlightStatus
	Terminal *string
	Limit    int
}

type ArrivalSearch struct {
	Origin       *string
	FlightNumber *string
	Limit        int
}
