package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aeroway/aeroway-api/internal/database"
	"github.com/aeroway/aeroway-api/internal/model"
)

const (
	flightsTable = "flights"

	DefaultFlightLimit  = 50
	DefaultArrivalLimit = 20
)

type FlightRepository interface {
	FindByNumber(ctx context.Context, number string) (*model.Flight, error)
	// FindByTicket returns the first flight whose number contains ticket, case-insensitively.
	FindByTicket(ctx context.Context, ticket string) (*model.Flight, error)
	List(ctx context.Context, filter model.FlightFilter) ([]model.Flight, error)
	SearchArrivals(ctx context.Context, search model.ArrivalSearch) ([]model.Flight, error)
	Create(ctx context.Context, params model.CreateFlightParams) (*model.Flight, error)
	Update(ctx context.Context, number string, params model.UpdateFlightParams) (*model.Flight, error)
	WithTx(tx *sqlx.Tx) FlightRepository
}

type flightRepo struct {
	q *database.Querier
}

func NewFlightRepository(q *database.Querier) FlightRepository {
	return &flightRepo{q: q}
}

func (r *flightRepo) WithTx(tx *sqlx.Tx) FlightRepository {
	return &flightRepo{q: bind(r.q, tx)}
}

func (r *flightRepo) FindByNumber(ctx context.Context, number string) (*model.Flight, error) {
	var flight model.Flight
	ok, err := r.q.SelectOne(ctx, &flight, database.SelectQuery{
		Table: flightsTable,
		Where: database.Fields{database.F("flight_number", number)},
	})
	return found(&flight, ok, err)
}

func (r *flightRepo) FindByTicket(ctx context.Context, ticket string) (*model.Flight, error) {
	var flights []model.Flight
	err := r.q.Raw(ctx, &flights, `
		SELECT * FROM flights
		WHERE flight_number ILIKE $1
		ORDER BY departure_time ASC NULLS LAST
		LIMIT 1
	`, "%"+escapeLike(ticket)+"%")
	return first(flights, err)
}

func (r *flightRepo) List(ctx context.Context, filter model.FlightFilter) ([]model.Flight, error) {
	var where database.Fields
	where = optional(where, "status", filter.Status)
	where = optional(where, "terminal", filter.Terminal)

	flights := []model.Flight{}
	err := r.q.SelectAll(ctx, &flights, database.SelectQuery{
		Table:   flightsTable,
		Where:   where,
		OrderBy: "departure_time ASC",
		Limit:   limitOr(filter.Limit, DefaultFlightLimit, MaxListLimit),
	})
	if err != nil {
		return nil, err
	}
	return flights, nil
}

func (r *flightRepo) SearchArrivals(ctx context.Context, search model.ArrivalSearch) ([]model.Flight, error) {
	conds := []string{"arrival_time IS NOT NULL"}
	var args []any
	if search.Origin != nil && *search.Origin != "" {
		args = append(args, "%"+escapeLike(*search.Origin)+"%")
		conds = append(conds, fmt.Sprintf("origin ILIKE $%d", len(args)))
	}
	if search.FlightNumber != nil && *search.FlightNumber != "" {
		args = append(args, "%"+escapeLike(*search.FlightNumber)+"%")
		conds = append(conds, fmt.Sprintf("flight_number ILIKE $%d", len(args)))
	}
	args = append(args, limitOr(search.Limit, DefaultArrivalLimit, MaxListLimit))

	query := fmt.Sprintf(`
		SELECT * FROM flights
		WHERE %s
		ORDER BY arrival_time ASC
		LIMIT $%d
	`, strings.Join(conds, " AND "), len(args))

	flights := []model.Flight{}
	if err := r.q.Raw(ctx, &flights, query, args...); err != nil {
		return nil, err
	}
	return flights, nil
}

func (r *flightRepo) Create(ctx context.Context, params model.CreateFlightParams) (*model.Flight, error) {
	status := params.Status
	if status == "" {
		status = model.FlightStatusOnTime
	}

	data := database.Fields{
		database.F("flight_number", params.FlightNumber),
		database.F("airline", params.Airline),
		database.F("status", status),
	}
	data = optional(data, "origin", params.Origin)
	data = optional(data, "destination", params.Destination)
	data = optional(data, "departure_time", params.DepartureTime)
	data = optional(data, "arrival_time", params.ArrivalTime)
	data = optional(data, "gate", params.Gate)
	data = optional(data, "terminal", params.Terminal)
	data = optional(data, "boarding_time", params.BoardingTime)
	data = optional(data, "baggage_claim", params.BaggageClaim)

	var flight model.Flight
	if err := r.q.Insert(ctx, &flight, flightsTable, data); err != nil {
		return nil, err
	}
	return &flight, nil
}

// Update applies the non-nil fields of params. It returns nil when no flight
// has the given number.
func (r *flightRepo) Update(ctx context.Context, number string, params model.UpdateFlightParams) (*model.Flight, error) {
	var data database.Fields
	data = optional(data, "airline", params.Airline)
	data = optional(data, "origin", params.Origin)
	data = optional(data, "destination", params.Destination)
	data = optional(data, "departure_time", params.DepartureTime)
	data = optional(data, "arrival_time", params.ArrivalTime)
	data = optional(data, "gate", params.Gate)
	data = optional(data, "terminal", params.Terminal)
	data = optional(data, "status", params.Status)
	data = optional(data, "boarding_time", params.BoardingTime)
	data = optional(data, "baggage_claim", params.BaggageClaim)
	data = data.Set("updated_at", time.Now().UTC())

	var flight model.Flight
	ok, err := r.q.Update(ctx, &flight, flightsTable, data,
		database.Fields{database.F("flight_number", number)})
	return found(&flight, ok, err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralises LIKE wildcards in user input.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
