package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/aeroway/aeroway-api/internal/errors"
	"github.com/aeroway/aeroway-api/internal/middleware"
	"github.com/aeroway/aeroway-api/internal/model"
	"github.com/aeroway/aeroway-api/internal/repository"
)

type FlightService interface {
	List(ctx context.Context, filter model.FlightFilter) ([]model.Flight, error)
	Get(ctx context.Context, number string) (*model.Flight, error)
	MyFlight(ctx context.Context, userID string) (*model.Flight, error)
	SearchArrivals(ctx context.Context, search model.ArrivalSearch) ([]model.Flight, error)
	Create(ctx context.Context, params model.CreateFlightParams) (*model.Flight, error)
	Update(ctx context.Context, number string, params model.UpdateFlightParams) (*model.Flight, error)
}

type FlightHandler struct {
	flights  FlightService
	required func(http.Handler) http.Handler
	optional func(http.Handler) http.Handler
}

func NewFlightHandler(flights FlightService, required, optional func(http.Handler) http.Handler) *FlightHandler {
	return &FlightHandler{flights: flights, required: required, optional: optional}
}

func (h *FlightHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(h.optional)
		r.Get("/", h.List)
		r.Get("/arrivals/search", h.SearchArrivals)
		r.Get("/{number}", h.Get)
	})
	r.With(h.required).Get("/user/my-flight", h.MyFlight)

	r.Post("/", h.Create)
	r.Patch("/{number}", h.Update)

	return r
}

// GET /api/flights?status=&terminal=&limit=
func (h *FlightHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, repository.DefaultFlightLimit, repository.MaxListLimit)
	if err != nil {
		writeError(w, err)
		return
	}

	filter := model.FlightFilter{Terminal: queryString(r, "terminal"), Limit: limit}
	status := queryString(r, "status")
	if status == nil {
		status = queryString(r, "status_filter")
	}
	if status != nil {
		s := model.FlightStatus(*status)
		filter.Status = &s
	}

	flights, err := h.flights.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, flights)
}

// GET /api/flights/{number}
func (h *FlightHandler) Get(w http.ResponseWriter, r *http.Request) {
	flight, err := h.flights.Get(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, flight)
}

// GET /api/flights/user/my-flight
func (h *FlightHandler) MyFlight(w http.ResponseWriter, r *http.Request) {
	flight, err := h.flights.MyFlight(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, flight)
}

// GET /api/flights/arrivals/search?origin=&flight_number=&limit=
func (h *FlightHandler) SearchArrivals(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, repository.DefaultArrivalLimit, repository.MaxListLimit)
	if err != nil {
		writeError(w, err)
		return
	}

	flights, err := h.flights.SearchArrivals(r.Context(), model.ArrivalSearch{
		Origin:       queryString(r, "origin"),
		FlightNumber: queryString(r, "flight_number"),
		Limit:        limit,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, flights)
}

type createFlightRequest struct {
	FlightNumber  string     `json:"flight_number" validate:"required,min=3,max=20"`
	Airline       string     `json:"airline" validate:"required,min=1,max=100"`
	Origin        *string    `json:"origin" validate:"omitempty,max=100"`
	Destination   *string    `json:"destination" validate:"omitempty,max=100"`
	DepartureTime *time.Time `json:"departure_time"`
	ArrivalTime   *time.Time `json:"arrival_time"`
	Gate          *string    `json:"gate" validate:"omitempty,max=10"`
	Terminal      *string    `json:"terminal" validate:"omitempty,max=10"`
	Status        string     `json:"status"`
	BoardingTime  *time.Time `json:"boarding_time"`
	BaggageClaim  *string    `json:"baggage_claim" validate:"omitempty,max=50"`
}

// POST /api/flights
func (h *FlightHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createFlightRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validateFlightStatus(req.Status); err != nil {
		writeError(w, err)
		return
	}

	flight, err := h.flights.Create(r.Context(), model.CreateFlightParams{
		FlightNumber:  req.FlightNumber,
		Airline:       req.Airline,
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
		Gate:          req.Gate,
		Terminal:      req.Terminal,
		Status:        model.FlightStatus(req.Status),
		BoardingTime:  req.BoardingTime,
		BaggageClaim:  req.BaggageClaim,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, flight)
}

type updateFlightRequest struct {
	Airline       *string    `json:"airline" validate:"omitempty,min=1,max=100"`
	Origin        *string    `json:"origin" validate:"omitempty,max=100"`
	Destination   *string    `json:"destination" validate:"omitempty,max=100"`
	DepartureTime *time.Time `json:"departure_time"`
	ArrivalTime   *time.Time `json:"arrival_time"`
	Gate          *string    `json:"gate" validate:"omitempty,max=10"`
	Terminal      *string    `json:"terminal" validate:"omitempty,max=10"`
	Status        *string    `json:"status"`
	BoardingTime  *time.Time `json:"boarding_time"`
	BaggageClaim  *string    `json:"baggage_claim" validate:"omitempty,max=50"`
}

// PATCH /api/flights/{number}
func (h *FlightHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateFlightRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	params := model.UpdateFlightParams{
		Airline:       req.Airline,
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
		Gate:          req.Gate,
		Terminal:      req.Terminal,
		BoardingTime:  req.BoardingTime,
		BaggageClaim:  req.BaggageClaim,
	}
	if req.Status != nil {
		if err := validateFlightStatus(*req.Status); err != nil {
			writeError(w, err)
			return
		}
		s := model.FlightStatus(*req.Status)
		params.Status = &s
	}

	flight, err := h.flights.Update(r.Context(), chi.URLParam(r, "number"), params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, flight)
}

// validateFlightStatus accepts "" (server default) or a known status.
func validateFlightStatus(status string) error {
	if status == "" || model.FlightStatus(status).Valid() {
		return nil
	}
	return apperrors.InvalidInput("status", "unknown flight status")
}
