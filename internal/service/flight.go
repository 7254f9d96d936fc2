package service

import (
	"context"
	"strings"

	"github.com/aeroway/aeroway-api/internal/database"
	apperrors "github.com/aeroway/aeroway-api/internal/errors"
	"github.com/aeroway/aeroway-api/internal/model"
	"github.com/aeroway/aeroway-api/internal/repository"
)

type FlightService struct {
	flights repository.FlightRepository
	users   repository.UserRepository
}

func NewFlightService(flights repository.FlightRepository, users repository.UserRepository) *FlightService {
	return &FlightService{flights: flights, users: users}
}

func (s *FlightService) List(ctx context.Context, filter model.FlightFilter) ([]model.Flight, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, apperrors.InvalidInput("status", "unknown flight status")
	}
	flights, err := s.flights.List(ctx, filter)
	if err != nil {
		return nil, storeErr(err)
	}
	return flights, nil
}

// Get looks a flight up by number, case-insensitively.
func (s *FlightService) Get(ctx context.Context, number string) (*model.Flight, error) {
	number = normalizeFlightNumber(number)
	flight, err := s.flights.FindByNumber(ctx, number)
	if err != nil {
		return nil, storeErr(err)
	}
	if flight == nil {
		return nil, apperrors.NotFound("Flight " + number)
	}
	return flight, nil
}

// MyFlight resolves the caller's flight through the ticket number stored on
// their account.
func (s *FlightService) MyFlight(ctx context.Context, userID string) (*model.Flight, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}
	if user == nil || user.TicketNumber == nil || *user.TicketNumber == "" {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "No ticket number associated with this account")
	}

	flight, err := s.flights.FindByTicket(ctx, *user.TicketNumber)
	if err != nil {
		return nil, storeErr(err)
	}
	if flight == nil {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "Flight not found for your ticket")
	}
	return flight, nil
}

func (s *FlightService) SearchArrivals(ctx context.Context, search model.ArrivalSearch) ([]model.Flight, error) {
	flights, err := s.flights.SearchArrivals(ctx, search)
	if err != nil {
		return nil, storeErr(err)
	}
	return flights, nil
}

func (s *FlightService) Create(ctx context.Context, params model.CreateFlightParams) (*model.Flight, error) {
	params.FlightNumber = normalizeFlightNumber(params.FlightNumber)
	if params.Status == "" {
		params.Status = model.FlightStatusOnTime
	}
	if !params.Status.Valid() {
		return nil, apperrors.InvalidInput("status", "unknown flight status")
	}

	existing, err := s.flights.FindByNumber(ctx, params.FlightNumber)
	if err != nil {
		return nil, storeErr(err)
	}
	if existing != nil {
		return nil, apperrors.Conflict("Flight number already exists")
	}

	flight, err := s.flights.Create(ctx, params)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperrors.Conflict("Flight number already exists")
		}
		return nil, storeErr(err)
	}
	return flight, nil
}

// Update applies a partial update. An empty patch only refreshes updated_at.
func (s *FlightService) Update(ctx context.Context, number string, params model.UpdateFlightParams) (*model.Flight, error) {
	number = normalizeFlightNumber(number)
	if params.Status != nil && !params.Status.Valid() {
		return nil, apperrors.InvalidInput("status", "unknown flight status")
	}

	flight, err := s.flights.Update(ctx, number, params)
	if err != nil {
		return nil, storeErr(err)
	}
	if flight == nil {
		return nil, apperrors.NotFound("Flight " + number)
	}
	return flight, nil
}

func normalizeFlightNumber(number string) string {
	return strings.ToUpper(strings.TrimSpace(number))
}
