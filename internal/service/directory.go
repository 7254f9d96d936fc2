package service

import (
	"context"

	apperrors "github.com/aeroway/aeroway-api/internal/errors"
	"github.com/aeroway/aeroway-api/internal/model"
	"github.com/aeroway/aeroway-api/internal/repository"
)

// DirectoryService lists the airport's services and spaces.
type DirectoryService struct {
	places repository.PlaceRepository
}

func NewDirectoryService(places repository.PlaceRepository) *DirectoryService {
	return &DirectoryService{places: places}
}

func (s *DirectoryService) Services(ctx context.Context, filter model.PlaceFilter) ([]model.Service, error) {
	if filter.Category != nil && !model.ServiceCategory(*filter.Category).Valid() {
		return nil, apperrors.InvalidInput("category", "unknown service category")
	}
	services, err := s.places.ListServices(ctx, filter)
	if err != nil {
		return nil, storeErr(err)
	}
	return services, nil
}

// ServicesByCategory lists every service in category.
func (s *DirectoryService) ServicesByCategory(ctx context.Context, category model.ServiceCategory) ([]model.Service, error) {
	c := string(category)
	return s.Services(ctx, model.PlaceFilter{Category: &c})
}

func (s *DirectoryService) Spaces(ctx context.Context, filter model.PlaceFilter) ([]model.Space, error) {
	if filter.Category != nil && !model.SpaceCategory(*filter.Category).Valid() {
		return nil, apperrors.InvalidInput("category", "unknown space category")
	}
	spaces, err := s.places.ListSpaces(ctx, filter)
	if err != nil {
		return nil, storeErr(err)
	}
	return spaces, nil
}
