package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/aeroway/aeroway-api/internal/errors"
	"github.com/aeroway/aeroway-api/internal/model"
)

func TestDirectoryService_Services(t *testing.T) {
	ctx := context.Background()
	repo := &fakePlaceRepo{services: []model.Service{{ID: "s1", Name: "Café Atlas", Category: model.ServiceCategoryCafe}}}
	svc := NewDirectoryService(repo)

	services, err := svc.Services(ctx, model.PlaceFilter{Terminal: strPtr("1"), Limit: 20})
	require.NoError(t, err)
	assert.Len(t, services, 1)
	assert.Equal(t, 20, repo.lastFilter.Limit)

	_, err = svc.Services(ctx, model.PlaceFilter{Category: strPtr("casino")})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidInput))
}

func TestDirectoryService_ServicesByCategory(t *testing.T) {
	repo := &fakePlaceRepo{}
	svc := NewDirectoryService(repo)

	_, err := svc.ServicesByCategory(context.Background(), model.ServiceCategoryPharmacy)
	require.NoError(t, err)
	require.NotNil(t, repo.lastFilter.Category)
	assert.Equal(t, "pharmacy", *repo.lastFilter.Category)

	_, err = svc.ServicesByCategory(context.Background(), "casino")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidInput))
}

func TestDirectoryService_Spaces(t *testing.T) {
	ctx := context.Background()
	repo := &fakePlaceRepo{spaces: []model.Space{{ID: "g1", Name: "Gate A1", Category: model.SpaceCategoryGate}}}
	svc := NewDirectoryService(repo)

	spaces, err := svc.Spaces(ctx, model.PlaceFilter{Category: strPtr("gate")})
	require.NoError(t, err)
	assert.Len(t, spaces, 1)

	_, err = svc.Spaces(ctx, model.PlaceFilter{Category: strPtr("shop")})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidInput))

	repo.err = errors.New("connection reset")
	_, err = svc.Spaces(ctx, model.PlaceFilter{})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDatabase))
}
