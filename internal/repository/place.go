package repository

import (
	"context"

	"github.com/aeroway/aeroway-api/internal/database"
	"github.com/aeroway/aeroway-api/internal/model"
)

const DefaultPlaceLimit = 50

// PlaceRepository reads the airport directory. It is read-only, so it has no
// transactional variant.
type PlaceRepository interface {
	ListServices(ctx context.Context, filter model.PlaceFilter) ([]model.Service, error)
	ListSpaces(ctx context.Context, filter model.PlaceFilter) ([]model.Space, error)
}

type placeRepo struct {
	q *database.Querier
}

func NewPlaceRepository(q *database.Querier) PlaceRepository {
	return &placeRepo{q: q}
}

func placeQuery(table string, filter model.PlaceFilter) database.SelectQuery {
	var where database.Fields
	where = optional(where, "category", filter.Category)
	where = optional(where, "terminal", filter.Terminal)
	return database.SelectQuery{
		Table:   table,
		Where:   where,
		OrderBy: "name ASC",
		Limit:   limitOr(filter.Limit, DefaultPlaceLimit, MaxListLimit),
	}
}

func (r *placeRepo) ListServices(ctx context.Context, filter model.PlaceFilter) ([]model.Service, error) {
	services := []model.Service{}
	if err := r.q.SelectAll(ctx, &services, placeQuery("services", filter)); err != nil {
		return nil, err
	}
	return services, nil
}

func (r *placeRepo) ListSpaces(ctx context.Context, filter model.PlaceFilter) ([]model.Space, error) {
	spaces := []model.Space{}
	if err := r.q.SelectAll(ctx, &spaces, placeQuery("spaces", filter)); err != nil {
		return nil, err
	}
	return spaces, nil
}
