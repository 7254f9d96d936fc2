package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aeroway/aeroway-api/internal/model"
	"github.com/aeroway/aeroway-api/internal/repository"
)

type DirectoryService interface {
	Services(ctx context.Context, filter model.PlaceFilter) ([]model.Service, error)
	ServicesByCategory(ctx context.Context, category model.ServiceCategory) ([]model.Service, error)
	Spaces(ctx context.Context, filter model.PlaceFilter) ([]model.Space, error)
}

type DirectoryHandler struct {
	directory DirectoryService
}

func NewDirectoryHandler(directory DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// Register mounts the directory routes on r; they share the /api prefix
// with the meet & greet routes.
func (h *DirectoryHandler) Register(r chi.Router) {
	r.Get("/services", h.ListServices)
	r.Get("/services/{category}", h.ServicesByCategory)
	r.Get("/spaces", h.ListSpaces)
}

func placeFilter(r *http.Request) (model.PlaceFilter, error) {
	limit, err := parseLimit(r, repository.DefaultPlaceLimit, repository.MaxListLimit)
	if err != nil {
		return model.PlaceFilter{}, err
	}
	return model.PlaceFilter{
		Category: queryString(r, "category"),
		Terminal: queryString(r, "terminal"),
		Limit:    limit,
	}, nil
}

// GET /api/services?category=&terminal=&limit=
func (h *DirectoryHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	filter, err := placeFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}
	services, err := h.directory.Services(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, services)
}

// GET /api/services/{category}
func (h *DirectoryHandler) ServicesByCategory(w http.ResponseWriter, r *http.Request) {
	services, err := h.directory.ServicesByCategory(r.Context(), model.ServiceCategory(chi.URLParam(r, "category")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, services)
}

// GET /api/spaces?category=&terminal=&limit=
func (h *DirectoryHandler) ListSpaces(w http.ResponseWriter, r *http.Request) {
	filter, err := placeFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}
	spaces, err := h.directory.Spaces(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, spaces)
}
