package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aeroway/aeroway-api/internal/audit"
	apperrors "github.com/aeroway/aeroway-api/internal/errors"
	"github.com/aeroway/aeroway-api/internal/middleware"
	"github.com/aeroway/aeroway-api/internal/model"
	"github.com/aeroway/aeroway-api/internal/service"
	"github.com/aeroway/aeroway-api/internal/util"
)

type TrackingService interface {
	Generate(ctx context.Context, passengerID string) (*service.GenerateResult, error)
	Track(ctx context.Context, code string) (*model.TrackingSession, error)
	UpdateLocation(ctx context.Context, code, callerID string, patch model.TrackingPatch) (*model.TrackingSession, error)
	Deactivate(ctx context.Context, code, callerID string) error
}

type MeetGreetHandler struct {
	tracking  TrackingService
	required  func(http.Handler) http.Handler
	trackRate func(http.Handler) http.Handler
}

func NewMeetGreetHandler(tracking TrackingService, required, trackRate func(http.Handler) http.Handler) *MeetGreetHandler {
	return &MeetGreetHandler{tracking: tracking, required: required, trackRate: trackRate}
}

func (h *MeetGreetHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(h.trackRate)
		r.Post("/track", h.TrackByBody)
		r.Get("/track/{code}", h.TrackByPath)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.required)
		r.Post("/generate", h.Generate)
		r.Patch("/{code}", h.Update)
		r.Delete("/{code}", h.Deactivate)
	})

	return r
}

// POST /api/meet-greet/generate
// Returns the caller's live session when one exists.
func (h *MeetGreetHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	result, err := h.tracking.Generate(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:    audit.EventTrackingGenerate,
		UserID:  userID,
		Code:    util.MaskCode(result.Session.TrackingCode),
		Details: map[string]interface{}{"created": result.Created},
	})
	writeJSON(w, http.StatusCreated, result.Session)
}

type trackRequest struct {
	TrackingCode string `json:"tracking_code" validate:"required,min=6,max=10"`
}

// POST /api/meet-greet/track
func (h *MeetGreetHandler) TrackByBody(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.track(w, r, req.TrackingCode)
}

// GET /api/meet-greet/track/{code}
func (h *MeetGreetHandler) TrackByPath(w http.ResponseWriter, r *http.Request) {
	h.track(w, r, chi.URLParam(r, "code"))
}

func (h *MeetGreetHandler) track(w http.ResponseWriter, r *http.Request, code string) {
	session, err := h.tracking.Track(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

type updateTrackingRequest struct {
	CurrentLocation *string `json:"current_location" validate:"omitempty,max=100"`
	Status          *string `json:"status" validate:"omitempty,oneof=active completed expired"`
}

// PATCH /api/meet-greet/{code}
func (h *MeetGreetHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateTrackingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	patch := model.TrackingPatch{CurrentLocation: req.CurrentLocation}
	if req.Status != nil {
		s := model.TrackingStatus(*req.Status)
		patch.Status = &s
	}

	userID := middleware.GetUserID(r.Context())
	code := chi.URLParam(r, "code")
	session, err := h.tracking.UpdateLocation(r.Context(), code, userID, patch)
	if err != nil {
		h.auditDenied(r, err, userID, code)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// DELETE /api/meet-greet/{code}
func (h *MeetGreetHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	code := chi.URLParam(r, "code")
	if err := h.tracking.Deactivate(r.Context(), code, userID); err != nil {
		h.auditDenied(r, err, userID, code)
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:   audit.EventTrackingComplete,
		UserID: userID,
		Code:   util.MaskCode(util.NormalizeCode(code)),
	})
	writeSuccess(w, "Tracking code deactivated successfully", nil)
}

func (h *MeetGreetHandler) auditDenied(r *http.Request, err error, userID, code string) {
	if !apperrors.HasCode(err, apperrors.ErrCodeForbidden) {
		return
	}
	audit.LogFromRequest(r, audit.Event{
		Type:   audit.EventTrackingDenied,
		UserID: userID,
		Code:   util.MaskCode(util.NormalizeCode(code)),
	})
}
