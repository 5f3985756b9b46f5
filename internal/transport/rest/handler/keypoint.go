package handler

import (
	"context"
	"errors"
	"net/http"

	"feedbackquest/internal/model"
	"feedbackquest/internal/service"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// KeypointManager extracts, lists and likes keypoints
type KeypointManager interface {
	Extract(ctx context.Context, req *model.ExtractKeypointsRequest) (*model.KeypointsResponse, error)
	List(ctx context.Context, questionID string) (*model.KeypointsResponse, error)
	Like(ctx context.Context, keypointID, userID string) (*model.KeypointView, error)
	Unlike(ctx context.Context, keypointID, userID string) (*model.KeypointView, error)
}

// KeypointHandler handles keypoint endpoints
type KeypointHandler struct {
	keypoints KeypointManager
	logger    *zap.Logger
}

// NewKeypointHandler creates a new keypoint handler
func NewKeypointHandler(keypoints KeypointManager, logger *zap.Logger) *KeypointHandler {
	return &KeypointHandler{keypoints: keypoints, logger: logger}
}

// Extract handles POST /v1/extract-keypoints
func (h *KeypointHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req model.ExtractKeypointsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.keypoints.Extract(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, h.logger, extractStatus(err), err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// List handles GET /v1/questions/{questionId}/keypoints
func (h *KeypointHandler) List(w http.ResponseWriter, r *http.Request) {
	questionID := mux.Vars(r)["questionId"]

	result, err := h.keypoints.List(r.Context(), questionID)
	if err != nil {
		writeServiceError(w, r, h.logger, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Like handles POST /v1/keypoints/{keypointId}/like
func (h *KeypointHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	view, err := h.keypoints.Like(r.Context(), mux.Vars(r)["keypointId"], userID)
	if err != nil {
		writeServiceError(w, r, h.logger, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Unlike handles DELETE /v1/keypoints/{keypointId}/like
func (h *KeypointHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	view, err := h.keypoints.Unlike(r.Context(), mux.Vars(r)["keypointId"], userID)
	if err != nil {
		writeServiceError(w, r, h.logger, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// extractStatus collapses gateway failures to 500; extraction has no capacity statuses
func extractStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrExtractionInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
