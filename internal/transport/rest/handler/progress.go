package handler

import (
	"context"
	"net/http"
	"strconv"

	"feedbackquest/internal/cache"
	"feedbackquest/internal/leveling"
	"feedbackquest/internal/model"
	"feedbackquest/internal/transport/rest/middleware"

	"go.uber.org/zap"
)

// ProgressManager reads and advances participant progress
type ProgressManager interface {
	Load(ctx context.Context, userID string) (*model.UserProgress, error)
	AddPoints(ctx context.Context, userID string, delta int) (*leveling.AddPointsResult, error)
	Rewards(ctx context.Context, userID string) (*model.RewardsResponse, error)
	Leaderboard(ctx context.Context, top int) ([]cache.LeaderboardEntry, error)
	Rank(ctx context.Context, userID string) (*cache.LeaderboardEntry, error)
}

// ProgressHandler handles progress, reward and leaderboard endpoints
type ProgressHandler struct {
	progress ProgressManager
	logger   *zap.Logger
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progress ProgressManager, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{progress: progress, logger: logger}
}

// Get handles GET /v1/progress
func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	progress, err := h.progress.Load(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, h.logger, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, progress)
}

// AddPoints handles POST /v1/progress/points
func (h *ProgressHandler) AddPoints(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.AddPointsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.progress.AddPoints(r.Context(), userID, req.Points)
	if err != nil {
		writeServiceError(w, r, h.logger, statusFor(err), err)
		return
	}

	rewards := result.Rewards
	if rewards == nil {
		rewards = []model.LevelReward{}
	}

	writeJSON(w, http.StatusOK, model.AddPointsResponse{
		Progress:  result.Progress,
		LeveledUp: result.LeveledUp,
		Rewards:   rewards,
	})
}

// Rewards handles GET /v1/rewards
func (h *ProgressHandler) Rewards(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	rewards, err := h.progress.Rewards(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, h.logger, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, rewards)
}

// Leaderboard handles GET /v1/leaderboard?top=N.
// With a valid bearer token the caller's own position is added as "me".
func (h *ProgressHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	top := 0
	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "top must be a positive integer")
			return
		}
		top = n
	}

	entries, err := h.progress.Leaderboard(r.Context(), top)
	if err != nil {
		writeServiceError(w, r, h.logger, statusFor(err), err)
		return
	}

	if entries == nil {
		entries = []cache.LeaderboardEntry{}
	}

	body := map[string]interface{}{"entries": entries}
	if userID := middleware.GetUserID(r.Context()); userID != "" {
		me, err := h.progress.Rank(r.Context(), userID)
		if err != nil {
			writeServiceError(w, r, h.logger, statusFor(err), err)
			return
		}
		if me != nil {
			body["me"] = me
		}
	}

	writeJSON(w, http.StatusOK, body)
}
