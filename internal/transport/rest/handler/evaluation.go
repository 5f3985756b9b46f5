package handler

import (
	"context"
	"net/http"

	"feedbackquest/internal/model"

	"go.uber.org/zap"
)

// Evaluator scores answers and summarizes answer sets
type Evaluator interface {
	Score(ctx context.Context, req *model.EvaluateResponseRequest) (*model.ScoreResult, error)
	AnalyzeTrends(ctx context.Context, req *model.AnalyzeTrendsRequest) (*model.TrendAnalysis, error)
}

// EvaluationHandler handles the model-backed evaluation endpoints
type EvaluationHandler struct {
	evaluator Evaluator
	logger    *zap.Logger
}

// NewEvaluationHandler creates a new evaluation handler
func NewEvaluationHandler(evaluator Evaluator, logger *zap.Logger) *EvaluationHandler {
	return &EvaluationHandler{evaluator: evaluator, logger: logger}
}

// EvaluateResponse handles POST /v1/evaluate-response
func (h *EvaluationHandler) EvaluateResponse(w http.ResponseWriter, r *http.Request) {
	var req model.EvaluateResponseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.evaluator.Score(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, h.logger, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// AnalyzeTrends handles POST /v1/analyze-trends
func (h *EvaluationHandler) AnalyzeTrends(w http.ResponseWriter, r *http.Request) {
	var req model.AnalyzeTrendsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.evaluator.AnalyzeTrends(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, h.logger, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
