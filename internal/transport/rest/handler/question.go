package handler

import (
	"context"
	"net/http"

	"feedbackquest/internal/model"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// QuestionCatalog serves questions and records answers
type QuestionCatalog interface {
	List(ctx context.Context) ([]*model.Question, error)
	Get(ctx context.Context, id string) (*model.Question, error)
	SubmitResponse(ctx context.Context, userID string, req *model.SubmitResponseRequest) (*model.Response, error)
	Responses(ctx context.Context, questionID string) ([]*model.Response, error)
}

// QuestionHandler handles question and response endpoints
type QuestionHandler struct {
	questions QuestionCatalog
	logger    *zap.Logger
}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler(questions QuestionCatalog, logger *zap.Logger) *QuestionHandler {
	return &QuestionHandler{questions: questions, logger: logger}
}

// List handles GET /v1/questions
func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	questions, err := h.questions.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": questions})
}

// Get handles GET /v1/questions/{questionId}
func (h *QuestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	q, err := h.questions.Get(r.Context(), mux.Vars(r)["questionId"])
	if err != nil {
		writeServiceError(w, r, h.logger, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, q)
}

// ListResponses handles GET /v1/questions/{questionId}/responses
func (h *QuestionHandler) ListResponses(w http.ResponseWriter, r *http.Request) {
	responses, err := h.questions.Responses(r.Context(), mux.Vars(r)["questionId"])
	if err != nil {
		writeServiceError(w, r, h.logger, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"responses": responses})
}

// SubmitResponse handles POST /v1/responses
func (h *QuestionHandler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.SubmitResponseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.questions.SubmitResponse(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, r, h.logger, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}
