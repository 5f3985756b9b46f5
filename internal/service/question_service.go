package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"feedbackquest/internal/model"
	"feedbackquest/internal/repository"
)

var ErrQuestionNotFound = errors.New("question not found")

// QuestionService serves the question catalogue and records answers
type QuestionService struct {
	questions repository.QuestionRepo
	responses repository.ResponseRepository
}

// NewQuestionService creates a new question service
func NewQuestionService(questions repository.QuestionRepo, responses repository.ResponseRepository) *QuestionService {
	return &QuestionService{
		questions: questions,
		responses: responses,
	}
}

// List returns every question, oldest first
func (s *QuestionService) List(ctx context.Context) ([]*model.Question, error) {
	return s.questions.GetAll(ctx)
}

// Get returns one question
func (s *QuestionService) Get(ctx context.Context, id string) (*model.Question, error) {
	q, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrQuestionNotFound
	}
	return q, nil
}

// Responses returns every answer recorded for a question, oldest first
func (s *QuestionService) Responses(ctx context.Context, questionID string) ([]*model.Response, error) {
	if _, err := s.Get(ctx, questionID); err != nil {
		return nil, err
	}

	responses, err := s.responses.GetByQuestionID(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}
	if responses == nil {
		responses = []*model.Response{}
	}
	return responses, nil
}

// SubmitResponse validates an answer against its question and stores it
func (s *QuestionService) SubmitResponse(ctx context.Context, userID string, req *model.SubmitResponseRequest) (*model.Response, error) {
	if strings.TrimSpace(req.QuestionID) == "" {
		return nil, fmt.Errorf("%w: questionId is required", ErrInvalidRequest)
	}
	if req.PointsEarned < 0 {
		return nil, fmt.Errorf("%w: pointsEarned must not be negative", ErrInvalidRequest)
	}

	q, err := s.Get(ctx, req.QuestionID)
	if err != nil {
		return nil, err
	}

	resp := &model.Response{
		QuestionID:     q.ID,
		UserID:         userID,
		SelectedOption: strings.TrimSpace(req.SelectedOption),
		TextAnswer:     strings.TrimSpace(req.TextAnswer),
		PointsEarned:   req.PointsEarned,
	}
	if err := validateAnswer(q, resp); err != nil {
		return nil, err
	}

	if err := s.responses.Create(ctx, resp); err != nil {
		return nil, fmt.Errorf("failed to save response: %w", err)
	}
	return resp, nil
}

func validateAnswer(q *model.Question, r *model.Response) error {
	if !r.HasAnswer() {
		return fmt.Errorf("%w: selectedOption or textAnswer is required", ErrInvalidRequest)
	}

	switch q.Type {
	case model.QuestionTypeOpenEnded, model.QuestionTypeIdeation:
		if r.TextAnswer == "" {
			return fmt.Errorf("%w: textAnswer is required for %s questions", ErrInvalidRequest, q.Type)
		}
	case model.QuestionTypeMultipleChoice, model.QuestionTypeYesNo:
		if r.SelectedOption == "" {
			return fmt.Errorf("%w: selectedOption is required for %s questions", ErrInvalidRequest, q.Type)
		}
		if len(q.Options) > 0 && !containsFold(q.Options, r.SelectedOption) {
			return fmt.Errorf("%w: %q is not an option of this question", ErrInvalidRequest, r.SelectedOption)
		}
	}
	return nil
}

func containsFold(options []string, v string) bool {
	for _, o := range options {
		if strings.EqualFold(o, v) {
			return true
		}
	}
	return false
}
