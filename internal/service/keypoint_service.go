package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"feedbackquest/internal/cache"
	"feedbackquest/internal/model"
	"feedbackquest/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxKeypoints = 20

var (
	ErrExtractionInProgress = errors.New("keypoint extraction already running for this question")
	ErrKeypointNotFound     = errors.New("keypoint not found")
	ErrAlreadyLiked         = errors.New("keypoint already liked")
	ErrLikeNotFound         = errors.New("like not found")
)

// KeypointService regenerates word-cloud themes for a question and manages likes on them
type KeypointService struct {
	questions repository.QuestionRepo
	responses repository.ResponseRepository
	keypoints repository.KeypointRepository
	likes     repository.LikeRepository
	lock      cache.KeypointLock
	gateway   GatewayClient
	logger    *zap.Logger
}

// NewKeypointService creates a new keypoint service
func NewKeypointService(
	questions repository.QuestionRepo,
	responses repository.ResponseRepository,
	keypoints repository.KeypointRepository,
	likes repository.LikeRepository,
	lock cache.KeypointLock,
	gateway GatewayClient,
	logger *zap.Logger,
) *KeypointService {
	return &KeypointService{
		questions: questions,
		responses: responses,
		keypoints: keypoints,
		likes:     likes,
		lock:      lock,
		gateway:   gateway,
		logger:    logger,
	}
}

// Extract replaces the keypoints of a question with themes freshly extracted from its
// free-text answers. Like counts move to new themes whose label matches an old one
// case-insensitively.
func (s *KeypointService) Extract(ctx context.Context, req *model.ExtractKeypointsRequest) (*model.KeypointsResponse, error) {
	questionID := strings.TrimSpace(req.QuestionID)
	if questionID == "" {
		return nil, fmt.Errorf("%w: questionId is required", ErrInvalidRequest)
	}

	answers, err := s.responses.GetTextAnswers(ctx, questionID)
	if err != nil {
		s.logger.Error("failed to load responses", zap.String("questionId", questionID), zap.Error(err))
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}
	if len(answers) == 0 {
		return &model.KeypointsResponse{Keypoints: []model.KeypointView{}}, nil
	}

	token, err := s.lock.Acquire(ctx, questionID)
	if err != nil {
		s.logger.Error("failed to acquire extraction lock", zap.String("questionId", questionID), zap.Error(err))
		return nil, fmt.Errorf("failed to acquire extraction lock: %w", err)
	}
	if token == "" {
		return nil, ErrExtractionInProgress
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), questionID, token); err != nil {
			s.logger.Warn("failed to release extraction lock", zap.String("questionId", questionID), zap.Error(err))
		}
	}()

	questionText := s.questionText(ctx, questionID, req.Question)
	response, err := s.gateway.Complete(ctx, []ChatMessage{
		{Role: "system", Content: analystSystemPrompt},
		{Role: "user", Content: buildKeypointPrompt(questionText, answers)},
	})
	if err != nil {
		s.logger.Error("keypoint extraction call failed", zap.String("questionId", questionID), zap.Error(err))
		return nil, err
	}

	themes := topThemes(s.parseThemes(questionID, response), maxKeypoints)

	// Snapshot like counts by label before the old rows go away
	old, err := s.keypoints.GetByQuestionID(ctx, questionID)
	if err != nil {
		s.logger.Error("failed to load existing keypoints", zap.String("questionId", questionID), zap.Error(err))
		return nil, fmt.Errorf("failed to load existing keypoints: %w", err)
	}
	likesByLabel, err := s.likesByLabel(ctx, old)
	if err != nil {
		s.logger.Error("failed to count likes", zap.String("questionId", questionID), zap.Error(err))
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}

	if err := s.deleteKeypoints(ctx, questionID, old); err != nil {
		s.logger.Error("failed to delete keypoints", zap.String("questionId", questionID), zap.Error(err))
		return nil, err
	}

	now := time.Now()
	fresh := make([]*model.Keypoint, len(themes))
	for i, t := range themes {
		fresh[i] = &model.Keypoint{
			ID:              uuid.New().String(),
			QuestionID:      questionID,
			Text:            t.Label,
			OccurrenceCount: t.Count,
			CreatedAt:       now,
		}
	}
	if err := s.keypoints.InsertMany(ctx, fresh); err != nil {
		s.logger.Error("failed to insert keypoints", zap.String("questionId", questionID), zap.Error(err))
		return nil, fmt.Errorf("failed to insert keypoints: %w", err)
	}

	views := make([]model.KeypointView, len(fresh))
	synthetic := make([]*model.KeypointLike, 0)
	for i, kp := range fresh {
		carried := likesByLabel[strings.ToLower(kp.Text)]
		for j := 0; j < carried; j++ {
			synthetic = append(synthetic, &model.KeypointLike{
				KeypointID: kp.ID,
				UserID:     "anon_" + uuid.New().String(),
				CreatedAt:  now,
			})
		}
		views[i] = model.NewKeypointView(kp, carried)
	}
	if err := s.likes.InsertMany(ctx, synthetic); err != nil {
		s.logger.Error("failed to carry likes over", zap.String("questionId", questionID), zap.Error(err))
		return nil, fmt.Errorf("failed to carry likes over: %w", err)
	}

	s.logger.Info("keypoints regenerated",
		zap.String("questionId", questionID),
		zap.Int("responses", len(answers)),
		zap.Int("keypoints", len(views)),
		zap.Int("carriedLikes", len(synthetic)),
	)

	return &model.KeypointsResponse{Keypoints: views}, nil
}

// List returns the current keypoints of a question with their like counts
func (s *KeypointService) List(ctx context.Context, questionID string) (*model.KeypointsResponse, error) {
	kps, err := s.keypoints.GetByQuestionID(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load keypoints: %w", err)
	}
	counts, err := s.likes.CountByKeypointIDs(ctx, keypointIDs(kps))
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}

	views := make([]model.KeypointView, len(kps))
	for i, kp := range kps {
		views[i] = model.NewKeypointView(kp, counts[kp.ID])
	}
	return &model.KeypointsResponse{Keypoints: views}, nil
}

// Like records a participant's like and returns the updated keypoint
func (s *KeypointService) Like(ctx context.Context, keypointID, userID string) (*model.KeypointView, error) {
	kp, err := s.getKeypoint(ctx, keypointID)
	if err != nil {
		return nil, err
	}

	err = s.likes.Create(ctx, &model.KeypointLike{KeypointID: kp.ID, UserID: userID})
	if errors.Is(err, repository.ErrDuplicateLike) {
		return nil, ErrAlreadyLiked
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save like: %w", err)
	}
	return s.view(ctx, kp)
}

// Unlike removes a participant's like and returns the updated keypoint
func (s *KeypointService) Unlike(ctx context.Context, keypointID, userID string) (*model.KeypointView, error) {
	kp, err := s.getKeypoint(ctx, keypointID)
	if err != nil {
		return nil, err
	}

	found, err := s.likes.Delete(ctx, kp.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete like: %w", err)
	}
	if !found {
		return nil, ErrLikeNotFound
	}
	return s.view(ctx, kp)
}

func (s *KeypointService) getKeypoint(ctx context.Context, keypointID string) (*model.Keypoint, error) {
	kp, err := s.keypoints.GetByID(ctx, keypointID)
	if err != nil {
		return nil, fmt.Errorf("failed to load keypoint: %w", err)
	}
	if kp == nil {
		return nil, ErrKeypointNotFound
	}
	return kp, nil
}

func (s *KeypointService) view(ctx context.Context, kp *model.Keypoint) (*model.KeypointView, error) {
	counts, err := s.likes.CountByKeypointIDs(ctx, []string{kp.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}
	v := model.NewKeypointView(kp, counts[kp.ID])
	return &v, nil
}

// questionText prefers the caller's text and falls back to the stored question
func (s *KeypointService) questionText(ctx context.Context, questionID, given string) string {
	if strings.TrimSpace(given) != "" {
		return given
	}
	q, err := s.questions.GetByID(ctx, questionID)
	if err != nil || q == nil {
		return ""
	}
	return q.Text
}

func (s *KeypointService) parseThemes(questionID, response string) []themeCount {
	cleaned := cleanModelJSON(response)
	themes, err := parseThemeCounts(cleaned)
	if err == nil {
		return themes
	}
	fallback := fallbackThemeCounts(cleaned)
	s.logger.Warn("unparseable keypoints from model, using quoted-label fallback",
		zap.String("questionId", questionID),
		zap.Int("labels", len(fallback)),
		zap.Error(err),
	)
	return fallback
}

func (s *KeypointService) likesByLabel(ctx context.Context, old []*model.Keypoint) (map[string]int, error) {
	byLabel := make(map[string]int)
	if len(old) == 0 {
		return byLabel, nil
	}
	counts, err := s.likes.CountByKeypointIDs(ctx, keypointIDs(old))
	if err != nil {
		return nil, err
	}
	for _, kp := range old {
		if n := counts[kp.ID]; n > 0 {
			byLabel[strings.ToLower(strings.TrimSpace(kp.Text))] += n
		}
	}
	return byLabel, nil
}

func (s *KeypointService) deleteKeypoints(ctx context.Context, questionID string, old []*model.Keypoint) error {
	if _, err := s.likes.DeleteByKeypointIDs(ctx, keypointIDs(old)); err != nil {
		return fmt.Errorf("failed to delete likes: %w", err)
	}
	if _, err := s.keypoints.DeleteByQuestionID(ctx, questionID); err != nil {
		return fmt.Errorf("failed to delete keypoints: %w", err)
	}
	return nil
}

// topThemes keeps the n highest counts; ties stay in model order
func topThemes(themes []themeCount, n int) []themeCount {
	sorted := make([]themeCount, len(themes))
	copy(sorted, themes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Count > sorted[j].Count
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func keypointIDs(kps []*model.Keypoint) []string {
	ids := make([]string, len(kps))
	for i, kp := range kps {
		ids[i] = kp.ID
	}
	return ids
}

func buildKeypointPrompt(question string, answers []string) string {
	var sb strings.Builder
	for i, a := range answers {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, a))
	}

	return fmt.Sprintf(`Extract the key themes from these employee answers.

Question: %s

Answers:
%s
Return ONLY a JSON object mapping each theme to the number of answers that mention it, for example:
{"flexible hours": 4, "better tooling": 2}

Rules:
- Theme labels are 1-3 words
- Every answer must be covered by at least one theme
- Counts are positive integers`,
		question, sb.String())
}

// RefreshAll re-extracts keypoints for every free-text question. Questions whose
// extraction is already running are skipped; other failures are logged and skipped.
func (s *KeypointService) RefreshAll(ctx context.Context) (int, error) {
	questions, err := s.questions.GetByTypes(ctx, model.QuestionTypeOpenEnded, model.QuestionTypeIdeation)
	if err != nil {
		return 0, fmt.Errorf("failed to list questions: %w", err)
	}

	refreshed := 0
	for _, q := range questions {
		if ctx.Err() != nil {
			return refreshed, ctx.Err()
		}
		_, err := s.Extract(ctx, &model.ExtractKeypointsRequest{QuestionID: q.ID, Question: q.Text})
		switch {
		case errors.Is(err, ErrExtractionInProgress):
			s.logger.Debug("extraction in progress, skipping", zap.String("questionId", q.ID))
		case err != nil:
			s.logger.Warn("scheduled keypoint refresh failed", zap.String("questionId", q.ID), zap.Error(err))
		default:
			refreshed++
		}
	}
	return refreshed, nil
}
