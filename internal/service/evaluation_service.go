package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"feedbackquest/internal/model"

	"go.uber.org/zap"
)

const (
	minFreeTextXP = 50
	maxFreeTextXP = 100

	defaultReason       = "Response recorded"
	noResponsesTrend    = "No responses yet"
	unanalyzableTrend   = "Unable to analyze responses"
	minRealismScore     = 1
	maxRealismScore     = 10
	scorerSystemPrompt  = "You are an encouraging workplace feedback evaluator. Respond with JSON only."
	analystSystemPrompt = "You are an organizational analyst summarizing employee feedback. Respond with JSON only."
)

// ErrInvalidRequest marks caller input errors
var ErrInvalidRequest = errors.New("invalid request")

// EvaluationService scores individual answers and summarizes answer sets
type EvaluationService struct {
	gateway GatewayClient
	logger  *zap.Logger
}

// NewEvaluationService creates a new evaluation service
func NewEvaluationService(gateway GatewayClient, logger *zap.Logger) *EvaluationService {
	return &EvaluationService{
		gateway: gateway,
		logger:  logger,
	}
}

// Score awards points for an answer. Only free-text kinds reach the gateway.
func (s *EvaluationService) Score(ctx context.Context, req *model.EvaluateResponseRequest) (*model.ScoreResult, error) {
	if req.QuestionType == "" {
		return nil, fmt.Errorf("%w: questionType is required", ErrInvalidRequest)
	}
	if !req.QuestionType.IsValid() {
		return nil, fmt.Errorf("%w: unknown questionType %q", ErrInvalidRequest, req.QuestionType)
	}

	if !req.QuestionType.IsFreeText() {
		return fixedScore(), nil
	}

	prompt := buildScoringPrompt(req)
	response, err := s.gateway.Complete(ctx, []ChatMessage{
		{Role: "system", Content: scorerSystemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return nil, err
	}

	var result model.ScoreResult
	if err := decodeModelJSON(response, &result); err != nil {
		s.logger.Warn("unparseable score from model, using default",
			zap.String("questionType", string(req.QuestionType)),
			zap.Error(err),
		)
		return fixedScore(), nil
	}

	result.XP = clampXP(result.XP)
	if strings.TrimSpace(result.Reason) == "" {
		result.Reason = defaultReason
	}
	return &result, nil
}

// AnalyzeTrends clusters answers into themes and judges feasibility. No persistence.
func (s *EvaluationService) AnalyzeTrends(ctx context.Context, req *model.AnalyzeTrendsRequest) (*model.TrendAnalysis, error) {
	responses := nonBlank(req.Responses)
	if len(responses) == 0 {
		return emptyTrends(noResponsesTrend), nil
	}

	prompt := buildTrendPrompt(req.Question, responses)
	response, err := s.gateway.Complete(ctx, []ChatMessage{
		{Role: "system", Content: analystSystemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return nil, err
	}

	var analysis model.TrendAnalysis
	if err := decodeModelJSON(response, &analysis); err != nil {
		s.logger.Warn("unparseable trend analysis from model, using default",
			zap.Int("responses", len(responses)),
			zap.Error(err),
		)
		return emptyTrends(unanalyzableTrend), nil
	}

	normalizeTrends(&analysis)
	return &analysis, nil
}

func fixedScore() *model.ScoreResult {
	return &model.ScoreResult{XP: minFreeTextXP, Reason: defaultReason}
}

func clampXP(xp int) int {
	if xp < minFreeTextXP {
		return minFreeTextXP
	}
	if xp > maxFreeTextXP {
		return maxFreeTextXP
	}
	return xp
}

func emptyTrends(dominant string) *model.TrendAnalysis {
	return &model.TrendAnalysis{
		Themes:              []model.TrendTheme{},
		DominantTrend:       dominant,
		FeasibilityAnalysis: nil,
	}
}

func normalizeTrends(a *model.TrendAnalysis) {
	if a.Themes == nil {
		a.Themes = []model.TrendTheme{}
	}
	for i := range a.Themes {
		if a.Themes[i].Examples == nil {
			a.Themes[i].Examples = []string{}
		}
	}
	if a.FeasibilityAnalysis != nil {
		f := a.FeasibilityAnalysis
		if f.RealismScore < minRealismScore {
			f.RealismScore = minRealismScore
		}
		if f.RealismScore > maxRealismScore {
			f.RealismScore = maxRealismScore
		}
		f.Pros = orEmpty(f.Pros)
		f.Cons = orEmpty(f.Cons)
		f.EasyActions = orEmpty(f.EasyActions)
		f.ChallengingActions = orEmpty(f.ChallengingActions)
	}
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func orEmpty(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

// Prompt builders
func buildScoringPrompt(req *model.EvaluateResponseRequest) string {
	criteria := `Judge the answer on:
- Thoughtfulness: does it go beyond a one-word reaction?
- Relevance: does it address the question asked?
- Constructiveness: could the team act on it?`
	if req.QuestionType == model.QuestionTypeIdeation {
		criteria = `This answer came from a timed ideation sprint. Judge the ideas on:
- Creativity: are they original?
- Practicality: could they realistically be implemented?
- Relevance: do they address the prompt?`
	}

	return fmt.Sprintf(`Score this employee feedback answer.

Question: %s
Answer: %s

%s

Return ONLY valid JSON matching this schema:
{"xp": <integer between 50 and 100>, "reason": "<one short encouraging sentence>"}

Give 50 for minimal effort and 100 for exceptional, specific answers.`,
		req.Question, req.Answer, criteria)
}

func buildTrendPrompt(question string, responses []string) string {
	var sb strings.Builder
	for i, r := range responses {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, r))
	}

	return fmt.Sprintf(`Analyze these %d employee responses to the question below.

Question: %s

Responses:
%s
Return ONLY valid JSON matching this schema:
{
  "themes": [{"name": "theme name", "percentage": 0-100, "examples": ["short quote"]}],
  "dominantTrend": "one sentence describing the strongest trend",
  "feasibilityAnalysis": {
    "realismScore": 1-10,
    "summary": "one sentence",
    "pros": ["2-3 items"],
    "cons": ["2-3 items"],
    "easyActions": ["2-3 quick wins"],
    "challengingActions": ["2-3 longer-term actions"]
  }
}

Group the responses into 2-4 themes whose percentages add up to roughly 100.`,
		len(responses), question, sb.String())
}
