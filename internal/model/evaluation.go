package model

// EvaluateResponseRequest is the request body for scoring an answer
type EvaluateResponseRequest struct {
	Question     string       `json:"question"`
	Answer       string       `json:"answer"`
	QuestionType QuestionType `json:"questionType"`
}

// ScoreResult is the point award for a single answer
type ScoreResult struct {
	XP     int    `json:"xp"`
	Reason string `json:"reason"`
}

// AnalyzeTrendsRequest is the request body for trend analysis
type AnalyzeTrendsRequest struct {
	Question  string   `json:"question"`
	Responses []string `json:"responses"`
}

// TrendTheme is a named cluster of answers
type TrendTheme struct {
	Name       string   `json:"name"`
	Percentage float64  `json:"percentage"`
	Examples   []string `json:"examples"`
}

// FeasibilityAnalysis judges how realistic the dominant suggestions are
type FeasibilityAnalysis struct {
	RealismScore       int      `json:"realismScore"` // 1-10
	Summary            string   `json:"summary,omitempty"`
	Pros               []string `json:"pros"`
	Cons               []string `json:"cons"`
	EasyActions        []string `json:"easyActions"`
	ChallengingActions []string `json:"challengingActions"`
}

// TrendAnalysis is the aggregate view over all answers to a question
type TrendAnalysis struct {
	Themes              []TrendTheme         `json:"themes"`
	DominantTrend       string               `json:"dominantTrend"`
	FeasibilityAnalysis *FeasibilityAnalysis `json:"feasibilityAnalysis"`
}
