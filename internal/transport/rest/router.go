package rest

import (
	"net/http"
	"time"

	"feedbackquest/internal/transport/rest/handler"
	"feedbackquest/internal/transport/rest/middleware"
	"feedbackquest/internal/transport/ws"

	"github.com/go-chi/httprate"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const maxRequestBytes = 1 << 20

// Container holds all dependencies for the router
type Container struct {
	Sessions  handler.SessionIssuer
	Tokens    middleware.TokenValidator
	Evaluator handler.Evaluator
	Keypoints handler.KeypointManager
	Progress  handler.ProgressManager
	Questions handler.QuestionCatalog
	WSHub     *ws.Hub
	Logger    *zap.Logger

	AllowedOrigins    []string
	RequestsPerMinute int
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.Sessions, c.Logger)
	evalHandler := handler.NewEvaluationHandler(c.Evaluator, c.Logger)
	keypointHandler := handler.NewKeypointHandler(c.Keypoints, c.Logger)
	progressHandler := handler.NewProgressHandler(c.Progress, c.Logger)
	questionHandler := handler.NewQuestionHandler(c.Questions, c.Logger)
	wsHandler := ws.NewHandler(c.WSHub, c.Tokens, c.Progress, c.Logger)

	authMW := middleware.NewAuthMiddleware(c.Tokens)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/anonymous", authHandler.Anonymous).Methods("POST")
	v1.HandleFunc("/evaluate-response", evalHandler.EvaluateResponse).Methods("POST")
	v1.HandleFunc("/analyze-trends", evalHandler.AnalyzeTrends).Methods("POST")
	v1.HandleFunc("/extract-keypoints", keypointHandler.Extract).Methods("POST")
	v1.HandleFunc("/questions", questionHandler.List).Methods("GET")
	v1.HandleFunc("/questions/{questionId}", questionHandler.Get).Methods("GET")
	v1.HandleFunc("/questions/{questionId}/keypoints", keypointHandler.List).Methods("GET")
	v1.HandleFunc("/questions/{questionId}/responses", questionHandler.ListResponses).Methods("GET")
	v1.Handle("/leaderboard", authMW.OptionalParticipant(http.HandlerFunc(progressHandler.Leaderboard))).Methods("GET")

	// WebSocket route (token in query param)
	v1.HandleFunc("/ws/progress", wsHandler.ProgressWS).Methods("GET")

	// Participant routes (require bearer token)
	participant := v1.NewRoute().Subrouter()
	participant.Use(authMW.RequireParticipant)

	participant.HandleFunc("/responses", questionHandler.SubmitResponse).Methods("POST")
	participant.HandleFunc("/keypoints/{keypointId}/like", keypointHandler.Like).Methods("POST")
	participant.HandleFunc("/keypoints/{keypointId}/like", keypointHandler.Unlike).Methods("DELETE")
	participant.HandleFunc("/progress", progressHandler.Get).Methods("GET")
	participant.HandleFunc("/progress/points", progressHandler.AddPoints).Methods("POST")
	participant.HandleFunc("/rewards", progressHandler.Rewards).Methods("GET")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
	})

	// mux middleware only runs on matched routes, so the chain wraps the router.
	// CORS answers preflights for every path before rate limiting.
	rpm := c.RequestsPerMinute
	if rpm <= 0 {
		rpm = 100
	}

	var h http.Handler = r
	h = middleware.RequestSizeLimitMiddleware(maxRequestBytes)(h)
	h = httprate.LimitByIP(rpm, time.Minute)(h)
	h = middleware.CORSMiddleware(c.AllowedOrigins)(h)
	h = middleware.RecoveryMiddleware(c.Logger)(h)
	h = middleware.LoggerMiddleware(c.Logger)(h)
	h = middleware.RequestIDMiddleware(h)
	return h
}
