package handler

import (
	"errors"
	"net/http"

	"feedbackquest/internal/service"
	"feedbackquest/internal/transport/rest/middleware"

	"go.uber.org/zap"
)

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, service.ErrInvalidDelta):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, service.ErrPaymentRequired):
		return http.StatusPaymentRequired
	case errors.Is(err, service.ErrGatewayTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, service.ErrQuestionNotFound),
		errors.Is(err, service.ErrKeypointNotFound),
		errors.Is(err, service.ErrLikeNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrExtractionInProgress), errors.Is(err, service.ErrAlreadyLiked):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError logs err and writes it with the given status
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, status int, err error) {
	fields := []zap.Field{
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", fields...)
	} else {
		logger.Warn("request rejected", fields...)
	}
	writeError(w, status, err.Error())
}

// requireUser returns the authenticated participant or writes a 401
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	return userID, true
}
