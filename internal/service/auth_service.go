package service

import (
	"errors"
	"time"

	"feedbackquest/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const participantTokenTTL = 30 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid or expired token")

// AuthService issues and validates anonymous participant tokens
type AuthService struct {
	jwtSecret []byte
	now       func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(secret string) *AuthService {
	return &AuthService{
		jwtSecret: []byte(secret),
		now:       time.Now,
	}
}

// IssueAnonymous creates a fresh anonymous participant and its token
func (s *AuthService) IssueAnonymous() (*model.SessionResponse, error) {
	userID := NewAnonymousID()

	now := s.now()
	claims := &model.ParticipantClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(participantTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.SessionResponse{
		Token:  tokenString,
		UserID: userID,
	}, nil
}

// ValidateToken validates a participant JWT and returns claims
func (s *AuthService) ValidateToken(tokenString string) (*model.ParticipantClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.ParticipantClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.ParticipantClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// NewAnonymousID returns an "anon_" prefixed participant id
func NewAnonymousID() string {
	return "anon_" + uuid.New().String()[:8]
}
