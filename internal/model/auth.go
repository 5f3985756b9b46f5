package model

import "github.com/golang-jwt/jwt/v5"

// ParticipantClaims are JWT claims for an anonymous participant
type ParticipantClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// SessionResponse is returned after an anonymous session is issued
type SessionResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}
