package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims represents the bearer token payload issued by the identity provider.
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Role     Role   `json:"role"`
	SchoolID string `json:"school_id,omitempty"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}
