package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

func signToken(t *testing.T, method jwt.SigningMethod, secret string, claims *models.JWTClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims() *models.JWTClaims {
	now := time.Now()
	return &models.JWTClaims{
		UserID:   "parent-1",
		Role:     models.RoleParent,
		SchoolID: "school-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "portal-idp",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestValidateTokenSuccess(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret", Issuer: "portal-idp"})

	claims, err := svc.ValidateToken(signToken(t, jwt.SigningMethodHS256, "secret", validClaims()))

	require.NoError(t, err)
	assert.Equal(t, "parent-1", claims.UserID)
	assert.Equal(t, models.RoleParent, claims.Role)
	assert.Equal(t, "school-1", claims.SchoolID)
}

func TestValidateTokenFallsBackToSubject(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret"})
	claims := validClaims()
	claims.UserID = ""
	claims.Subject = "teacher-7"
	claims.Role = models.RoleTeacher

	got, err := svc.ValidateToken(signToken(t, jwt.SigningMethodHS256, "secret", claims))

	require.NoError(t, err)
	assert.Equal(t, "teacher-7", got.UserID)
}

func TestValidateTokenRejects(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret", Issuer: "portal-idp"})

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongIssuer := validClaims()
	wrongIssuer.Issuer = "someone-else"

	badRole := validClaims()
	badRole.Role = models.Role("janitor")

	cases := map[string]string{
		"wrong secret": signToken(t, jwt.SigningMethodHS256, "other", validClaims()),
		"wrong method": signToken(t, jwt.SigningMethodHS512, "secret", validClaims()),
		"expired":      signToken(t, jwt.SigningMethodHS256, "secret", expired),
		"wrong issuer": signToken(t, jwt.SigningMethodHS256, "secret", wrongIssuer),
		"unknown role": signToken(t, jwt.SigningMethodHS256, "secret", badRole),
		"garbage":      "not-a-token",
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			require.Error(t, err)
			assert.ErrorIs(t, err, appErrors.ErrAuthenticationRequired)
		})
	}
}
