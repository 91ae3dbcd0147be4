package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduhub-vn/reporting-api/internal/models"
	"github.com/eduhub-vn/reporting-api/pkg/config"
	appErrors "github.com/eduhub-vn/reporting-api/pkg/errors"
)

func signToken(t *testing.T, secret string, claims *models.JWTClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func baseClaims(role models.UserRole) *models.JWTClaims {
	return &models.JWTClaims{
		UserID: "u-1",
		Role:   role,
		Email:  "user@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "eduhub",
			Audience:  jwt.ClaimStrings{"portal"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestValidateToken(t *testing.T) {
	svc := NewAuthService(config.JWTConfig{Secret: "secret", Issuer: "eduhub", Audience: []string{"portal"}})

	claims, err := svc.ValidateToken(signToken(t, "secret", baseClaims(models.RoleStudent)))
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc := NewAuthService(config.JWTConfig{Secret: "secret", Issuer: "eduhub"})

	_, err := svc.ValidateToken(signToken(t, "other", baseClaims(models.RoleAdmin)))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestValidateTokenExpired(t *testing.T) {
	svc := NewAuthService(config.JWTConfig{Secret: "secret", Issuer: "eduhub"})

	claims := baseClaims(models.RoleAdmin)
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	_, err := svc.ValidateToken(signToken(t, "secret", claims))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestValidateTokenWrongIssuer(t *testing.T) {
	svc := NewAuthService(config.JWTConfig{Secret: "secret", Issuer: "eduhub"})

	claims := baseClaims(models.RoleAdmin)
	claims.Issuer = "someone-else"

	_, err := svc.ValidateToken(signToken(t, "secret", claims))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestValidateTokenWrongAudience(t *testing.T) {
	svc := NewAuthService(config.JWTConfig{Secret: "secret", Issuer: "eduhub", Audience: []string{"portal"}})

	claims := baseClaims(models.RoleAdmin)
	claims.Audience = jwt.ClaimStrings{"mobile"}

	_, err := svc.ValidateToken(signToken(t, "secret", claims))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestValidateTokenMissingUserID(t *testing.T) {
	svc := NewAuthService(config.JWTConfig{Secret: "secret", Issuer: "eduhub"})

	claims := baseClaims(models.RoleAdmin)
	claims.UserID = ""

	_, err := svc.ValidateToken(signToken(t, "secret", claims))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}
