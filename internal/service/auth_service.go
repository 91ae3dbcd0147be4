package service

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eduhub-vn/reporting-api/internal/models"
	"github.com/eduhub-vn/reporting-api/pkg/config"
	appErrors "github.com/eduhub-vn/reporting-api/pkg/errors"
)

// AuthService validates access tokens issued by the platform auth service.
// This API never issues tokens itself; it only verifies them.
type AuthService struct {
	secret   []byte
	issuer   string
	audience []string
}

// NewAuthService constructs an AuthService from the JWT configuration.
func NewAuthService(cfg config.JWTConfig) *AuthService {
	return &AuthService{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
	}
}

// ValidateToken parses and verifies an access token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}

	options := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		options = append(options, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, options...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired token")
	}
	if !token.Valid || claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if len(s.audience) > 0 && !s.audienceAllowed(claims.Audience) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token audience not accepted")
	}

	return claims, nil
}

func (s *AuthService) audienceAllowed(audience jwt.ClaimStrings) bool {
	for _, aud := range audience {
		if slices.Contains(s.audience, aud) {
			return true
		}
	}
	return false
}
