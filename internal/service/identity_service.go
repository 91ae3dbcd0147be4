package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eduhub-vn/reporting-api/internal/models"
	appErrors "github.com/eduhub-vn/reporting-api/pkg/errors"
)

// StudentIDResolver maps an account ID to a student record ID. Implemented by
// the upstream client and by the database fallback repository.
type StudentIDResolver interface {
	ResolveStudentID(ctx context.Context, userID string) (string, error)
}

// IdentityService resolves the student identity behind an authenticated
// account. Resolution order: the token's embedded student ID, the identity
// cache, then the resolver. A resolution failure is fatal to the caller's
// load; there is no anonymous student dashboard.
type IdentityService struct {
	resolver StudentIDResolver
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewIdentityService constructs an IdentityService. The cache is optional.
func NewIdentityService(resolver StudentIDResolver, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *IdentityService {
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{resolver: resolver, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

func identityCacheKey(userID string) string {
	return "identity:student:" + userID
}

// Resolve returns the student ID for the given claims.
func (s *IdentityService) Resolve(ctx context.Context, claims *models.JWTClaims) (string, error) {
	if claims == nil || claims.UserID == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "missing authentication claims")
	}
	if claims.StudentID != "" {
		return claims.StudentID, nil
	}

	key := identityCacheKey(claims.UserID)
	var cached string
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit && cached != "" {
		return cached, nil
	}

	if s.resolver == nil {
		return "", appErrors.Clone(appErrors.ErrIdentityUnresolved, "no student identity resolver configured")
	}

	studentID, err := s.resolver.ResolveStudentID(ctx, claims.UserID)
	if err != nil {
		s.logger.Warn("student identity resolution failed",
			zap.String("user_id", claims.UserID),
			zap.Error(err),
		)
		return "", err
	}
	if studentID == "" {
		return "", appErrors.Clone(appErrors.ErrIdentityUnresolved, "account has no linked student record")
	}

	if err := s.cache.Set(ctx, key, studentID, s.cacheTTL); err != nil {
		s.logger.Debug("identity cache write failed", zap.String("user_id", claims.UserID), zap.Error(err))
	}
	return studentID, nil
}

// Invalidate drops the cached identity mapping for an account.
func (s *IdentityService) Invalidate(ctx context.Context, userID string) error {
	return s.cache.Invalidate(ctx, identityCacheKey(userID))
}
