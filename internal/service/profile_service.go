package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/examdesk/complaints-api/internal/models"
	appErrors "github.com/examdesk/complaints-api/pkg/errors"
)

type profileRepository interface {
	GetAdminProfile(ctx context.Context, subjectID string) (*models.AdminProfile, error)
	GetStudentEmail(ctx context.Context, subjectID string) (string, string, error)
}

// ProfileService looks up administrator profiles with a Redis cache in front
// of the store. Cache failures degrade to direct reads; they never fail the
// lookup.
type ProfileService struct {
	repo    profileRepository
	cache   *redis.Client
	ttl     time.Duration
	logger  *zap.Logger
	metrics *MetricsService
}

// NewProfileService constructs the service. A nil cache disables caching.
func NewProfileService(repo profileRepository, cache *redis.Client, ttl time.Duration, logger *zap.Logger, metrics *MetricsService) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ProfileService{repo: repo, cache: cache, ttl: ttl, logger: logger, metrics: metrics}
}

func profileCacheKey(subjectID string) string {
	return "profile:admin:" + subjectID
}

// GetAdminProfile returns the profile for an administrator, cache-aside.
// An unknown subject maps to NotFound.
func (s *ProfileService) GetAdminProfile(ctx context.Context, subjectID string) (*models.AdminProfile, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, profileCacheKey(subjectID)).Bytes()
		if err == nil {
			var profile models.AdminProfile
			if jsonErr := json.Unmarshal(raw, &profile); jsonErr == nil {
				s.metrics.RecordCacheOperation(true)
				return &profile, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("profile cache read failed", zap.Error(err))
		}
		s.metrics.RecordCacheOperation(false)
	}

	profile, err := s.repo.GetAdminProfile(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "admin profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load admin profile")
	}

	if s.cache != nil {
		if raw, jsonErr := json.Marshal(profile); jsonErr == nil {
			if err := s.cache.Set(ctx, profileCacheKey(subjectID), raw, s.ttl).Err(); err != nil {
				s.logger.Warn("profile cache write failed", zap.Error(err))
			}
		}
	}

	return profile, nil
}

// GetStudentContact returns the display name and email address used when
// notifying a student.
func (s *ProfileService) GetStudentContact(ctx context.Context, subjectID string) (string, string, error) {
	name, email, err := s.repo.GetStudentEmail(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student contact")
	}
	return name, email, nil
}
