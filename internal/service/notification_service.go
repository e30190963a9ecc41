package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/examdesk/complaints-api/internal/models"
	appErrors "github.com/examdesk/complaints-api/pkg/errors"
)

type notificationRepository interface {
	ListForUser(ctx context.Context, userID string, page, pageSize int) ([]models.Notification, int, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id, userID string) error
}

// NotificationService exposes the recipient-owned notification inbox. Every
// operation is keyed by the authenticated subject; there is no cross-user
// access path.
type NotificationService struct {
	repo   notificationRepository
	logger *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(repo notificationRepository, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, logger: logger}
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, identity *models.Identity, page, pageSize int) ([]models.Notification, *models.Pagination, error) {
	if identity == nil {
		return nil, nil, appErrors.ErrNotAuthenticated
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	notifications, total, err := s.repo.ListForUser(ctx, identity.SubjectID, page, pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	pagination := &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
	return notifications, pagination, nil
}

// MarkRead marks one of the caller's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, identity *models.Identity, id string) error {
	if identity == nil {
		return appErrors.ErrNotAuthenticated
	}
	if err := s.repo.MarkRead(ctx, id, identity.SubjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	return nil
}

// MarkAllRead marks all of the caller's notifications as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, identity *models.Identity) error {
	if identity == nil {
		return appErrors.ErrNotAuthenticated
	}
	if err := s.repo.MarkAllRead(ctx, identity.SubjectID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notifications read")
	}
	return nil
}

// Delete removes one of the caller's notifications.
func (s *NotificationService) Delete(ctx context.Context, identity *models.Identity, id string) error {
	if identity == nil {
		return appErrors.ErrNotAuthenticated
	}
	if err := s.repo.Delete(ctx, id, identity.SubjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete notification")
	}
	return nil
}
