package services

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/yukikurage/project-collab-api/internal/dto"
	apierrors "github.com/yukikurage/project-collab-api/internal/errors"
	"github.com/yukikurage/project-collab-api/internal/models"
	"github.com/yukikurage/project-collab-api/internal/realtime"
	"github.com/yukikurage/project-collab-api/internal/repository"
	"github.com/yukikurage/project-collab-api/internal/utils"
	"gorm.io/gorm"
)

// NotificationService creates per-recipient notifications and serves the
// recipient's inbox.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	publisher        Publisher
}

func NewNotificationService(notificationRepo repository.NotificationRepository, publisher Publisher) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		publisher:        publisher,
	}
}

// Notice is a notification to be delivered. A uuid.Nil RecipientID means nobody.
type Notice struct {
	RecipientID uuid.UUID
	Type        models.NotificationType
	Title       string
	Message     string
	ProjectID   *uuid.UUID
	TaskID      *uuid.UUID
}

// Notify stores notice unread and publishes it to the recipient's topic.
// It does not compare the recipient with the actor; callers omit the call
// for self-notifications.
func (s *NotificationService) Notify(ctx context.Context, notice Notice) SideEffect[models.Notification] {
	if notice.RecipientID == uuid.Nil {
		return skipped[models.Notification]()
	}

	notification := &models.Notification{
		RecipientID: notice.RecipientID,
		Type:        notice.Type,
		Title:       notice.Title,
		Message:     notice.Message,
		ProjectID:   notice.ProjectID,
		TaskID:      notice.TaskID,
		IsRead:      false,
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		log.Printf("notification: failed to create %s for %s: %v", notice.Type, notice.RecipientID, err)
		return failed[models.Notification](apierrors.Transient("failed to create notification", err))
	}

	populated, err := s.notificationRepo.FindByID(ctx, notification.ID)
	if err != nil {
		log.Printf("notification: failed to reload %s: %v", notification.ID, err)
		return failed[models.Notification](apierrors.Transient("failed to reload notification", err))
	}

	s.publisher.Publish(realtime.UserTopic(populated.RecipientID), realtime.EventNewNotification, dto.ToNotificationDTO(*populated))
	return succeeded(populated)
}

// List returns the actor's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, actor *models.User, params utils.PaginationParams) ([]models.Notification, int64, error) {
	notifications, total, err := s.notificationRepo.ListForRecipient(ctx, actor.ID, params)
	if err != nil {
		return nil, 0, apierrors.Transient("failed to list notifications", err)
	}
	return notifications, total, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, actor *models.User) (int64, error) {
	count, err := s.notificationRepo.CountUnread(ctx, actor.ID)
	if err != nil {
		return 0, apierrors.Transient("failed to count notifications", err)
	}
	return count, nil
}

// MarkRead is idempotent. Notifications of other users are reported as not found.
func (s *NotificationService) MarkRead(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Notification, error) {
	notification, err := s.notificationRepo.MarkRead(ctx, id, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, apierrors.Transient("failed to mark notification read", err)
	}
	return notification, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, actor *models.User) (int64, error) {
	updated, err := s.notificationRepo.MarkAllRead(ctx, actor.ID)
	if err != nil {
		return 0, apierrors.Transient("failed to mark notifications read", err)
	}
	return updated, nil
}
