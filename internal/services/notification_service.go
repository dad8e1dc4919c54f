package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/nextgendev/talker/internal/models"
	"github.com/nextgendev/talker/internal/repositories"
)

// NotificationPageSize is the fixed page length for notification listings.
const NotificationPageSize = 10

// NotifyInput defines attributes required to record a notification.
type NotifyInput struct {
	RecipientID  uint
	ActorID      *uint
	Type         string
	Message      string
	RefPostID    *uint
	RefCommentID *uint
}

// NotificationService performs the fan-out side effects of content
// mutations: it records notifications and maintains each recipient's
// aggregate unread flag.
type NotificationService struct {
	notifications repositories.NotificationRepository
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(notifications repositories.NotificationRepository) (*NotificationService, error) {
	if notifications == nil {
		return nil, errors.New("notification service: repository is required")
	}
	return &NotificationService{notifications: notifications}, nil
}

// Notify records one notification and raises the recipient's unread flag.
// The repository performs both writes in a single transaction so a crash
// cannot leave the flag out of step with the feed.
func (s *NotificationService) Notify(_ context.Context, input NotifyInput) error {
	if input.RecipientID == 0 {
		return errors.New("notification service: recipient is required")
	}
	if input.Type != models.NotificationTypePost && input.Type != models.NotificationTypeComment {
		return fmt.Errorf("notification service: unknown type %q", input.Type)
	}

	notification := models.Notification{
		RecipientID:  input.RecipientID,
		ActorID:      input.ActorID,
		Type:         input.Type,
		Message:      input.Message,
		RefPostID:    input.RefPostID,
		RefCommentID: input.RefCommentID,
	}

	if err := s.notifications.CreateWithUnreadFlag(&notification); err != nil {
		return fmt.Errorf("notification service: create notification: %w", err)
	}
	return nil
}

// ListForUser returns a newest-first page of the user's notifications and
// clears the unread flag in bulk, regardless of how many were unread.
func (s *NotificationService) ListForUser(_ context.Context, userID uint, page int) ([]models.Notification, int64, error) {
	if page < 1 {
		page = 1
	}

	notifications, total, err := s.notifications.GetByRecipientID(userID, page, NotificationPageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("notification service: list notifications: %w", err)
	}

	// Page-level side effect: reading the list marks everything seen.
	if err := s.notifications.ClearUnreadFlag(userID); err != nil {
		return nil, 0, fmt.Errorf("notification service: clear unread flag: %w", err)
	}

	return notifications, total, nil
}
