package repositories

import (
	"github.com/nextgendev/talker/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	// CreateWithUnreadFlag stores a notification and raises the recipient's
	// unread flag in the same transaction.
	CreateWithUnreadFlag(notification *models.Notification) error
	GetByRecipientID(recipientID uint, page, limit int) ([]models.Notification, int64, error)
	ClearUnreadFlag(recipientID uint) error
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) CreateWithUnreadFlag(notification *models.Notification) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(notification).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", notification.RecipientID).
			Update("has_notification", true).Error
	})
}

func (r *postgresNotificationRepository) GetByRecipientID(recipientID uint, page, limit int) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	if err := r.db.Model(&models.Notification{}).Where("recipient_id = ?", recipientID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := r.db.Where("recipient_id = ?", recipientID).
		Preload("Actor").
		Preload("RefPost").
		Preload("RefComment").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error

	return notifications, total, err
}

func (r *postgresNotificationRepository) ClearUnreadFlag(recipientID uint) error {
	return r.db.Model(&models.User{}).
		Where("id = ? AND has_notification = ?", recipientID, true).
		Update("has_notification", false).Error
}
