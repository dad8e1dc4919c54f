package repositories

import (
	"github.com/nextgendev/talker/internal/models"
	"gorm.io/gorm"
)

// OTPRepository defines the interface for verification code persistence
type OTPRepository interface {
	CreateOTP(otp *models.OTP) error
	GetLiveOTPByUserID(userID uint) (*models.OTP, error)
	DeleteByUserID(userID uint) error
	Invalidate(id uint) error
}

// PostgresOTPRepository implements OTPRepository for PostgreSQL
type PostgresOTPRepository struct {
	db *gorm.DB
}

// NewPostgresOTPRepository creates a new PostgresOTPRepository
func NewPostgresOTPRepository(db *gorm.DB) *PostgresOTPRepository {
	return &PostgresOTPRepository{db: db}
}

// CreateOTP stores a freshly issued code
func (r *PostgresOTPRepository) CreateOTP(otp *models.OTP) error {
	return r.db.Create(otp).Error
}

// GetLiveOTPByUserID retrieves the newest still-valid code for a user
func (r *PostgresOTPRepository) GetLiveOTPByUserID(userID uint) (*models.OTP, error) {
	var otp models.OTP
	if err := r.db.Where("user_id = ? AND valid = ?", userID, true).
		Order("created_at DESC").
		First(&otp).Error; err != nil {
		return nil, err
	}
	return &otp, nil
}

// DeleteByUserID removes all outstanding codes for a user. Issuing a new
// code replaces any prior one.
func (r *PostgresOTPRepository) DeleteByUserID(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.OTP{}).Error
}

// Invalidate marks a consumed code as spent without deleting the row
func (r *PostgresOTPRepository) Invalidate(id uint) error {
	return r.db.Model(&models.OTP{}).Where("id = ?", id).Update("valid", false).Error
}
