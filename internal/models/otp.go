package models

import "time"

// OTP is a single-use numeric verification code. Consumed codes are kept
// with Valid=false so the verification history survives.
type OTP struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index"`
	Code      string    `json:"-" gorm:"size:6"`
	ExpiresAt time.Time `json:"expires_at"`
	Valid     bool      `json:"valid" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
