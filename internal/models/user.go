package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User represents a registered account and its profile fields.
type User struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	Email           string     `json:"email" gorm:"uniqueIndex"` // Ensure email is unique across all users
	Username        string     `json:"username" gorm:"uniqueIndex"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Password        string     `json:"-"` // Store hashed password, ignore for JSON serialization
	Bio             string     `json:"bio,omitempty"`
	ProfileImage    string     `json:"profile_image,omitempty"`
	CoverImage      string     `json:"cover_image,omitempty"`
	IsMember        bool       `json:"is_member" gorm:"default:false"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	HasNotification bool       `json:"has_notification" gorm:"default:false"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Posts    []Post    `json:"posts,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Comments []Comment `json:"comments,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// RegisterRequest defines the request body for account registration
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Password  string `json:"password" validate:"required,min=6"`
}

// LoginRequest defines the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerifyOTPRequest defines the request body for OTP verification
type VerifyOTPRequest struct {
	UserID uint   `json:"userId" validate:"required"`
	OTP    string `json:"otp" validate:"required,len=6"`
}

// UpdateUserRequest defines the request body for profile updates
type UpdateUserRequest struct {
	FirstName    string `json:"firstName" validate:"required"`
	LastName     string `json:"lastName,omitempty"`
	Username     string `json:"username" validate:"required"`
	Bio          string `json:"bio,omitempty"`
	ProfileImage string `json:"profileImage,omitempty" validate:"omitempty,url"`
	CoverImage   string `json:"coverImage,omitempty" validate:"omitempty,url"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID          uint       `json:"user_id"`
	IsMember        bool       `json:"is_member"`
	VerifiedAt      *time.Time `json:"verified_at"`
	HasNotification bool       `json:"has_notification"`
	jwt.RegisteredClaims
}
