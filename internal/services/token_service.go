package services

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"github.com/nextgendev/talker/internal/models"
	"github.com/nextgendev/talker/internal/repositories"
)

const (
	otpExpiry       = 10 * time.Minute
	sessionTokenTTL = 7 * 24 * time.Hour
)

var (
	// ErrOTPNotFound indicates no live code exists for the user.
	ErrOTPNotFound = errors.New("otp: not found")
	// ErrOTPExpired indicates the code exists but its lifetime has passed.
	ErrOTPExpired = errors.New("otp: expired")
	// ErrOTPMismatch indicates the supplied code does not match.
	ErrOTPMismatch = errors.New("otp: invalid code")
	// ErrSessionTokenInvalid covers missing, malformed, tampered and expired
	// session tokens alike. Validation fails closed.
	ErrSessionTokenInvalid = errors.New("session token: invalid")
)

// TokenOption customises the TokenService.
type TokenOption func(*TokenService)

// WithClock injects a custom time source.
func WithClock(clock func() time.Time) TokenOption {
	return func(s *TokenService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// TokenService issues and validates the two kinds of proof the backend
// relies on: short-lived one-time codes for email verification and
// long-lived signed session tokens.
type TokenService struct {
	otps      repositories.OTPRepository
	jwtSecret string
	now       func() time.Time
}

// NewTokenService constructs a TokenService.
func NewTokenService(otps repositories.OTPRepository, jwtSecret string, opts ...TokenOption) (*TokenService, error) {
	if otps == nil {
		return nil, errors.New("token service: otp repository is required")
	}
	if jwtSecret == "" {
		return nil, errors.New("token service: jwt secret is required")
	}

	service := &TokenService{
		otps:      otps,
		jwtSecret: jwtSecret,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// IssueOTP generates a 6-digit code valid for ten minutes. Any prior code
// for the user is removed first, so at most one code is live at a time.
func (s *TokenService) IssueOTP(userID uint) (*models.OTP, error) {
	code, err := randomCode()
	if err != nil {
		return nil, fmt.Errorf("token service: generate code: %w", err)
	}

	if err := s.otps.DeleteByUserID(userID); err != nil {
		return nil, fmt.Errorf("token service: replace existing code: %w", err)
	}

	otp := &models.OTP{
		UserID:    userID,
		Code:      code,
		ExpiresAt: s.now().Add(otpExpiry),
		Valid:     true,
	}
	if err := s.otps.CreateOTP(otp); err != nil {
		return nil, fmt.Errorf("token service: store code: %w", err)
	}
	return otp, nil
}

// VerifyOTP validates and consumes the user's live code. Consumed codes
// are invalidated, not deleted.
func (s *TokenService) VerifyOTP(userID uint, code string) error {
	otp, err := s.otps.GetLiveOTPByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOTPNotFound
		}
		return fmt.Errorf("token service: find code: %w", err)
	}

	if otp.ExpiresAt.Before(s.now()) {
		return ErrOTPExpired
	}
	if subtle.ConstantTimeCompare([]byte(otp.Code), []byte(code)) != 1 {
		return ErrOTPMismatch
	}

	if err := s.otps.Invalidate(otp.ID); err != nil {
		return fmt.Errorf("token service: consume code: %w", err)
	}
	return nil
}

// GenerateSessionToken signs a 7-day HS256 session token for the user.
func (s *TokenService) GenerateSessionToken(user *models.User) (string, error) {
	now := s.now()
	claims := &models.JwtCustomClaims{
		UserID:          user.ID,
		IsMember:        user.IsMember,
		VerifiedAt:      user.EmailVerifiedAt,
		HasNotification: user.HasNotification,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ParseSessionToken validates a raw session token and returns its claims.
func (s *TokenService) ParseSessionToken(raw string) (*models.JwtCustomClaims, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrSessionTokenInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrSessionTokenInvalid
	}
	return claims, nil
}

// randomCode draws a uniform 6-digit code from [100000, 999999].
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
