package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nextgendev/talker/internal/middleware"
	"github.com/nextgendev/talker/internal/models"
	"github.com/nextgendev/talker/internal/repositories"
	"github.com/nextgendev/talker/internal/services"
	"github.com/nextgendev/talker/pkg/mail"
	"github.com/nextgendev/talker/pkg/validators"
)

// mockMailer records outbound messages instead of delivering them.
type mockMailer struct {
	sent []mail.Message
}

func (m *mockMailer) Send(_ context.Context, msg mail.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

type testEnv struct {
	e       *echo.Echo
	db      *gorm.DB
	mailer  *mockMailer
	current time.Time

	userRepo            repositories.UserRepository
	otpRepo             repositories.OTPRepository
	tokenService        *services.TokenService
	notificationService *services.NotificationService

	auth          *AuthHandler
	posts         *PostHandler
	comments      *CommentHandler
	users         *UserHandler
	notifications *NotificationHandler
}

func newTestEnv(t *testing.T) *testEnv {
	// Foreign keys on so the suite exercises the same cascade behavior
	// the Postgres schema enforces.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.OTP{},
		&models.Post{},
		&models.Comment{},
		&models.PostLike{},
		&models.CommentLike{},
		&models.Notification{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	env := &testEnv{
		e:       echo.New(),
		db:      db,
		mailer:  &mockMailer{},
		current: time.Now(),
	}
	env.e.Validator = validators.NewValidator()

	env.userRepo = repositories.NewPostgresUserRepository(db)
	env.otpRepo = repositories.NewPostgresOTPRepository(db)
	postRepo := repositories.NewPostgresPostRepository(db)
	commentRepo := repositories.NewPostgresCommentRepository(db)
	likeRepo := repositories.NewPostgresLikeRepository(db)
	commentLikeRepo := repositories.NewPostgresCommentLikeRepository(db)
	notificationRepo := repositories.NewPostgresNotificationRepository(db)

	env.tokenService, err = services.NewTokenService(env.otpRepo, "test-secret",
		services.WithClock(func() time.Time { return env.current }))
	require.NoError(t, err)

	env.notificationService, err = services.NewNotificationService(notificationRepo)
	require.NoError(t, err)

	env.auth = NewAuthHandler(env.userRepo, env.tokenService, env.mailer)
	env.posts = NewPostHandler(postRepo, likeRepo, env.notificationService)
	env.comments = NewCommentHandler(commentRepo, postRepo, commentLikeRepo, env.notificationService)
	env.users = NewUserHandler(env.userRepo)
	env.notifications = NewNotificationHandler(env.notificationService)

	return env
}

// jsonContext builds an echo context carrying a JSON body.
func (env *testEnv) jsonContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return env.e.NewContext(req, rec), rec
}

// asUser attaches session claims for the given user, as the JWT
// middleware would after validating a bearer token.
func (env *testEnv) asUser(c echo.Context, user *models.User) {
	c.Set(middleware.ContextUserKey, &models.JwtCustomClaims{
		UserID:          user.ID,
		IsMember:        user.IsMember,
		VerifiedAt:      user.EmailVerifiedAt,
		HasNotification: user.HasNotification,
	})
}

// seedUser stores a user with a known password ("password123").
func (env *testEnv) seedUser(t *testing.T, email, username string, verified, member bool) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Email:     email,
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Password:  string(hash),
		IsMember:  member,
	}
	if verified {
		now := time.Now()
		user.EmailVerifiedAt = &now
	}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func (env *testEnv) seedPost(t *testing.T, owner *models.User, body string) *models.Post {
	post := &models.Post{UserID: owner.ID, Body: body}
	require.NoError(t, env.db.Create(post).Error)
	return post
}

func (env *testEnv) seedComment(t *testing.T, owner *models.User, post *models.Post, body string) *models.Comment {
	comment := &models.Comment{UserID: owner.ID, PostID: &post.ID, Body: body}
	require.NoError(t, env.db.Create(comment).Error)
	return comment
}

// httpStatus extracts the status code from a handler error.
func httpStatus(t *testing.T, err error) int {
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	return he.Code
}

// decodeBody unmarshals a recorded JSON response.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
