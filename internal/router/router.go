package router

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nextgendev/talker/internal/handlers"
	"github.com/nextgendev/talker/internal/middleware"
	"github.com/nextgendev/talker/internal/models"
	"github.com/nextgendev/talker/internal/repositories"
	"github.com/nextgendev/talker/internal/services"
	"github.com/nextgendev/talker/pkg/config"
	"github.com/nextgendev/talker/pkg/logger"
	"github.com/nextgendev/talker/pkg/mail"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.HTTPErrorHandler = HTTPErrorHandler
	log.Println("Global middleware configured.")
}

// HTTPErrorHandler renders every error as the {success:false, message}
// envelope. Internal detail is logged server-side and never echoed for
// 5xx responses.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Something went wrong"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		}
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
		message = "Something went wrong"
	}

	if err := c.JSON(status, echo.Map{"success": false, "message": message}); err != nil {
		logger.Error("failed to write error response", zap.Error(err))
	}
}

// AutoMigrate runs schema migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.OTP{},
		&models.Post{},
		&models.Comment{},
		&models.PostLike{},
		&models.CommentLike{},
		&models.Notification{},
	)
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, db *gorm.DB, cfg *config.Config, mailer mail.Mailer) error {
	if err := AutoMigrate(db); err != nil {
		return err
	}
	log.Println("Auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(db)
	otpRepo := repositories.NewPostgresOTPRepository(db)
	postRepo := repositories.NewPostgresPostRepository(db)
	commentRepo := repositories.NewPostgresCommentRepository(db)
	likeRepo := repositories.NewPostgresLikeRepository(db)
	commentLikeRepo := repositories.NewPostgresCommentLikeRepository(db)
	notificationRepo := repositories.NewPostgresNotificationRepository(db)

	// --- Initialize Services ---
	tokenService, err := services.NewTokenService(otpRepo, cfg.JWTSecret)
	if err != nil {
		return err
	}
	notificationService, err := services.NewNotificationService(notificationRepo)
	if err != nil {
		return err
	}

	// --- Unprotected routes ---
	public := e.Group("/api/v1")

	authHandler := handlers.NewAuthHandler(userRepo, tokenService, mailer)
	authHandler.RegisterAuthRoutes(public.Group("/auth"))
	log.Println("Auth routes configured.")

	// --- Protected routes (require a valid session token) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	api.POST("/auth/verify-session", authHandler.VerifySession)

	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterUserRoutes(public, api)
	log.Println("User routes configured.")

	postHandler := handlers.NewPostHandler(postRepo, likeRepo, notificationService)
	postHandler.RegisterPostRoutes(public, api)
	log.Println("Post routes configured.")

	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo, commentLikeRepo, notificationService)
	commentHandler.RegisterCommentRoutes(public, api)
	log.Println("Comment routes configured.")

	notificationHandler := handlers.NewNotificationHandler(notificationService)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	log.Println("All routes configured.")
	return nil
}
