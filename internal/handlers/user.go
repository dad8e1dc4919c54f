package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/nextgendev/talker/internal/middleware"
	"github.com/nextgendev/talker/internal/models"
	"github.com/nextgendev/talker/internal/repositories"
)

// UserHandler handles HTTP requests related to user profiles
type UserHandler struct {
	userRepository repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo}
}

// RegisterUserRoutes registers user profile routes. The read is public,
// updates and deletion are restricted to the profile owner.
func (h *UserHandler) RegisterUserRoutes(public, protected *echo.Group) {
	public.GET("/users/:id", h.GetUser)

	protected.PUT("/users/:id", h.UpdateUser)
	protected.DELETE("/users/:id", h.DeleteUser)
}

// GetUser retrieves a user profile with their posts and comments
func (h *UserHandler) GetUser(c echo.Context) error {
	userID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	user, err := h.userRepository.GetUserProfile(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": user})
}

// UpdateUser updates the caller's own profile
func (h *UserHandler) UpdateUser(c echo.Context) error {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	userID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	if userID != claims.UserID {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req models.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	taken, err := h.userRepository.UsernameTaken(req.Username, claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if taken {
		return echo.NewHTTPError(http.StatusConflict, "This username has been taken")
	}

	user, err := h.userRepository.GetUserByID(claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Username = req.Username
	user.Bio = req.Bio
	user.ProfileImage = req.ProfileImage
	user.CoverImage = req.CoverImage

	if err := h.userRepository.UpdateUser(user); err != nil {
		if repositories.IsUniqueConstraintError(err) {
			return echo.NewHTTPError(http.StatusConflict, "This username has been taken")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": user})
}

// DeleteUser deletes the caller's own account and everything it owns
func (h *UserHandler) DeleteUser(c echo.Context) error {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	userID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	if userID != claims.UserID {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if err := h.userRepository.DeleteUser(claims.UserID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "user deleted successfully"})
}
