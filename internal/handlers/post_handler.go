package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/nextgendev/talker/internal/middleware"
	"github.com/nextgendev/talker/internal/models"
	"github.com/nextgendev/talker/internal/repositories"
	"github.com/nextgendev/talker/internal/services"
)

const feedPageSize = 10

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository      repositories.PostRepository
	likeRepository      repositories.LikeRepository
	notificationService *services.NotificationService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, likeRepo repositories.LikeRepository, notificationService *services.NotificationService) *PostHandler {
	return &PostHandler{
		postRepository:      postRepo,
		likeRepository:      likeRepo,
		notificationService: notificationService,
	}
}

// RegisterPostRoutes registers post-related routes. Reads are public,
// mutations require an authenticated session.
func (h *PostHandler) RegisterPostRoutes(public, protected *echo.Group) {
	public.GET("/posts/feed", h.GetFeed)
	public.GET("/posts/:id", h.GetPost)

	protected.POST("/posts", h.CreatePost)
	protected.PUT("/posts/:id", h.UpdatePost)
	protected.DELETE("/posts/:id", h.DeletePost)
	protected.POST("/posts/:id/like", h.LikePost)
	protected.DELETE("/posts/:id/unlike", h.UnlikePost)
}

// GetFeed returns a newest-first page of posts with their authors,
// comments, replies and likes
func (h *PostHandler) GetFeed(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}

	posts, err := h.postRepository.GetFeed(page, feedPageSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "posts": posts})
}

// GetPost retrieves a single post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	postID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	post, err := h.postRepository.GetPostByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "post": post})
}

// CreatePost creates a new post and records an activity entry for the author
func (h *PostHandler) CreatePost(c echo.Context) error {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if claims.VerifiedAt == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not verified")
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post := &models.Post{
		UserID: claims.UserID,
		Body:   req.Body,
	}
	if err := h.postRepository.CreatePost(post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Self-targeted activity entry, not a social alert.
	if err := h.notificationService.Notify(c.Request().Context(), services.NotifyInput{
		RecipientID: claims.UserID,
		Type:        models.NotificationTypePost,
		Message:     "Tweet posted successfully",
		RefPostID:   &post.ID,
	}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "post": post})
}

// UpdatePost edits a post's body. Members only, and only the owner.
func (h *PostHandler) UpdatePost(c echo.Context) error {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if claims.VerifiedAt == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not verified")
	}
	if !claims.IsMember {
		return echo.NewHTTPError(http.StatusUnauthorized, "only members can update post")
	}

	postID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.postRepository.GetUserPost(postID, claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "no post found")
	}

	post.Body = req.Body
	if err := h.postRepository.UpdatePost(post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.notificationService.Notify(c.Request().Context(), services.NotifyInput{
		RecipientID: claims.UserID,
		Type:        models.NotificationTypePost,
		Message:     "Tweet updated successfully",
		RefPostID:   &post.ID,
	}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "post": post})
}

// DeletePost removes a post owned by the caller, cascading to its
// comments and likes
func (h *PostHandler) DeletePost(c echo.Context) error {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	postID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	if _, err := h.postRepository.GetUserPost(postID, claims.UserID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "post not found")
	}

	if err := h.postRepository.DeletePost(postID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "post deleted successfully"})
}

// LikePost records a like on a post and notifies its owner
func (h *PostHandler) LikePost(c echo.Context) error {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if claims.VerifiedAt == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not verified")
	}

	postID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	post, err := h.postRepository.GetPostByID(postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "post not found")
	}

	hasLiked, err := h.likeRepository.HasUserLikedPost(postID, claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if hasLiked {
		return echo.NewHTTPError(http.StatusConflict, "user already liked this post")
	}

	like := &models.PostLike{
		PostID: postID,
		UserID: claims.UserID,
	}
	if err := h.likeRepository.CreateLike(like); err != nil {
		// The composite unique index is the authoritative guard.
		if repositories.IsUniqueConstraintError(err) {
			return echo.NewHTTPError(http.StatusConflict, "user already liked this post")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if post.UserID != claims.UserID {
		actorID := claims.UserID
		if err := h.notificationService.Notify(c.Request().Context(), services.NotifyInput{
			RecipientID: post.UserID,
			ActorID:     &actorID,
			Type:        models.NotificationTypePost,
			Message:     "liked your post",
			RefPostID:   &post.ID,
		}); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "liked"})
}

// UnlikePost removes the caller's like. Symmetric delete only, no fan-out.
func (h *PostHandler) UnlikePost(c echo.Context) error {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	postID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	if err := h.likeRepository.DeleteLike(postID, claims.UserID); err != nil {
		if errors.Is(err, repositories.ErrLikeNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "like not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "unliked"})
}

// parseUintParam reads a numeric path parameter.
func parseUintParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
