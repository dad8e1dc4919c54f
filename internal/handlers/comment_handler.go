package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/nextgendev/talker/internal/middleware"
	"github.com/nextgendev/talker/internal/models"
	"github.com/nextgendev/talker/internal/repositories"
	"github.com/nextgendev/talker/internal/services"
)

// CommentHandler handles HTTP requests related to comments and replies
type CommentHandler struct {
	commentRepository     repositories.CommentRepository
	postRepository        repositories.PostRepository
	commentLikeRepository repositories.CommentLikeRepository
	notificationService   *services.NotificationService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, commentLikeRepo repositories.CommentLikeRepository, notificationService *services.NotificationService) *CommentHandler {
	return &CommentHandler{
		commentRepository:     commentRepo,
		postRepository:        postRepo,
		commentLikeRepository: commentLikeRepo,
		notificationService:   notificationService,
	}
}

// RegisterCommentRoutes registers comment-related routes. Reads are
// public, mutations require an authenticated session.
func (h *CommentHandler) RegisterCommentRoutes(public, protected *echo.Group) {
	public.GET("/comments/:id", h.GetComment)
	public.GET("/posts/:id/comments", h.GetPostComments)

	protected.POST("/comments/reply/:id", h.ReplyOnComment)
	protected.POST("/comments/like/:id", h.LikeComment)
	protected.POST("/comments/:id", h.CommentOnPost)
	protected.DELETE("/comments/unlike/:id", h.UnlikeComment)
	protected.DELETE("/comments/:id", h.DeleteComment)
}

// GetComment retrieves a comment with its author, replies and likes
func (h *CommentHandler) GetComment(c echo.Context) error {
	commentID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	comment, err := h.commentRepository.GetCommentByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "comment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "comment": comment})
}

// GetPostComments retrieves the top-level comments of a post
func (h *CommentHandler) GetPostComments(c echo.Context) error {
	postID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	if _, err := h.postRepository.GetPostByID(postID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "post not found")
	}

	comments, err := h.commentRepository.GetCommentsByPostID(postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "comments": comments})
}

// CommentOnPost creates a top-level comment and notifies the post owner
func (h *CommentHandler) CommentOnPost(c echo.Context) error {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	postID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.postRepository.GetPostByID(postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "post not found")
	}

	comment := &models.Comment{
		UserID: claims.UserID,
		PostID: &postID,
		Body:   req.Data,
	}
	if err := h.commentRepository.CreateComment(comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if post.UserID != claims.UserID {
		actorID := claims.UserID
		if err := h.notificationService.Notify(c.Request().Context(), services.NotifyInput{
			RecipientID:  post.UserID,
			ActorID:      &actorID,
			Type:         models.NotificationTypeComment,
			Message:      "commented on your post",
			RefPostID:    &post.ID,
			RefCommentID: &comment.ID,
		}); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "comment": comment})
}

// ReplyOnComment creates a nested reply and notifies the parent comment owner
func (h *CommentHandler) ReplyOnComment(c echo.Context) error {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	commentID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	parent, err := h.commentRepository.GetCommentByID(commentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "comment for which this reply is posted is not present")
	}

	reply := &models.Comment{
		UserID:          claims.UserID,
		ParentCommentID: &parent.ID,
		Body:            req.Data,
	}
	if err := h.commentRepository.CreateComment(reply); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if parent.UserID != claims.UserID {
		actorID := claims.UserID
		if err := h.notificationService.Notify(c.Request().Context(), services.NotifyInput{
			RecipientID:  parent.UserID,
			ActorID:      &actorID,
			Type:         models.NotificationTypeComment,
			Message:      "replied to your comment",
			RefCommentID: &parent.ID,
		}); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "reply": reply})
}

// LikeComment records a like on a comment and notifies its owner
func (h *CommentHandler) LikeComment(c echo.Context) error {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	commentID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	comment, err := h.commentRepository.GetCommentByID(commentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "comment not found")
	}

	// Fan-out must not fire when the like already exists.
	hasLiked, err := h.commentLikeRepository.HasUserLikedComment(commentID, claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if hasLiked {
		return echo.NewHTTPError(http.StatusConflict, "user already liked this comment")
	}

	like := &models.CommentLike{
		CommentID: commentID,
		UserID:    claims.UserID,
	}
	if err := h.commentLikeRepository.CreateCommentLike(like); err != nil {
		if repositories.IsUniqueConstraintError(err) {
			return echo.NewHTTPError(http.StatusConflict, "user already liked this comment")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if comment.UserID != claims.UserID {
		actorID := claims.UserID
		if err := h.notificationService.Notify(c.Request().Context(), services.NotifyInput{
			RecipientID:  comment.UserID,
			ActorID:      &actorID,
			Type:         models.NotificationTypeComment,
			Message:      "liked your comment",
			RefCommentID: &comment.ID,
		}); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "liked"})
}

// UnlikeComment removes the caller's like. Symmetric delete only, no fan-out.
func (h *CommentHandler) UnlikeComment(c echo.Context) error {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	commentID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	if err := h.commentLikeRepository.DeleteCommentLike(commentID, claims.UserID); err != nil {
		if errors.Is(err, repositories.ErrLikeNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "like not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "unliked"})
}

// DeleteComment removes a comment owned by the caller, cascading to its
// replies and likes
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	commentID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	comment, err := h.commentRepository.GetCommentByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "comment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if comment.UserID != claims.UserID {
		return echo.NewHTTPError(http.StatusUnauthorized, "you are not authorized to delete this comment")
	}

	if err := h.commentRepository.DeleteComment(commentID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "comment deleted successfully"})
}
