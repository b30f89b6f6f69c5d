package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/raiser-connect/backend/internal/models"
	"github.com/raiser-connect/backend/internal/repositories"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
	userRepository    repositories.UserRepository
	store             Transactor
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, userRepo repositories.UserRepository, store Transactor) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
		userRepository:    userRepo,
		store:             store,
	}
}

// RegisterCommentRoutes registers the public comment routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.GET("/:postId", h.GetComments)
	g.GET("/comment/:id", h.GetCommentByID)
}

// RegisterProtectedCommentRoutes registers the comment routes behind the
// protect gate
func (h *CommentHandler) RegisterProtectedCommentRoutes(g *echo.Group) {
	g.POST("/:postId", h.AddComment)
	g.PUT("/:id", h.UpdateComment)
	g.DELETE("/:id", h.DeleteComment)
}

// AddComment creates a comment on a post and increments the post's comment
// counter in the same transaction. The body must carry text or a voice note.
func (h *CommentHandler) AddComment(c echo.Context) error {
	callerID, err := currentUserObjectID(c)
	if err != nil {
		return err
	}

	var req models.CommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if !req.HasContent() {
		return echo.NewHTTPError(http.StatusBadRequest, "Comment must have text or voice note")
	}

	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, c.Param("postId"))
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	comment := &models.Comment{
		PostID: post.ID,
		UserID: callerID,
	}
	if req.VoiceNote != nil {
		comment.VoiceNote = req.VoiceNote
		comment.IsVoiceNote = true
	} else {
		comment.Text = req.Text
	}

	err = h.store.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := h.commentRepository.CreateComment(txCtx, comment); err != nil {
			return err
		}
		return h.postRepository.IncrementCommentsCount(txCtx, post.ID)
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	views, err := enrichComments(ctx, h.userRepository, []models.Comment{*comment})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respondMessage(c, http.StatusCreated, "Comment added successfully", echo.Map{"comment": views[0]})
}

// GetComments lists a post's comments oldest first
func (h *CommentHandler) GetComments(c echo.Context) error {
	page, limit, skip := parsePagination(c, defaultPageLimit)
	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, c.Param("postId"))
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	comments, err := h.commentRepository.GetCommentsByPostID(ctx, post.ID, skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	total, err := h.commentRepository.CountCommentsByPostID(ctx, post.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	views, err := enrichComments(ctx, h.userRepository, comments)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respondData(c, http.StatusOK, echo.Map{
		"comments":   views,
		"pagination": models.NewPagination(page, limit, total),
	})
}

// GetCommentByID retrieves a single comment with its author joined
func (h *CommentHandler) GetCommentByID(c echo.Context) error {
	ctx := c.Request().Context()

	comment, err := h.commentRepository.GetCommentByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrCommentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	views, err := enrichComments(ctx, h.userRepository, []models.Comment{*comment})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respondData(c, http.StatusOK, echo.Map{"comment": views[0]})
}

// UpdateComment replaces the caller's comment content; switching between
// text and voice note clears the other field
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	commentID := c.Param("id")

	var req models.CommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if !req.HasContent() {
		return echo.NewHTTPError(http.StatusBadRequest, "Comment must have text or voice note")
	}

	ctx := c.Request().Context()

	existing, err := h.commentRepository.GetCommentByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrCommentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !isOwner(currentUserID(c), existing.UserID) {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to update this comment")
	}

	comment, err := h.commentRepository.UpdateComment(ctx, commentID, &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	views, err := enrichComments(ctx, h.userRepository, []models.Comment{*comment})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respondMessage(c, http.StatusOK, "Comment updated successfully", echo.Map{"comment": views[0]})
}

// DeleteComment deletes a comment and decrements the post's comment counter
// in the same transaction. The comment's author and the post's author may
// both delete it.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	commentID := c.Param("id")
	ctx := c.Request().Context()

	comment, err := h.commentRepository.GetCommentByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrCommentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	post, err := h.postRepository.GetPostByID(ctx, comment.PostID.Hex())
	if err != nil && !errors.Is(err, repositories.ErrPostNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	callerID := currentUserID(c)
	canDelete := isOwner(callerID, comment.UserID) || (post != nil && isOwner(callerID, post.UserID))
	if !canDelete {
		return echo.NewHTTPError(http.StatusForbidden, "Not authorized to delete this comment")
	}

	err = h.store.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := h.commentRepository.DeleteComment(txCtx, commentID); err != nil {
			return err
		}
		if post != nil {
			return h.postRepository.DecrementCommentsCount(txCtx, post.ID)
		}
		return nil
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respondMessage(c, http.StatusOK, "Comment deleted successfully", nil)
}
