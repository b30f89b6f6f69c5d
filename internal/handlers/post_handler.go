package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/raiser-connect/backend/internal/models"
	"github.com/raiser-connect/backend/internal/repositories"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
	store          Transactor
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, store Transactor) *PostHandler {
	return &PostHandler{
		postRepository: postRepo,
		userRepository: userRepo,
		store:          store,
	}
}

// RegisterPostRoutes registers the public post routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("", h.GetPosts)
	g.GET("/:id", h.GetPostByID)
	g.GET("/user/:id", h.GetUserPosts)
}

// RegisterProtectedPostRoutes registers the post routes behind the protect gate
func (h *PostHandler) RegisterProtectedPostRoutes(g *echo.Group) {
	g.POST("", h.CreatePost)
	g.PUT("/:id", h.UpdatePost)
	g.DELETE("/:id", h.DeletePost)
	g.POST("/:id/tags", h.AddTag)
	g.DELETE("/:id/tags", h.RemoveTag)
}

// CreatePost creates a new post and increments the owner's post counter in
// the same transaction
func (h *PostHandler) CreatePost(c echo.Context) error {
	callerID, err := currentUserObjectID(c)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.Location != nil && !req.Location.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "Location requires both longitude and latitude")
	}

	post := &models.Post{
		UserID:      callerID,
		Title:       req.Title,
		Description: req.Description,
		Images:      req.Images,
	}
	if req.Location.Valid() {
		post.Location = req.Location.ToGeoPoint()
	}

	err = h.store.WithTransaction(c.Request().Context(), func(ctx context.Context) error {
		if err := h.postRepository.CreatePost(ctx, post); err != nil {
			return err
		}
		return h.userRepository.IncPostsCount(ctx, currentUserID(c), 1)
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	views, err := enrichPosts(c.Request().Context(), h.userRepository, []models.Post{*post})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respondMessage(c, http.StatusCreated, "Post created successfully", echo.Map{"post": views[0]})
}

// GetPosts lists all posts newest first
func (h *PostHandler) GetPosts(c echo.Context) error {
	page, limit, skip := parsePagination(c, defaultPageLimit)
	ctx := c.Request().Context()

	posts, err := h.postRepository.GetAllPosts(ctx, skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	total, err := h.postRepository.CountPosts(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	views, err := enrichPosts(ctx, h.userRepository, posts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respondData(c, http.StatusOK, echo.Map{
		"posts":      views,
		"pagination": models.NewPagination(page, limit, total),
	})
}

// GetPostByID retrieves a single post with author and tags joined
func (h *PostHandler) GetPostByID(c echo.Context) error {
	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	views, err := enrichPosts(ctx, h.userRepository, []models.Post{*post})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respondData(c, http.StatusOK, echo.Map{"post": views[0]})
}

// GetUserPosts lists the posts of a given user newest first
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	userID := c.Param("id")
	page, limit, skip := parsePagination(c, defaultPageLimit)
	ctx := c.Request().Context()

	posts, err := h.postRepository.GetPostsByUserID(ctx, userID, skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	total, err := h.postRepository.CountPostsByUserID(ctx, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	views, err := enrichPosts(ctx, h.userRepository, posts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respondData(c, http.StatusOK, echo.Map{
		"posts":      views,
		"pagination": models.NewPagination(page, limit, total),
	})
}

// UpdatePost patches an existing post; only the owner may update it
func (h *PostHandler) UpdatePost(c echo.Context) error {
	postID := c.Param("id")

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.Location != nil && !req.Location.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "Location requires both longitude and latitude")
	}

	ctx := c.Request().Context()

	existing, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !isOwner(currentUserID(c), existing.UserID) {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to update this post")
	}

	post, err := h.postRepository.UpdatePost(ctx, postID, &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	views, err := enrichPosts(ctx, h.userRepository, []models.Post{*post})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respondMessage(c, http.StatusOK, "Post updated successfully", echo.Map{"post": views[0]})
}

// DeletePost deletes a post and decrements the owner's post counter in the
// same transaction; only the owner may delete it
func (h *PostHandler) DeletePost(c echo.Context) error {
	postID := c.Param("id")
	ctx := c.Request().Context()

	existing, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !isOwner(currentUserID(c), existing.UserID) {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this post")
	}

	err = h.store.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := h.postRepository.DeletePost(txCtx, postID); err != nil {
			return err
		}
		return h.userRepository.IncPostsCount(txCtx, existing.UserID.Hex(), -1)
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respondMessage(c, http.StatusOK, "Post deleted successfully", nil)
}

// AddTag tags a user on a post; tagging an already-tagged user is a no-op
func (h *PostHandler) AddTag(c echo.Context) error {
	return h.updateTags(c, true)
}

// RemoveTag removes a user tag from a post; removing an absent tag is a no-op
func (h *PostHandler) RemoveTag(c echo.Context) error {
	return h.updateTags(c, false)
}

func (h *PostHandler) updateTags(c echo.Context, add bool) error {
	postID := c.Param("id")

	var req models.TagRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var post *models.Post
	var message string
	if add {
		post, err = h.postRepository.AddTag(ctx, postID, user.ID)
		message = "User tagged successfully"
	} else {
		post, err = h.postRepository.RemoveTag(ctx, postID, user.ID)
		message = "User tag removed successfully"
	}
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	views, err := enrichPosts(ctx, h.userRepository, []models.Post{*post})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respondMessage(c, http.StatusOK, message, echo.Map{"tags": views[0].TaggedUsers})
}
