package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/raiser-connect/backend/internal/models"
	"github.com/raiser-connect/backend/internal/repositories"
)

// UserHandler handles HTTP requests related to user profiles and pinned posts
type UserHandler struct {
	userRepository repositories.UserRepository
	postRepository repositories.PostRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, postRepo repositories.PostRepository) *UserHandler {
	return &UserHandler{
		userRepository: userRepo,
		postRepository: postRepo,
	}
}

// RegisterUserRoutes registers the public user routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/:id", h.GetUserProfile)
	g.GET("/:id/posts", h.GetUserPosts)
	g.GET("/:id/pinned", h.GetPinnedPosts)
}

// RegisterProtectedUserRoutes registers the user routes behind the protect gate
func (h *UserHandler) RegisterProtectedUserRoutes(g *echo.Group) {
	g.PUT("/profile", h.UpdateProfile)
	g.POST("/pinned", h.AddPinnedPost)
	g.DELETE("/pinned", h.RemovePinnedPost)
}

// GetUserProfile retrieves a user's public profile by ID
func (h *UserHandler) GetUserProfile(c echo.Context) error {
	user, err := h.userRepository.GetUserByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return respondData(c, http.StatusOK, echo.Map{"user": user})
}

// UpdateProfile patches the caller's name, bio, profile picture and location
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.Location != nil && !req.Location.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "Location requires both longitude and latitude")
	}

	user, err := h.userRepository.UpdateProfile(c.Request().Context(), currentUserID(c), &req)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respondMessage(c, http.StatusOK, "Profile updated successfully", echo.Map{"user": user})
}

// GetUserPosts lists a user's posts newest first
func (h *UserHandler) GetUserPosts(c echo.Context) error {
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

// AddPinnedPost pins one of the caller's own posts, capped at five
func (h *UserHandler) AddPinnedPost(c echo.Context) error {
	callerID, err := currentUserObjectID(c)
	if err != nil {
		return err
	}

	var req models.PinRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	// The post must exist and belong to the caller
	post, err := h.postRepository.GetPostOwnedBy(ctx, req.PostID, callerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found or does not belong to user")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	user, err := h.userRepository.GetUserByID(ctx, currentUserID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if user.IsPinned(post.ID) {
		return echo.NewHTTPError(http.StatusBadRequest, "Post already pinned")
	}
	if len(user.PinnedPosts) >= models.MaxPinnedPosts {
		return echo.NewHTTPError(http.StatusBadRequest, "Maximum 5 pinned posts allowed")
	}

	if err := h.userRepository.AddPinnedPost(ctx, currentUserID(c), post.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respondMessage(c, http.StatusOK, "Post pinned successfully", echo.Map{
		"pinnedPosts": append(user.PinnedPosts, post.ID),
	})
}

// RemovePinnedPost unpins a post; unpinning an absent id is a no-op success
func (h *UserHandler) RemovePinnedPost(c echo.Context) error {
	var req models.PinRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, req.PostID)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			// Nothing to unpin; report success with the current list
			user, uerr := h.userRepository.GetUserByID(ctx, currentUserID(c))
			if uerr != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, uerr.Error())
			}
			return respondMessage(c, http.StatusOK, "Post unpinned successfully", echo.Map{
				"pinnedPosts": user.PinnedPosts,
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.userRepository.RemovePinnedPost(ctx, currentUserID(c), post.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	user, err := h.userRepository.GetUserByID(ctx, currentUserID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respondMessage(c, http.StatusOK, "Post unpinned successfully", echo.Map{
		"pinnedPosts": user.PinnedPosts,
	})
}

// GetPinnedPosts lists a user's pinned posts with authors and tags joined
func (h *UserHandler) GetPinnedPosts(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	posts, err := h.postRepository.GetPostsByIDs(ctx, user.PinnedPosts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	views, err := enrichPosts(ctx, h.userRepository, posts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respondData(c, http.StatusOK, echo.Map{"pinnedPosts": views})
}
