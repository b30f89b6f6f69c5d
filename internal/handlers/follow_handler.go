package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/raiser-connect/backend/internal/models"
	"github.com/raiser-connect/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FollowHandler handles follow graph HTTP requests
type FollowHandler struct {
	followRepository repositories.FollowRepository
	userRepository   repositories.UserRepository
	store            Transactor
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, userRepo repositories.UserRepository, store Transactor) *FollowHandler {
	return &FollowHandler{
		followRepository: followRepo,
		userRepository:   userRepo,
		store:            store,
	}
}

// RegisterFollowRoutes registers the public follow routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.GET("/followers/:id", h.GetFollowers)
	g.GET("/following/:id", h.GetFollowing)
}

// RegisterProtectedFollowRoutes registers the follow routes behind the
// protect gate
func (h *FollowHandler) RegisterProtectedFollowRoutes(g *echo.Group) {
	g.POST("", h.FollowUser)
	g.DELETE("", h.UnfollowUser)
	g.GET("/:id", h.CheckFollowStatus)
}

// FollowUser creates a follow edge and increments both counters in one
// transaction. Self-follows and duplicate edges are rejected.
func (h *FollowHandler) FollowUser(c echo.Context) error {
	callerID, err := currentUserObjectID(c)
	if err != nil {
		return err
	}

	var req models.FollowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if req.UserID == currentUserID(c) {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot follow yourself")
	}

	ctx := c.Request().Context()

	target, err := h.userRepository.GetUserByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	isFollowing, err := h.followRepository.IsFollowing(ctx, callerID, target.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if isFollowing {
		return echo.NewHTTPError(http.StatusBadRequest, "You are already following this user")
	}

	follow := &models.Follow{
		Follower:  callerID,
		Following: target.ID,
	}

	err = h.store.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := h.followRepository.CreateFollow(txCtx, follow); err != nil {
			return err
		}
		if err := h.userRepository.IncFollowersCount(txCtx, target.ID.Hex(), 1); err != nil {
			return err
		}
		return h.userRepository.IncFollowingCount(txCtx, callerID.Hex(), 1)
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respondMessage(c, http.StatusOK, "User followed successfully", nil)
}

// UnfollowUser removes a follow edge and decrements both counters in one
// transaction. Unfollowing a user who is not followed is rejected.
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	callerID, err := currentUserObjectID(c)
	if err != nil {
		return err
	}

	var req models.FollowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	target, err := h.userRepository.GetUserByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	err = h.store.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := h.followRepository.DeleteFollow(txCtx, callerID, target.ID); err != nil {
			return err
		}
		if err := h.userRepository.IncFollowersCount(txCtx, target.ID.Hex(), -1); err != nil {
			return err
		}
		return h.userRepository.IncFollowingCount(txCtx, callerID.Hex(), -1)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrFollowNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "You are not following this user")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respondMessage(c, http.StatusOK, "User unfollowed successfully", nil)
}

// GetFollowers lists the users following the given user, newest edge first
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	return h.listEdges(c, true)
}

// GetFollowing lists the users the given user follows, newest edge first
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	return h.listEdges(c, false)
}

func (h *FollowHandler) listEdges(c echo.Context, followers bool) error {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	page, limit, skip := parsePagination(c, defaultPageLimit)
	ctx := c.Request().Context()

	var follows []models.Follow
	var total int64
	if followers {
		follows, err = h.followRepository.GetFollowers(ctx, userID, skip, int64(limit))
		if err == nil {
			total, err = h.followRepository.CountFollowers(ctx, userID)
		}
	} else {
		follows, err = h.followRepository.GetFollowing(ctx, userID, skip, int64(limit))
		if err == nil {
			total, err = h.followRepository.CountFollowing(ctx, userID)
		}
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Join user summaries preserving edge order
	ids := make([]primitive.ObjectID, len(follows))
	for i, f := range follows {
		if followers {
			ids[i] = f.Follower
		} else {
			ids[i] = f.Following
		}
	}
	users, err := h.userRepository.GetUsersByIDs(ctx, ids)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	userMap := make(map[primitive.ObjectID]models.UserSummary, len(users))
	for i := range users {
		userMap[users[i].ID] = users[i].ToSummary()
	}
	summaries := make([]models.UserSummary, 0, len(ids))
	for _, id := range ids {
		if summary, ok := userMap[id]; ok {
			summaries = append(summaries, summary)
		}
	}

	key := "following"
	if followers {
		key = "followers"
	}
	return respondData(c, http.StatusOK, echo.Map{
		key:          summaries,
		"pagination": models.NewPagination(page, limit, total),
	})
}

// CheckFollowStatus reports whether the caller follows the given user
func (h *FollowHandler) CheckFollowStatus(c echo.Context) error {
	callerID, err := currentUserObjectID(c)
	if err != nil {
		return err
	}

	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	isFollowing, err := h.followRepository.IsFollowing(c.Request().Context(), callerID, targetID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respondData(c, http.StatusOK, echo.Map{"isFollowing": isFollowing})
}
