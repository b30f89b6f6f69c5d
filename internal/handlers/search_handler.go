package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/raiser-connect/backend/internal/models"
	"github.com/raiser-connect/backend/internal/repositories"
)

// SearchHandler handles search and ranking HTTP requests
type SearchHandler struct {
	userRepository repositories.UserRepository
	postRepository repositories.PostRepository
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(userRepo repositories.UserRepository, postRepo repositories.PostRepository) *SearchHandler {
	return &SearchHandler{
		userRepository: userRepo,
		postRepository: postRepo,
	}
}

// RegisterSearchRoutes registers the search routes
func (h *SearchHandler) RegisterSearchRoutes(g *echo.Group) {
	g.GET("/users", h.SearchUsers)
	g.GET("/posts", h.SearchPosts)
	g.GET("/all", h.SearchAll)
	g.GET("/popular", h.GetPopularUsers)
	g.GET("/trending", h.GetTrendingPosts)
}

// SearchUsers finds users by username, name or bio substring
func (h *SearchHandler) SearchUsers(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query is required")
	}

	page, limit, skip := parsePagination(c, defaultPageLimit)
	ctx := c.Request().Context()

	users, err := h.userRepository.SearchUsers(ctx, query, skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	total, err := h.userRepository.CountSearchUsers(ctx, query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respondData(c, http.StatusOK, echo.Map{
		"users":      userSummaries(users),
		"pagination": models.NewPagination(page, limit, total),
	})
}

// SearchPosts finds posts by title or description substring, newest first
func (h *SearchHandler) SearchPosts(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query is required")
	}

	page, limit, skip := parsePagination(c, defaultPageLimit)
	ctx := c.Request().Context()

	posts, err := h.postRepository.SearchPosts(ctx, query, skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	total, err := h.postRepository.CountSearchPosts(ctx, query)
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

// SearchAll searches users and posts in one response with independent
// pagination per entity type
func (h *SearchHandler) SearchAll(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query is required")
	}

	page, limit, skip := parsePagination(c, combinedSearchLimit)
	ctx := c.Request().Context()

	users, err := h.userRepository.SearchUsers(ctx, query, skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	posts, err := h.postRepository.SearchPosts(ctx, query, skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	totalUsers, err := h.userRepository.CountSearchUsers(ctx, query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	totalPosts, err := h.postRepository.CountSearchPosts(ctx, query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	views, err := enrichPosts(ctx, h.userRepository, posts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	userPages := models.NewPagination(page, limit, totalUsers)
	postPages := models.NewPagination(page, limit, totalPosts)
	totalPages := userPages.TotalPages
	if postPages.TotalPages > totalPages {
		totalPages = postPages.TotalPages
	}

	return respondData(c, http.StatusOK, echo.Map{
		"users": userSummaries(users),
		"posts": views,
		"pagination": echo.Map{
			"currentPage": page,
			"totalPages":  totalPages,
			"totalUsers":  totalUsers,
			"totalPosts":  totalPosts,
		},
	})
}

// GetPopularUsers ranks users by follower count descending
func (h *SearchHandler) GetPopularUsers(c echo.Context) error {
	page, limit, skip := parsePagination(c, defaultPageLimit)
	ctx := c.Request().Context()

	users, err := h.userRepository.GetPopularUsers(ctx, skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	total, err := h.userRepository.CountUsers(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respondData(c, http.StatusOK, echo.Map{
		"users":      userSummaries(users),
		"pagination": models.NewPagination(page, limit, total),
	})
}

// GetTrendingPosts ranks posts by comment count, ties broken by recency
func (h *SearchHandler) GetTrendingPosts(c echo.Context) error {
	page, limit, skip := parsePagination(c, defaultPageLimit)
	ctx := c.Request().Context()

	posts, err := h.postRepository.GetTrendingPosts(ctx, skip, int64(limit))
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
