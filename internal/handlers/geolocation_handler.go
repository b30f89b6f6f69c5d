package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/raiser-connect/backend/internal/models"
	"github.com/raiser-connect/backend/internal/repositories"
)

// GeolocationHandler handles location-based discovery HTTP requests
type GeolocationHandler struct {
	userRepository   repositories.UserRepository
	postRepository   repositories.PostRepository
	followRepository repositories.FollowRepository
}

// NewGeolocationHandler creates a new GeolocationHandler
func NewGeolocationHandler(userRepo repositories.UserRepository, postRepo repositories.PostRepository, followRepo repositories.FollowRepository) *GeolocationHandler {
	return &GeolocationHandler{
		userRepository:   userRepo,
		postRepository:   postRepo,
		followRepository: followRepo,
	}
}

// RegisterGeolocationRoutes registers the geolocation routes; every one of
// them requires a caller identity
func (h *GeolocationHandler) RegisterGeolocationRoutes(g *echo.Group) {
	g.GET("/users", h.GetNearbyUsers)
	g.GET("/posts", h.GetNearbyPosts)
	g.GET("/suggested", h.GetSuggestedPosts)
	g.PUT("/location", h.UpdateLocation)
}

// parseCoordinates reads the longitude/latitude/maxDistance query triple.
// Both coordinates are required and must be numeric.
func parseCoordinates(c echo.Context) (longitude, latitude, maxDistance float64, err error) {
	lonParam := c.QueryParam("longitude")
	latParam := c.QueryParam("latitude")
	if lonParam == "" || latParam == "" {
		return 0, 0, 0, echo.NewHTTPError(http.StatusBadRequest, "Longitude and latitude are required")
	}

	longitude, lonErr := strconv.ParseFloat(lonParam, 64)
	latitude, latErr := strconv.ParseFloat(latParam, 64)
	if lonErr != nil || latErr != nil {
		return 0, 0, 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid coordinates")
	}

	maxDistance = defaultMaxDistance
	if raw := c.QueryParam("maxDistance"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			maxDistance = parsed
		}
	}
	return longitude, latitude, maxDistance, nil
}

// GetNearbyUsers finds users within the given radius of a point, excluding
// the caller
func (h *GeolocationHandler) GetNearbyUsers(c echo.Context) error {
	callerID, err := currentUserObjectID(c)
	if err != nil {
		return err
	}

	longitude, latitude, maxDistance, err := parseCoordinates(c)
	if err != nil {
		return err
	}

	users, err := h.userRepository.GetNearbyUsers(c.Request().Context(), longitude, latitude, maxDistance, callerID, nearbyResultLimit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respondData(c, http.StatusOK, echo.Map{"users": userSummaries(users)})
}

// GetNearbyPosts finds posts within the given radius of a point, newest first
func (h *GeolocationHandler) GetNearbyPosts(c echo.Context) error {
	longitude, latitude, maxDistance, err := parseCoordinates(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	posts, err := h.postRepository.GetNearbyPosts(ctx, longitude, latitude, maxDistance, nearbyResultLimit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	views, err := enrichPosts(ctx, h.userRepository, posts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respondData(c, http.StatusOK, echo.Map{"posts": views})
}

// GetSuggestedPosts pages through the union of followed users' posts and
// nearby posts. The union is not deduplicated and is sorted by recency only.
func (h *GeolocationHandler) GetSuggestedPosts(c echo.Context) error {
	callerID, err := currentUserObjectID(c)
	if err != nil {
		return err
	}

	page, limit, skip := parsePagination(c, defaultPageLimit)
	ctx := c.Request().Context()

	followingIDs, err := h.followRepository.GetFollowingIDs(ctx, callerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// The location predicate only joins the union when both coordinates
	// parse; a missing or malformed pair falls back to followed-only.
	var loc *models.GeoPoint
	maxDistance := float64(defaultMaxDistance)
	lonParam, latParam := c.QueryParam("longitude"), c.QueryParam("latitude")
	if lonParam != "" && latParam != "" {
		longitude, lonErr := strconv.ParseFloat(lonParam, 64)
		latitude, latErr := strconv.ParseFloat(latParam, 64)
		if lonErr == nil && latErr == nil {
			loc = models.NewGeoPoint(longitude, latitude, "")
			if raw := c.QueryParam("maxDistance"); raw != "" {
				if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
					maxDistance = parsed
				}
			}
		}
	}

	posts, err := h.postRepository.GetSuggestedPosts(ctx, followingIDs, loc, maxDistance, skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	total, err := h.postRepository.CountSuggestedPosts(ctx, followingIDs, loc, maxDistance)
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

// UpdateLocation sets the caller's position to the supplied point
func (h *GeolocationHandler) UpdateLocation(c echo.Context) error {
	var req models.UpdateLocationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if req.Longitude == nil || req.Latitude == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Longitude and latitude are required")
	}

	point := models.NewGeoPoint(*req.Longitude, *req.Latitude, req.Address)
	user, err := h.userRepository.UpdateLocation(c.Request().Context(), currentUserID(c), point)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respondMessage(c, http.StatusOK, "Location updated successfully", echo.Map{
		"location": user.Location,
	})
}
