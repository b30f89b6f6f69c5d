package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/raiser-connect/backend/internal/models"
	"github.com/raiser-connect/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transactor runs a function inside a single document-store transaction so
// that an entity write and its denormalized counter update commit together.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

const (
	defaultPageLimit    = 10
	combinedSearchLimit = 5
	nearbyResultLimit   = 20
	defaultMaxDistance  = 10000 // meters
)

// respondData wraps a successful payload in the uniform response envelope
func respondData(c echo.Context, status int, data echo.Map) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

// respondMessage wraps a successful mutation in the uniform response envelope
func respondMessage(c echo.Context, status int, message string, data echo.Map) error {
	body := echo.Map{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	return c.JSON(status, body)
}

// parsePagination reads the shared page/limit query contract: page is
// 1-based defaulting to 1, limit defaults per endpoint.
func parsePagination(c echo.Context, defaultLimit int) (page, limit int, skip int64) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	skip = int64((page - 1) * limit)
	return page, limit, skip
}

// currentUserID returns the caller identity the protect middleware resolved
func currentUserID(c echo.Context) string {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok {
		return ""
	}
	return claims.UserID
}

// currentUserObjectID returns the caller identity as an ObjectID
func currentUserObjectID(c echo.Context) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(currentUserID(c))
	if err != nil {
		return primitive.NilObjectID, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return id, nil
}

// isOwner is the single authorization predicate for owner-only mutations
func isOwner(callerID string, owner primitive.ObjectID) bool {
	return callerID != "" && owner.Hex() == callerID
}

// enrichPosts joins author and tagged-user summaries into a page of posts
// with a single batched user lookup
func enrichPosts(ctx context.Context, userRepo repositories.UserRepository, posts []models.Post) ([]models.PostView, error) {
	idSet := make(map[primitive.ObjectID]bool)
	for _, p := range posts {
		idSet[p.UserID] = true
		for _, tag := range p.Tags {
			idSet[tag] = true
		}
	}

	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	users, err := userRepo.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	userMap := make(map[primitive.ObjectID]models.UserSummary, len(users))
	for i := range users {
		userMap[users[i].ID] = users[i].ToSummary()
	}

	views := make([]models.PostView, len(posts))
	for i, p := range posts {
		tagged := make([]models.UserSummary, 0, len(p.Tags))
		for _, tag := range p.Tags {
			if summary, ok := userMap[tag]; ok {
				tagged = append(tagged, summary)
			}
		}
		views[i] = models.PostView{
			Post:        p,
			Author:      userMap[p.UserID],
			TaggedUsers: tagged,
		}
	}
	return views, nil
}

// enrichComments joins author summaries into a page of comments
func enrichComments(ctx context.Context, userRepo repositories.UserRepository, comments []models.Comment) ([]models.CommentView, error) {
	idSet := make(map[primitive.ObjectID]bool)
	for _, cm := range comments {
		idSet[cm.UserID] = true
	}

	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	users, err := userRepo.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	userMap := make(map[primitive.ObjectID]models.UserSummary, len(users))
	for i := range users {
		userMap[users[i].ID] = users[i].ToSummary()
	}

	views := make([]models.CommentView, len(comments))
	for i, cm := range comments {
		views[i] = models.CommentView{Comment: cm, Author: userMap[cm.UserID]}
	}
	return views, nil
}

// userSummaries converts a list of users into their public projections
func userSummaries(users []models.User) []models.UserSummary {
	summaries := make([]models.UserSummary, len(users))
	for i := range users {
		summaries[i] = users[i].ToSummary()
	}
	return summaries
}
