package repositories

import (
	"testing"

	"github.com/raiser-connect/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserSearchFilter(t *testing.T) {
	filter := userSearchFilter("goat")

	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 3)

	fields := make([]string, 0, 3)
	for _, cond := range or {
		m := cond.(bson.M)
		require.Len(t, m, 1)
		for field, value := range m {
			fields = append(fields, field)
			regex, ok := value.(primitive.Regex)
			require.True(t, ok)
			assert.Equal(t, "goat", regex.Pattern)
			assert.Equal(t, "i", regex.Options)
		}
	}
	assert.ElementsMatch(t, []string{"username", "name", "bio"}, fields)
}

func TestPostSearchFilter(t *testing.T) {
	filter := postSearchFilter("harvest")

	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 2)

	fields := make([]string, 0, 2)
	for _, cond := range or {
		for field := range cond.(bson.M) {
			fields = append(fields, field)
		}
	}
	assert.ElementsMatch(t, []string{"title", "description"}, fields)
}

func TestNearFilter(t *testing.T) {
	filter := nearFilter(36.8, -1.29, 5000)

	near, ok := filter["$near"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, float64(5000), near["$maxDistance"])

	geometry, ok := near["$geometry"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, "Point", geometry["type"])
	assert.Equal(t, bson.A{36.8, -1.29}, geometry["coordinates"])
}

func TestSuggestedPostsFilterFollowedOnly(t *testing.T) {
	ids := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}
	filter := suggestedPostsFilter(ids, nil, 10000)

	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 1)

	userCond := or[0].(bson.M)
	in := userCond["userId"].(bson.M)["$in"].([]primitive.ObjectID)
	assert.Equal(t, ids, in)
}

func TestSuggestedPostsFilterWithLocation(t *testing.T) {
	loc := models.NewGeoPoint(36.8, -1.29, "")
	filter := suggestedPostsFilter(nil, loc, 10000)

	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 2)

	// an empty following list still yields a well-formed $in clause
	in := or[0].(bson.M)["userId"].(bson.M)["$in"].([]primitive.ObjectID)
	assert.Empty(t, in)

	locCond := or[1].(bson.M)["location"].(bson.M)
	_, hasNear := locCond["$near"]
	assert.True(t, hasNear)
}

func TestSuggestedPostsFilterIgnoresPartialCoordinates(t *testing.T) {
	loc := &models.GeoPoint{Type: "Point", Coordinates: []float64{36.8}}
	filter := suggestedPostsFilter(nil, loc, 10000)

	or := filter["$or"].(bson.A)
	assert.Len(t, or, 1)
}
