package repositories

import (
	"github.com/raiser-connect/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Filter composition is kept in pure functions so the query shapes can be
// unit tested without a live database.

// userSearchFilter matches users whose username, name or bio contains the
// query, case-insensitively.
func userSearchFilter(query string) bson.M {
	regex := primitive.Regex{Pattern: query, Options: "i"}
	return bson.M{
		"$or": bson.A{
			bson.M{"username": regex},
			bson.M{"name": regex},
			bson.M{"bio": regex},
		},
	}
}

// postSearchFilter matches posts whose title or description contains the
// query, case-insensitively.
func postSearchFilter(query string) bson.M {
	regex := primitive.Regex{Pattern: query, Options: "i"}
	return bson.M{
		"$or": bson.A{
			bson.M{"title": regex},
			bson.M{"description": regex},
		},
	}
}

// nearFilter matches documents whose location lies within maxDistance meters
// of the given point.
func nearFilter(longitude, latitude, maxDistance float64) bson.M {
	return bson.M{
		"$near": bson.M{
			"$geometry": bson.M{
				"type":        "Point",
				"coordinates": bson.A{longitude, latitude},
			},
			"$maxDistance": maxDistance,
		},
	}
}

// suggestedPostsFilter unions posts authored by followed users with posts
// near the supplied point. The union is not deduplicated and carries no
// relative ranking between the two predicates.
func suggestedPostsFilter(followingIDs []primitive.ObjectID, loc *models.GeoPoint, maxDistance float64) bson.M {
	if followingIDs == nil {
		followingIDs = []primitive.ObjectID{}
	}
	conditions := bson.A{
		bson.M{"userId": bson.M{"$in": followingIDs}},
	}
	if loc != nil && len(loc.Coordinates) == 2 {
		conditions = append(conditions, bson.M{
			"location": nearFilter(loc.Coordinates[0], loc.Coordinates[1], maxDistance),
		})
	}
	return bson.M{"$or": conditions}
}
