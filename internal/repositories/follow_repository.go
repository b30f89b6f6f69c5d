package repositories

import (
	"context"
	"time"

	"github.com/raiser-connect/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FollowRepository defines the interface for follow graph operations
type FollowRepository interface {
	CreateFollow(ctx context.Context, follow *models.Follow) error
	DeleteFollow(ctx context.Context, follower, following primitive.ObjectID) error
	IsFollowing(ctx context.Context, follower, following primitive.ObjectID) (bool, error)
	GetFollowers(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Follow, error)
	CountFollowers(ctx context.Context, userID primitive.ObjectID) (int64, error)
	GetFollowing(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Follow, error)
	CountFollowing(ctx context.Context, userID primitive.ObjectID) (int64, error)
	GetFollowingIDs(ctx context.Context, follower primitive.ObjectID) ([]primitive.ObjectID, error)
}

// MongoFollowRepository implements FollowRepository for MongoDB
type MongoFollowRepository struct {
	collection *mongo.Collection
}

// NewMongoFollowRepository creates a new MongoFollowRepository
func NewMongoFollowRepository(db *mongo.Database) *MongoFollowRepository {
	return &MongoFollowRepository{collection: db.Collection("follows")}
}

// CreateFollow inserts a follower->following edge
func (r *MongoFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) error {
	follow.ID = primitive.NewObjectID()
	follow.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, follow)
	return err
}

// DeleteFollow removes the edge between two users
func (r *MongoFollowRepository) DeleteFollow(ctx context.Context, follower, following primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"follower": follower, "following": following})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrFollowNotFound
	}
	return nil
}

// IsFollowing reports whether the edge exists
func (r *MongoFollowRepository) IsFollowing(ctx context.Context, follower, following primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"follower": follower, "following": following})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetFollowers lists the edges pointing at a user, newest edge first
func (r *MongoFollowRepository) GetFollowers(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Follow, error) {
	return r.find(ctx, bson.M{"following": userID}, skip, limit)
}

// CountFollowers counts the edges pointing at a user
func (r *MongoFollowRepository) CountFollowers(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"following": userID})
}

// GetFollowing lists the edges originating from a user, newest edge first
func (r *MongoFollowRepository) GetFollowing(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Follow, error) {
	return r.find(ctx, bson.M{"follower": userID}, skip, limit)
}

// CountFollowing counts the edges originating from a user
func (r *MongoFollowRepository) CountFollowing(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"follower": userID})
}

// GetFollowingIDs returns the ids a user follows, used by the suggested feed
func (r *MongoFollowRepository) GetFollowingIDs(ctx context.Context, follower primitive.ObjectID) ([]primitive.ObjectID, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"follower": follower})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var follows []models.Follow
	if err = cursor.All(ctx, &follows); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, len(follows))
	for i, f := range follows {
		ids[i] = f.Following
	}
	return ids, nil
}

func (r *MongoFollowRepository) find(ctx context.Context, filter bson.M, skip, limit int64) ([]models.Follow, error) {
	findOptions := options.Find().
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var follows []models.Follow
	if err = cursor.All(ctx, &follows); err != nil {
		return nil, err
	}
	return follows, nil
}
