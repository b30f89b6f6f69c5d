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

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	UpdateProfile(ctx context.Context, id string, req *models.UpdateProfileRequest) (*models.User, error)
	UpdateLocation(ctx context.Context, id string, loc *models.GeoPoint) (*models.User, error)
	AddPinnedPost(ctx context.Context, userID string, postID primitive.ObjectID) error
	RemovePinnedPost(ctx context.Context, userID string, postID primitive.ObjectID) error
	IncPostsCount(ctx context.Context, userID string, delta int) error
	IncFollowersCount(ctx context.Context, userID string, delta int) error
	IncFollowingCount(ctx context.Context, userID string, delta int) error
	SearchUsers(ctx context.Context, query string, skip, limit int64) ([]models.User, error)
	CountSearchUsers(ctx context.Context, query string) (int64, error)
	GetPopularUsers(ctx context.Context, skip, limit int64) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)
	GetNearbyUsers(ctx context.Context, longitude, latitude, maxDistance float64, exclude primitive.ObjectID, limit int64) ([]models.User, error)
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// CreateUser creates a new user in MongoDB
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	if user.PinnedPosts == nil {
		user.PinnedPosts = []primitive.ObjectID{}
	}
	_, err := r.collection.InsertOne(ctx, user)
	return err
}

// GetUserByID retrieves a user by hex ID from MongoDB
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	var user models.User
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email from MongoDB
func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username from MongoDB
func (r *MongoUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUsersByIDs retrieves multiple users by ID, used for joining author and
// tag details into list responses
func (r *MongoUserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateProfile patches only the fields present in the request and returns
// the updated user
func (r *MongoUserRepository) UpdateProfile(ctx context.Context, id string, req *models.UpdateProfileRequest) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.Name != "" {
		set["name"] = req.Name
	}
	if req.Bio != "" {
		set["bio"] = req.Bio
	}
	if req.ProfilePicture != "" {
		set["profilePicture"] = req.ProfilePicture
	}
	if req.Location.Valid() {
		set["location"] = req.Location.ToGeoPoint()
	}

	var user models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateLocation sets the user's GeoJSON location and returns the updated user
func (r *MongoUserRepository) UpdateLocation(ctx context.Context, id string, loc *models.GeoPoint) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	update := bson.M{"$set": bson.M{"location": loc, "updatedAt": time.Now()}}
	var user models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, update, opts).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// AddPinnedPost appends a post to the user's pinned list
func (r *MongoUserRepository) AddPinnedPost(ctx context.Context, userID string, postID primitive.ObjectID) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrUserNotFound
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$addToSet": bson.M{"pinnedPosts": postID}})
	return err
}

// RemovePinnedPost removes a post from the user's pinned list; removing an
// absent id is a no-op
func (r *MongoUserRepository) RemovePinnedPost(ctx context.Context, userID string, postID primitive.ObjectID) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrUserNotFound
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$pull": bson.M{"pinnedPosts": postID}})
	return err
}

// IncPostsCount adjusts the denormalized post counter
func (r *MongoUserRepository) IncPostsCount(ctx context.Context, userID string, delta int) error {
	return r.incCounter(ctx, userID, "postsCount", delta)
}

// IncFollowersCount adjusts the denormalized follower counter
func (r *MongoUserRepository) IncFollowersCount(ctx context.Context, userID string, delta int) error {
	return r.incCounter(ctx, userID, "followersCount", delta)
}

// IncFollowingCount adjusts the denormalized following counter
func (r *MongoUserRepository) IncFollowingCount(ctx context.Context, userID string, delta int) error {
	return r.incCounter(ctx, userID, "followingCount", delta)
}

func (r *MongoUserRepository) incCounter(ctx context.Context, userID, field string, delta int) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrUserNotFound
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{field: delta}})
	return err
}

// SearchUsers finds users matching the query over username, name and bio
func (r *MongoUserRepository) SearchUsers(ctx context.Context, query string, skip, limit int64) ([]models.User, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, userSearchFilter(query), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CountSearchUsers counts users matching the search query
func (r *MongoUserRepository) CountSearchUsers(ctx context.Context, query string) (int64, error) {
	return r.collection.CountDocuments(ctx, userSearchFilter(query))
}

// GetPopularUsers lists users ranked by follower count descending
func (r *MongoUserRepository) GetPopularUsers(ctx context.Context, skip, limit int64) ([]models.User, error) {
	findOptions := options.Find().
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.D{{Key: "followersCount", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CountUsers counts all users
func (r *MongoUserRepository) CountUsers(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.D{})
}

// GetNearbyUsers finds users within maxDistance meters of the given point,
// excluding the caller
func (r *MongoUserRepository) GetNearbyUsers(ctx context.Context, longitude, latitude, maxDistance float64, exclude primitive.ObjectID, limit int64) ([]models.User, error) {
	filter := bson.M{
		"location": nearFilter(longitude, latitude, maxDistance),
		"_id":      bson.M{"$ne": exclude},
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
