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

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostOwnedBy(ctx context.Context, id string, owner primitive.ObjectID) (*models.Post, error)
	GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error)
	CountPosts(ctx context.Context) (int64, error)
	GetPostsByUserID(ctx context.Context, userID string, skip, limit int64) ([]models.Post, error)
	CountPostsByUserID(ctx context.Context, userID string) (int64, error)
	GetPostsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error)
	UpdatePost(ctx context.Context, id string, req *models.UpdatePostRequest) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
	AddTag(ctx context.Context, postID string, userID primitive.ObjectID) (*models.Post, error)
	RemoveTag(ctx context.Context, postID string, userID primitive.ObjectID) (*models.Post, error)
	IncrementCommentsCount(ctx context.Context, postID primitive.ObjectID) error
	DecrementCommentsCount(ctx context.Context, postID primitive.ObjectID) error
	SearchPosts(ctx context.Context, query string, skip, limit int64) ([]models.Post, error)
	CountSearchPosts(ctx context.Context, query string) (int64, error)
	GetTrendingPosts(ctx context.Context, skip, limit int64) ([]models.Post, error)
	GetNearbyPosts(ctx context.Context, longitude, latitude, maxDistance float64, limit int64) ([]models.Post, error)
	GetSuggestedPosts(ctx context.Context, followingIDs []primitive.ObjectID, loc *models.GeoPoint, maxDistance float64, skip, limit int64) ([]models.Post, error)
	CountSuggestedPosts(ctx context.Context, followingIDs []primitive.ObjectID, loc *models.GeoPoint, maxDistance float64) (int64, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	if post.Images == nil {
		post.Images = []string{}
	}
	if post.Tags == nil {
		post.Tags = []primitive.ObjectID{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by hex ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrPostNotFound
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetPostOwnedBy retrieves a post only when it belongs to the given owner.
// A post that exists but is owned by someone else reads as not found,
// mirroring the owner-scoped lookup the mutations rely on.
func (r *MongoPostRepository) GetPostOwnedBy(ctx context.Context, id string, owner primitive.ObjectID) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrPostNotFound
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID, "userId": owner}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetAllPosts retrieves posts newest first with pagination
func (r *MongoPostRepository) GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	return r.find(ctx, bson.D{}, options.Find().SetSkip(skip).SetLimit(limit).SetSort(newestFirst))
}

// CountPosts counts all posts
func (r *MongoPostRepository) CountPosts(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.D{})
}

// GetPostsByUserID retrieves a user's posts newest first with pagination
func (r *MongoPostRepository) GetPostsByUserID(ctx context.Context, userID string, skip, limit int64) ([]models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []models.Post{}, nil
	}
	return r.find(ctx, bson.M{"userId": objID}, options.Find().SetSkip(skip).SetLimit(limit).SetSort(newestFirst))
}

// CountPostsByUserID counts a user's posts
func (r *MongoPostRepository) CountPostsByUserID(ctx context.Context, userID string) (int64, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return 0, nil
	}
	return r.collection.CountDocuments(ctx, bson.M{"userId": objID})
}

// GetPostsByIDs retrieves the posts for a set of ids, used for pinned lists
func (r *MongoPostRepository) GetPostsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	if len(ids) == 0 {
		return []models.Post{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

// UpdatePost patches only the fields present in the request and returns the
// updated post
func (r *MongoPostRepository) UpdatePost(ctx context.Context, id string, req *models.UpdatePostRequest) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrPostNotFound
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.Title != "" {
		set["title"] = req.Title
	}
	if req.Description != "" {
		set["description"] = req.Description
	}
	if req.Images != nil {
		set["images"] = req.Images
	}
	if req.IsSolved != nil {
		set["isSolved"] = *req.IsSolved
	}
	if req.Location.Valid() {
		set["location"] = req.Location.ToGeoPoint()
	}

	var post models.Post
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": set}, opts).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// DeletePost deletes a post by hex ID
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrPostNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// AddTag tags a user on a post; adding an already-present tag is a no-op
func (r *MongoPostRepository) AddTag(ctx context.Context, postID string, userID primitive.ObjectID) (*models.Post, error) {
	return r.updateTags(ctx, postID, bson.M{"$addToSet": bson.M{"tags": userID}})
}

// RemoveTag untags a user from a post; removing an absent tag is a no-op
func (r *MongoPostRepository) RemoveTag(ctx context.Context, postID string, userID primitive.ObjectID) (*models.Post, error) {
	return r.updateTags(ctx, postID, bson.M{"$pull": bson.M{"tags": userID}})
}

func (r *MongoPostRepository) updateTags(ctx context.Context, postID string, update bson.M) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, ErrPostNotFound
	}

	var post models.Post
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, update, opts).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// IncrementCommentsCount increments the comments count of a post
func (r *MongoPostRepository) IncrementCommentsCount(ctx context.Context, postID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{"$inc": bson.M{"commentsCount": 1}})
	return err
}

// DecrementCommentsCount decrements the comments count of a post, floored at
// zero: a post already at zero is left untouched
func (r *MongoPostRepository) DecrementCommentsCount(ctx context.Context, postID primitive.ObjectID) error {
	filter := bson.M{"_id": postID, "commentsCount": bson.M{"$gt": 0}}
	_, err := r.collection.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"commentsCount": -1}})
	return err
}

// SearchPosts finds posts matching the query over title and description,
// newest first
func (r *MongoPostRepository) SearchPosts(ctx context.Context, query string, skip, limit int64) ([]models.Post, error) {
	return r.find(ctx, postSearchFilter(query), options.Find().SetSkip(skip).SetLimit(limit).SetSort(newestFirst))
}

// CountSearchPosts counts posts matching the search query
func (r *MongoPostRepository) CountSearchPosts(ctx context.Context, query string) (int64, error) {
	return r.collection.CountDocuments(ctx, postSearchFilter(query))
}

// GetTrendingPosts lists posts ranked by comment count, ties broken by recency
func (r *MongoPostRepository) GetTrendingPosts(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	sort := bson.D{{Key: "commentsCount", Value: -1}, {Key: "createdAt", Value: -1}}
	return r.find(ctx, bson.D{}, options.Find().SetSkip(skip).SetLimit(limit).SetSort(sort))
}

// GetNearbyPosts finds posts within maxDistance meters of the given point,
// newest first
func (r *MongoPostRepository) GetNearbyPosts(ctx context.Context, longitude, latitude, maxDistance float64, limit int64) ([]models.Post, error) {
	filter := bson.M{"location": nearFilter(longitude, latitude, maxDistance)}
	return r.find(ctx, filter, options.Find().SetLimit(limit).SetSort(newestFirst))
}

// GetSuggestedPosts pages through the un-deduplicated union of followed
// users' posts and nearby posts, sorted by recency only
func (r *MongoPostRepository) GetSuggestedPosts(ctx context.Context, followingIDs []primitive.ObjectID, loc *models.GeoPoint, maxDistance float64, skip, limit int64) ([]models.Post, error) {
	filter := suggestedPostsFilter(followingIDs, loc, maxDistance)
	return r.find(ctx, filter, options.Find().SetSkip(skip).SetLimit(limit).SetSort(newestFirst))
}

// CountSuggestedPosts counts the suggested-posts union
func (r *MongoPostRepository) CountSuggestedPosts(ctx context.Context, followingIDs []primitive.ObjectID, loc *models.GeoPoint, maxDistance float64) (int64, error) {
	return r.collection.CountDocuments(ctx, suggestedPostsFilter(followingIDs, loc, maxDistance))
}

func (r *MongoPostRepository) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]models.Post, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}
