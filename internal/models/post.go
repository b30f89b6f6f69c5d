package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a user-authored report stored in MongoDB
type Post struct {
	ID            primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	UserID        primitive.ObjectID   `json:"userId" bson:"userId"`
	Title         string               `json:"title" bson:"title"`
	Description   string               `json:"description" bson:"description"`
	Images        []string             `json:"images" bson:"images"`
	Location      *GeoPoint            `json:"location,omitempty" bson:"location,omitempty"`
	Tags          []primitive.ObjectID `json:"-" bson:"tags"`
	CommentsCount int                  `json:"commentsCount" bson:"commentsCount"`
	IsSolved      bool                 `json:"isSolved" bson:"isSolved"`
	CreatedAt     time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// PostView is a post with its author and tagged users joined in
type PostView struct {
	Post
	Author      UserSummary   `json:"author"`
	TaggedUsers []UserSummary `json:"tags"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Title       string           `json:"title" validate:"required,min=1,max=120"`
	Description string           `json:"description" validate:"required,min=1,max=2000"`
	Images      []string         `json:"images,omitempty" validate:"omitempty,dive,url"`
	Location    *LocationPayload `json:"location,omitempty"`
}

// UpdatePostRequest defines the partial-patch body for updating a post
type UpdatePostRequest struct {
	Title       string           `json:"title,omitempty" validate:"omitempty,min=1,max=120"`
	Description string           `json:"description,omitempty" validate:"omitempty,min=1,max=2000"`
	Images      []string         `json:"images,omitempty" validate:"omitempty,dive,url"`
	Location    *LocationPayload `json:"location,omitempty"`
	IsSolved    *bool            `json:"isSolved,omitempty"`
}

// TagRequest defines the request body for tagging and untagging users on a post
type TagRequest struct {
	UserID string `json:"userId" validate:"required"`
}
