package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Follow represents a directed follower->following edge between two users
type Follow struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Follower  primitive.ObjectID `json:"follower" bson:"follower"`
	Following primitive.ObjectID `json:"following" bson:"following"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// FollowRequest defines the request body for follow and unfollow
type FollowRequest struct {
	UserID string `json:"userId" validate:"required"`
}
