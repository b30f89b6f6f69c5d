package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account document stored in MongoDB
type User struct {
	ID             primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Username       string               `json:"username" bson:"username"`
	Email          string               `json:"email" bson:"email"`
	Password       string               `json:"-" bson:"password"` // bcrypt hash, never serialized
	Name           string               `json:"name" bson:"name"`
	Bio            string               `json:"bio" bson:"bio"`
	ProfilePicture string               `json:"profilePicture" bson:"profilePicture"`
	Location       *GeoPoint            `json:"location,omitempty" bson:"location,omitempty"`
	FollowersCount int                  `json:"followersCount" bson:"followersCount"`
	FollowingCount int                  `json:"followingCount" bson:"followingCount"`
	PostsCount     int                  `json:"postsCount" bson:"postsCount"`
	PinnedPosts    []primitive.ObjectID `json:"pinnedPosts" bson:"pinnedPosts"`
	IsVerified     bool                 `json:"isVerified" bson:"isVerified"`
	CreatedAt      time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// MaxPinnedPosts caps the pinned list per user
const MaxPinnedPosts = 5

// UserSummary is the public projection joined into posts, comments and follow lists
type UserSummary struct {
	ID             primitive.ObjectID `json:"id" bson:"_id"`
	Username       string             `json:"username" bson:"username"`
	Name           string             `json:"name" bson:"name"`
	ProfilePicture string             `json:"profilePicture" bson:"profilePicture"`
	FollowersCount int                `json:"followersCount" bson:"followersCount"`
	FollowingCount int                `json:"followingCount" bson:"followingCount"`
}

// ToSummary converts a full user document into its public projection
func (u *User) ToSummary() UserSummary {
	return UserSummary{
		ID:             u.ID,
		Username:       u.Username,
		Name:           u.Name,
		ProfilePicture: u.ProfilePicture,
		FollowersCount: u.FollowersCount,
		FollowingCount: u.FollowingCount,
	}
}

// IsPinned reports whether the given post is already in the user's pinned list
func (u *User) IsPinned(postID primitive.ObjectID) bool {
	for _, id := range u.PinnedPosts {
		if id == postID {
			return true
		}
	}
	return false
}

// RegisterRequest defines the request body for account registration
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=1,max=50"`
}

// LoginRequest defines the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest defines the partial-patch body for profile updates
type UpdateProfileRequest struct {
	Name           string           `json:"name,omitempty" validate:"omitempty,min=1,max=50"`
	Bio            string           `json:"bio,omitempty" validate:"omitempty,max=300"`
	ProfilePicture string           `json:"profilePicture,omitempty" validate:"omitempty,url"`
	Location       *LocationPayload `json:"location,omitempty"`
}

// PinRequest defines the request body for pinning and unpinning posts
type PinRequest struct {
	PostID string `json:"postId" validate:"required"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
