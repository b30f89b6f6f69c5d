package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserIsPinned(t *testing.T) {
	pinned := primitive.NewObjectID()
	u := &User{PinnedPosts: []primitive.ObjectID{pinned}}
	assert.True(t, u.IsPinned(pinned))
	assert.False(t, u.IsPinned(primitive.NewObjectID()))
}

func TestUserToSummary(t *testing.T) {
	u := &User{
		Username:       "alice",
		Name:           "Alice",
		Email:          "alice@example.com",
		Password:       "hash",
		FollowersCount: 4,
		FollowingCount: 2,
	}
	s := u.ToSummary()
	assert.Equal(t, "alice", s.Username)
	assert.Equal(t, 4, s.FollowersCount)
	assert.Equal(t, 2, s.FollowingCount)
}

func TestUserJSONHidesPassword(t *testing.T) {
	raw, err := json.Marshal(&User{Username: "alice", Password: "bcrypt-hash"})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	_, present := decoded["password"]
	assert.False(t, present)
}
