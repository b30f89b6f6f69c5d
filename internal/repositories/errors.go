package repositories

import "errors"

// Not-found sentinels returned when a referenced id has no live record.
// An unparseable hex id refers to nothing and is reported the same way.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrFollowNotFound  = errors.New("follow relationship not found")
)
