package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VoiceNote is an audio annotation attached to a comment
type VoiceNote struct {
	URL      string  `json:"url" bson:"url"`
	PublicID string  `json:"publicId" bson:"publicId"`
	Duration float64 `json:"duration" bson:"duration"` // seconds
}

// Comment represents a text or voice-note annotation on a post.
// Exactly one of Text and VoiceNote is populated; IsVoiceNote says which.
type Comment struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	PostID      primitive.ObjectID `json:"postId" bson:"postId"`
	UserID      primitive.ObjectID `json:"userId" bson:"userId"`
	Text        string             `json:"text,omitempty" bson:"text,omitempty"`
	VoiceNote   *VoiceNote         `json:"voiceNote,omitempty" bson:"voiceNote,omitempty"`
	IsVoiceNote bool               `json:"isVoiceNote" bson:"isVoiceNote"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CommentView is a comment with its author joined in
type CommentView struct {
	Comment
	Author UserSummary `json:"author"`
}

// CommentRequest defines the body for creating or updating a comment.
// At least one of Text and VoiceNote must be supplied.
type CommentRequest struct {
	Text      string     `json:"text,omitempty" validate:"omitempty,min=1,max=1000"`
	VoiceNote *VoiceNote `json:"voiceNote,omitempty"`
}

// HasContent reports whether the request carries any comment payload
func (r *CommentRequest) HasContent() bool {
	return r.Text != "" || r.VoiceNote != nil
}
