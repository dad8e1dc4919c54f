package models

import "time"

// Notification types
const (
	NotificationTypePost    = "POST"
	NotificationTypeComment = "COMMENT"
)

// Notification represents an entry in a user's notification feed. Read
// state is tracked by the recipient's aggregate HasNotification flag, not
// per row.
type Notification struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	RecipientID  uint      `json:"recipient_id" gorm:"index"`
	ActorID      *uint     `json:"actor_id,omitempty" gorm:"index"`
	Type         string    `json:"type" gorm:"size:20;index"` // POST, COMMENT
	Message      string    `json:"message"`
	RefPostID    *uint     `json:"ref_post_id,omitempty"`
	RefCommentID *uint     `json:"ref_comment_id,omitempty"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`

	Recipient  *User    `json:"-" gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE"`
	Actor      *User    `json:"actor,omitempty" gorm:"foreignKey:ActorID;constraint:OnDelete:CASCADE"`
	RefPost    *Post    `json:"ref_post,omitempty" gorm:"foreignKey:RefPostID;constraint:OnDelete:CASCADE"`
	RefComment *Comment `json:"ref_comment,omitempty" gorm:"foreignKey:RefCommentID;constraint:OnDelete:CASCADE"`
}
