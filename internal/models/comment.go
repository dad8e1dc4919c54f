package models

import "time"

// Comment represents a comment on a post or a reply to another comment.
// Exactly one of PostID and ParentCommentID is set.
type Comment struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	UserID          uint      `json:"user_id" gorm:"index"`
	PostID          *uint     `json:"post_id,omitempty" gorm:"index"`
	ParentCommentID *uint     `json:"parent_comment_id,omitempty" gorm:"index"`
	Body            string    `json:"body"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	User    *User         `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Replies []Comment     `json:"replies,omitempty" gorm:"foreignKey:ParentCommentID;constraint:OnDelete:CASCADE"`
	Likes   []CommentLike `json:"likes,omitempty" gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE"`
}

// CreateCommentRequest defines the request body for comments and replies
type CreateCommentRequest struct {
	Data string `json:"data" validate:"required,min=1,max=500"`
}
