package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on a post. Comments written by the reply
// worker carry the originating job id in ReplyJobID; the unique index makes a
// redelivered job's second insert fail instead of duplicating the reply.
type Comment struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Content    string         `gorm:"type:text;not null" json:"content"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	PostID     uint           `gorm:"not null;index" json:"post_id"`
	User       User           `gorm:"foreignKey:UserID" json:"user"`
	ReplyJobID *string        `gorm:"uniqueIndex" json:"-"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
