package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a post in the Starhaven application.
// TimeForAIAnswer is only meaningful when ShouldBeAnswered is set: it is the
// delay in seconds between an accepted comment and the automatic reply.
type Post struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	Title            string `gorm:"not null" json:"title"`
	Content          string `gorm:"type:text;not null" json:"content"`
	UserID           uint   `gorm:"not null;index" json:"user_id"`
	User             User   `gorm:"foreignKey:UserID" json:"user"`
	ShouldBeAnswered bool   `gorm:"not null;default:false" json:"should_be_answered"`
	TimeForAIAnswer  int    `gorm:"not null;default:0" json:"time_for_ai_answer"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int            `gorm:"->" json:"comments_count"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
