package models

import "time"

// BlockedContent is the append-only audit record written whenever moderation
// rejects a submission. PostID is set only for comment-related blocks; post
// submissions and edits leave it nil. The analytics breakdown counts rows
// with a non-nil PostID as blocked comments.
type BlockedContent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	PostID    *uint     `gorm:"index" json:"post_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Title     *string   `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName keeps the audit table clearly named.
func (BlockedContent) TableName() string {
	return "blocked_contents"
}
