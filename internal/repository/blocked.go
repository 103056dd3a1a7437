package repository

import (
	"context"

	"starhaven/internal/models"

	"gorm.io/gorm"
)

// BlockedContentRepository defines interface for the moderation audit trail.
// Rows are append-only; there is no update or delete.
type BlockedContentRepository interface {
	Create(ctx context.Context, blocked *models.BlockedContent) error
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.BlockedContent, error)
	CountByPost(ctx context.Context, postID uint) (int64, error)
}

type blockedContentRepository struct {
	db *gorm.DB
}

// NewBlockedContentRepository creates a new BlockedContentRepository
func NewBlockedContentRepository(db *gorm.DB) BlockedContentRepository {
	return &blockedContentRepository{db: db}
}

func (r *blockedContentRepository) Create(ctx context.Context, blocked *models.BlockedContent) error {
	return r.db.WithContext(ctx).Create(blocked).Error
}

func (r *blockedContentRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.BlockedContent, error) {
	var rows []*models.BlockedContent
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	return rows, err
}

func (r *blockedContentRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BlockedContent{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}
