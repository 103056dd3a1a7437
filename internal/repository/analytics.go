package repository

import (
	"context"
	"time"

	"starhaven/internal/models"

	"gorm.io/gorm"
)

type dailyCount struct {
	Day   string
	Count int64
}

// AnalyticsRepository runs aggregate queries over comments and the
// moderation audit trail.
type AnalyticsRepository interface {
	// CommentCountsByDay groups persisted comments by calendar day within
	// [from, to].
	CommentCountsByDay(ctx context.Context, from, to time.Time) (map[string]int64, error)

	// BlockedCommentCountsByDay groups blocked comment attempts by calendar
	// day within [from, to]. Blocked posts (null post_id) are excluded.
	BlockedCommentCountsByDay(ctx context.Context, from, to time.Time) (map[string]int64, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new AnalyticsRepository
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) CommentCountsByDay(ctx context.Context, from, to time.Time) (map[string]int64, error) {
	var rows []dailyCount
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Select("DATE(created_at) AS day, COUNT(*) AS count").
		Where("created_at >= ? AND created_at <= ?", from, to).
		Group("DATE(created_at)").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return countsToMap(rows), nil
}

func (r *analyticsRepository) BlockedCommentCountsByDay(ctx context.Context, from, to time.Time) (map[string]int64, error) {
	var rows []dailyCount
	err := r.db.WithContext(ctx).
		Model(&models.BlockedContent{}).
		Select("DATE(created_at) AS day, COUNT(*) AS count").
		Where("created_at >= ? AND created_at <= ? AND post_id IS NOT NULL", from, to).
		Group("DATE(created_at)").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return countsToMap(rows), nil
}

func countsToMap(rows []dailyCount) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Day] = row.Count
	}
	return out
}
