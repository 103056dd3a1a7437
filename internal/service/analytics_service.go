package service

import (
	"context"
	"sort"
	"time"

	"starhaven/internal/models"
	"starhaven/internal/repository"
)

// DailyCommentStats is one day of comment activity. Blocked attempts never
// became comments, so the two counts are disjoint.
type DailyCommentStats struct {
	Date            string `json:"date"`
	CreatedComments int64  `json:"created_comments"`
	BlockedComments int64  `json:"blocked_comments"`
}

// AnalyticsService aggregates comment activity for reporting.
type AnalyticsService struct {
	analyticsRepo repository.AnalyticsRepository
}

func NewAnalyticsService(analyticsRepo repository.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{analyticsRepo: analyticsRepo}
}

// CommentsDailyBreakdown returns per-day created and blocked comment counts
// for the inclusive [from, to] range, sorted by date ascending. Days with no
// activity are omitted.
func (s *AnalyticsService) CommentsDailyBreakdown(ctx context.Context, from, to time.Time) ([]DailyCommentStats, error) {
	if to.Before(from) {
		return nil, models.NewValidationError("date_to must not be before date_from")
	}

	created, err := s.analyticsRepo.CommentCountsByDay(ctx, from, to)
	if err != nil {
		return nil, err
	}
	blocked, err := s.analyticsRepo.BlockedCommentCountsByDay(ctx, from, to)
	if err != nil {
		return nil, err
	}

	days := make(map[string]struct{}, len(created)+len(blocked))
	for day := range created {
		days[day] = struct{}{}
	}
	for day := range blocked {
		days[day] = struct{}{}
	}

	stats := make([]DailyCommentStats, 0, len(days))
	for day := range days {
		stats = append(stats, DailyCommentStats{
			Date:            day,
			CreatedComments: created[day],
			BlockedComments: blocked[day],
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Date < stats[j].Date })

	return stats, nil
}
