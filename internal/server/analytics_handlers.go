package server

import (
	"time"

	"starhaven/internal/models"

	"github.com/gofiber/fiber/v2"
)

const dateLayout = "2006-01-02"

// GetCommentsDailyBreakdown handles GET /api/comments-daily-breakdown.
// date_from and date_to are inclusive calendar dates in YYYY-MM-DD format.
func (s *Server) GetCommentsDailyBreakdown(c *fiber.Ctx) error {
	fromStr := c.Query("date_from")
	toStr := c.Query("date_to")
	if fromStr == "" || toStr == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("date_from and date_to are required"))
	}

	from, err := time.Parse(dateLayout, fromStr)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("date_from must be in YYYY-MM-DD format"))
	}
	to, err := time.Parse(dateLayout, toStr)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("date_to must be in YYYY-MM-DD format"))
	}

	// Extend date_to through end of day so the range is inclusive.
	to = to.Add(24*time.Hour - time.Nanosecond)

	stats, err := s.analyticsService.CommentsDailyBreakdown(c.Context(), from, to)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(stats)
}
