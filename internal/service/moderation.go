// Package service contains the request-facing business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"starhaven/internal/middleware"
	"starhaven/internal/models"
	"starhaven/internal/oracle"
	"starhaven/internal/repository"
)

// Moderator gates every submission through the moderation oracle and owns the
// BlockedContent audit trail. Post and comment services share one instance so
// the moderate-then-persist-or-block rule is identical everywhere.
type Moderator struct {
	oracle      oracle.Oracle
	blockedRepo repository.BlockedContentRepository
	timeout     time.Duration
	failOpen    bool
	logger      *slog.Logger
}

// NewModerator creates a Moderator. failOpen controls the oracle-downtime
// policy: true admits content unmoderated, false rejects with
// ORACLE_UNAVAILABLE. Neither writes a BlockedContent row, since nothing was
// actually judged.
func NewModerator(o oracle.Oracle, blockedRepo repository.BlockedContentRepository, timeout time.Duration, failOpen bool) *Moderator {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Moderator{
		oracle:      o,
		blockedRepo: blockedRepo,
		timeout:     timeout,
		failOpen:    failOpen,
		logger:      middleware.Logger,
	}
}

// Screening describes one submission to gate.
type Screening struct {
	// Subject names what is being screened ("post", "comment") for error messages.
	Subject string
	UserID  uint
	Content string
	// Title accompanies brand-new post submissions.
	Title string
	// PostID is set when the subject ties to an existing post (comments and
	// edits) and nil for a brand-new post, which has no row to reference yet.
	PostID *uint
}

// Screen checks the submission and returns nil when it may be persisted.
// On rejection it records exactly one BlockedContent row with the original
// content and returns a MODERATION_BLOCKED error; the caller must not persist
// the subject. Exactly one of the two outcomes happens per request.
func (m *Moderator) Screen(ctx context.Context, s Screening) error {
	checkCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	verdict, err := m.oracle.Check(checkCtx, s.Content, s.Title)
	if err != nil {
		if m.failOpen {
			m.logger.WarnContext(ctx, "moderation oracle unavailable, admitting content unmoderated",
				slog.String("subject", s.Subject),
				slog.Any("user_id", s.UserID),
				slog.String("error", err.Error()),
			)
			return nil
		}
		return models.NewOracleUnavailableError(err)
	}

	if verdict.Allowed {
		return nil
	}

	blocked := &models.BlockedContent{
		UserID:  s.UserID,
		PostID:  s.PostID,
		Content: s.Content,
	}
	if s.Title != "" {
		title := s.Title
		blocked.Title = &title
	}
	if err := m.blockedRepo.Create(ctx, blocked); err != nil {
		return models.NewInternalError(fmt.Errorf("record blocked content: %w", err))
	}

	m.logger.InfoContext(ctx, "content blocked by moderation",
		slog.String("subject", s.Subject),
		slog.Any("user_id", s.UserID),
		slog.Any("harm_categories", verdict.HarmCategories),
	)

	return models.NewModerationBlockedError(fmt.Sprintf("%s was blocked", capitalize(s.Subject)))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
