package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"starhaven/internal/middleware"
	"starhaven/internal/models"
	"starhaven/internal/queue"
	"starhaven/internal/repository"

	"gorm.io/gorm"
)

const maxCommentLen = 10000

// CommentService orchestrates comment creation: validate, moderate, persist,
// and conditionally schedule the automatic reply.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	moderator   *Moderator
	replyQueue  queue.Queue
	logger      *slog.Logger
}

type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	moderator *Moderator,
	replyQueue queue.Queue,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		moderator:   moderator,
		replyQueue:  replyQueue,
		logger:      middleware.Logger,
	}
}

// CreateComment runs the full pipeline. Exactly one of two outcomes happens:
// the comment row is persisted (and a reply job is scheduled when the post
// opted in), or a BlockedContent row is recorded and a MODERATION_BLOCKED
// error returned. Enqueue failure after the comment commit is logged, never
// surfaced — the caller's comment stays posted regardless of the reply
// pipeline's health.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, err
	}

	if err := s.moderator.Screen(ctx, Screening{
		Subject: "comment",
		UserID:  in.UserID,
		Content: in.Content,
		PostID:  &post.ID,
	}); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content: in.Content,
		UserID:  in.UserID,
		PostID:  in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if post.ShouldBeAnswered {
		// The job answers the post, not the comment: it carries the post's
		// own title and content.
		job := queue.NewReplyJob(post.ID, post.Title, post.Content)
		delay := time.Duration(post.TimeForAIAnswer) * time.Second
		if err := s.replyQueue.Enqueue(ctx, job, delay); err != nil {
			s.logger.ErrorContext(ctx, "failed to enqueue reply job",
				slog.Any("post_id", post.ID),
				slog.String("job_id", job.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID)
}

// UpdateComment re-moderates the new content before persisting it. A rejected
// edit leaves the stored comment untouched and records BlockedContent against
// the comment's post.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", in.CommentID)
		}
		return nil, err
	}

	if comment.UserID != in.UserID {
		return nil, models.NewUnauthorizedError("You can only update your own comments")
	}

	if err := s.moderator.Screen(ctx, Screening{
		Subject: "comment",
		UserID:  in.UserID,
		Content: in.Content,
		PostID:  &comment.PostID,
	}); err != nil {
		return nil, err
	}

	comment.Content = in.Content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", in.CommentID)
		}
		return nil, err
	}

	if comment.UserID != in.UserID {
		return nil, models.NewUnauthorizedError("You can only delete your own comments")
	}

	if err := s.commentRepo.Delete(ctx, in.CommentID); err != nil {
		return nil, err
	}

	return comment, nil
}
