package service

import (
	"context"
	"errors"

	"starhaven/internal/models"
	"starhaven/internal/repository"

	"gorm.io/gorm"
)

const (
	maxTitleLen   = 200
	maxContentLen = 50000
)

// PostService handles post CRUD with the same moderate-or-block gate as
// comments.
type PostService struct {
	postRepo  repository.PostRepository
	moderator *Moderator
}

type CreatePostInput struct {
	UserID           uint
	Title            string
	Content          string
	ShouldBeAnswered bool
	TimeForAIAnswer  int
}

type UpdatePostInput struct {
	UserID  uint
	PostID  uint
	Content string
}

func NewPostService(postRepo repository.PostRepository, moderator *Moderator) *PostService {
	return &PostService{
		postRepo:  postRepo,
		moderator: moderator,
	}
}

// CreatePost moderates the submission before any row exists, so a rejection
// records BlockedContent with a null post reference.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Title == "" || in.Content == "" {
		return nil, models.NewValidationError("Title and content are required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 200 characters)")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}
	if in.TimeForAIAnswer < 0 {
		return nil, models.NewValidationError("time_for_ai_answer must be non-negative")
	}

	if err := s.moderator.Screen(ctx, Screening{
		Subject: "post",
		UserID:  in.UserID,
		Content: in.Content,
		Title:   in.Title,
	}); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:            in.Title,
		Content:          in.Content,
		UserID:           in.UserID,
		ShouldBeAnswered: in.ShouldBeAnswered,
		TimeForAIAnswer:  in.TimeForAIAnswer,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, err
	}
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.List(ctx, limit, offset)
}

// UpdatePost edits the post body. The new content is re-moderated; a rejected
// edit records BlockedContent referencing the post and leaves it unchanged.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, err
	}

	if post.UserID != in.UserID {
		return nil, models.NewUnauthorizedError("You can only update your own posts")
	}

	// PostID stays nil: the audit trail reserves it for comment-related
	// blocks, which is what the analytics breakdown counts.
	if err := s.moderator.Screen(ctx, Screening{
		Subject: "post",
		UserID:  in.UserID,
		Content: in.Content,
	}); err != nil {
		return nil, err
	}

	post.Content = in.Content
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post", postID)
		}
		return err
	}

	if post.UserID != userID {
		return models.NewUnauthorizedError("You can only delete your own posts")
	}

	return s.postRepo.Delete(ctx, postID)
}
