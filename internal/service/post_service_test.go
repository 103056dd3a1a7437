package service

import (
	"context"
	"testing"
	"time"

	"starhaven/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost_Allowed(t *testing.T) {
	t.Parallel()

	repo := newMemPostRepo()
	svc := NewPostService(repo, NewModerator(&stubOracle{}, &memBlockedRepo{}, time.Second, false))

	post, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID:           1,
		Title:            "Gardening",
		Content:          "How do I prune roses?",
		ShouldBeAnswered: true,
		TimeForAIAnswer:  120,
	})
	require.NoError(t, err)
	assert.Equal(t, "Gardening", post.Title)
	assert.True(t, post.ShouldBeAnswered)
	assert.Equal(t, 120, post.TimeForAIAnswer)
}

func TestCreatePost_BlockedRecordsAuditWithNullPostID(t *testing.T) {
	t.Parallel()

	repo := newMemPostRepo()
	blocked := &memBlockedRepo{}
	svc := NewPostService(repo, NewModerator(blockingOracle("HARM_CATEGORY_HATE_SPEECH"), blocked, time.Second, false))

	_, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: 1, Title: "Bad title", Content: "bad content"})
	assert.Equal(t, models.CodeModerationBlocked, appErrCode(t, err))

	assert.Empty(t, repo.posts, "a rejected post never gets a row")

	require.Len(t, blocked.rows, 1)
	row := blocked.rows[0]
	assert.Nil(t, row.PostID, "no post exists yet to reference")
	assert.Equal(t, "bad content", row.Content)
	require.NotNil(t, row.Title)
	assert.Equal(t, "Bad title", *row.Title)
}

func TestCreatePost_Validation(t *testing.T) {
	t.Parallel()

	svc := NewPostService(newMemPostRepo(), NewModerator(&stubOracle{}, &memBlockedRepo{}, time.Second, false))

	_, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: 1, Title: "", Content: "body"})
	assert.Equal(t, models.CodeValidation, appErrCode(t, err))

	_, err = svc.CreatePost(context.Background(), CreatePostInput{UserID: 1, Title: "t", Content: "body", TimeForAIAnswer: -5})
	assert.Equal(t, models.CodeValidation, appErrCode(t, err))
}

func TestUpdatePost_BlockedEditLeavesPostUnchanged(t *testing.T) {
	t.Parallel()

	repo := newMemPostRepo(&models.Post{ID: 5, Title: "T", Content: "original", UserID: 1})
	blocked := &memBlockedRepo{}
	svc := NewPostService(repo, NewModerator(blockingOracle(), blocked, time.Second, false))

	_, err := svc.UpdatePost(context.Background(), UpdatePostInput{UserID: 1, PostID: 5, Content: "nasty edit"})
	assert.Equal(t, models.CodeModerationBlocked, appErrCode(t, err))

	stored, getErr := repo.GetByID(context.Background(), 5)
	require.NoError(t, getErr)
	assert.Equal(t, "original", stored.Content)

	require.Len(t, blocked.rows, 1)
	assert.Nil(t, blocked.rows[0].PostID, "only comment blocks reference a post")
}

func TestUpdatePost_OwnershipEnforced(t *testing.T) {
	t.Parallel()

	repo := newMemPostRepo(&models.Post{ID: 1, Title: "T", Content: "original", UserID: 1})
	svc := NewPostService(repo, NewModerator(&stubOracle{}, &memBlockedRepo{}, time.Second, false))

	_, err := svc.UpdatePost(context.Background(), UpdatePostInput{UserID: 2, PostID: 1, Content: "hijack"})
	assert.Equal(t, models.CodeUnauthorized, appErrCode(t, err))
}

func TestDeletePost(t *testing.T) {
	t.Parallel()

	repo := newMemPostRepo(&models.Post{ID: 1, Title: "T", Content: "C", UserID: 1})
	svc := NewPostService(repo, NewModerator(&stubOracle{}, &memBlockedRepo{}, time.Second, false))

	assert.Equal(t, models.CodeUnauthorized, appErrCode(t, svc.DeletePost(context.Background(), 2, 1)))
	require.NoError(t, svc.DeletePost(context.Background(), 1, 1))

	_, err := svc.GetPost(context.Background(), 1)
	assert.Equal(t, models.CodeNotFound, appErrCode(t, err))
}

func TestGetPost_NotFound(t *testing.T) {
	t.Parallel()

	svc := NewPostService(newMemPostRepo(), NewModerator(&stubOracle{}, &memBlockedRepo{}, time.Second, false))
	_, err := svc.GetPost(context.Background(), 42)
	assert.Equal(t, models.CodeNotFound, appErrCode(t, err))
}
