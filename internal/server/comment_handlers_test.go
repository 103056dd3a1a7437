package server

import (
	"context"
	"net/http"
	"testing"

	"starhaven/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateComment_HandlerSchedulesReply(t *testing.T) {
	ts := newTestServer(t, &stubOracle{allowed: true}, 1)
	owner := ts.seedUser(t, "alice", "alice@example.com")

	post := &models.Post{Title: "T", Content: "C", UserID: owner.ID, ShouldBeAnswered: true, TimeForAIAnswer: 10}
	require.NoError(t, ts.db.Create(post).Error)

	resp := ts.request(t, http.MethodPost, "/api/posts/1/comments", map[string]any{"content": "nice post"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var comment models.Comment
	decodeBody(t, resp, &comment)
	assert.Equal(t, "nice post", comment.Content)
	assert.Equal(t, uint(1), comment.PostID)

	depth, err := ts.queue.Depth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), depth, "opted-in post must schedule a reply job")
}

func TestCreateComment_BlockedReturns403(t *testing.T) {
	ts := newTestServer(t, &stubOracle{allowed: false}, 1)
	owner := ts.seedUser(t, "alice", "alice@example.com")

	post := &models.Post{Title: "T", Content: "C", UserID: owner.ID, ShouldBeAnswered: true, TimeForAIAnswer: 10}
	require.NoError(t, ts.db.Create(post).Error)

	resp := ts.request(t, http.MethodPost, "/api/posts/1/comments", map[string]any{"content": "vile"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var errResp models.ErrorResponse
	decodeBody(t, resp, &errResp)
	assert.Equal(t, "Comment was blocked", errResp.Error)

	var count int64
	require.NoError(t, ts.db.Model(&models.Comment{}).Count(&count).Error)
	assert.Zero(t, count)

	depth, err := ts.queue.Depth(context.Background())
	require.NoError(t, err)
	assert.Zero(t, depth, "blocked comment must not schedule a reply job")
}

func TestCreateComment_MissingPost(t *testing.T) {
	ts := newTestServer(t, &stubOracle{allowed: true}, 1)
	ts.seedUser(t, "alice", "alice@example.com")

	resp := ts.request(t, http.MethodPost, "/api/posts/42/comments", map[string]any{"content": "hello"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetComments_Handler(t *testing.T) {
	ts := newTestServer(t, &stubOracle{allowed: true}, 1)
	owner := ts.seedUser(t, "alice", "alice@example.com")

	post := &models.Post{Title: "T", Content: "C", UserID: owner.ID}
	require.NoError(t, ts.db.Create(post).Error)
	require.NoError(t, ts.db.Create(&models.Comment{Content: "one", UserID: owner.ID, PostID: post.ID}).Error)
	require.NoError(t, ts.db.Create(&models.Comment{Content: "two", UserID: owner.ID, PostID: post.ID}).Error)

	resp := ts.request(t, http.MethodGet, "/api/posts/1/comments", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var comments []models.Comment
	decodeBody(t, resp, &comments)
	assert.Len(t, comments, 2)
}

func TestDeleteComment_Handler(t *testing.T) {
	ts := newTestServer(t, &stubOracle{allowed: true}, 1)
	owner := ts.seedUser(t, "alice", "alice@example.com")

	post := &models.Post{Title: "T", Content: "C", UserID: owner.ID}
	require.NoError(t, ts.db.Create(post).Error)
	require.NoError(t, ts.db.Create(&models.Comment{Content: "one", UserID: owner.ID, PostID: post.ID}).Error)

	resp := ts.request(t, http.MethodDelete, "/api/posts/1/comments/1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	var count int64
	require.NoError(t, ts.db.Model(&models.Comment{}).Count(&count).Error)
	assert.Zero(t, count)
}
