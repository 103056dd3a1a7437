package server

import (
	"net/http"
	"testing"

	"starhaven/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost_Handler(t *testing.T) {
	ts := newTestServer(t, &stubOracle{allowed: true}, 1)
	ts.seedUser(t, "alice", "alice@example.com")

	resp := ts.request(t, http.MethodPost, "/api/posts/", map[string]any{
		"title":              "Gardening",
		"content":            "How do I prune roses?",
		"should_be_answered": true,
		"time_for_ai_answer": 60,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var post models.Post
	decodeBody(t, resp, &post)
	assert.Equal(t, "Gardening", post.Title)
	assert.True(t, post.ShouldBeAnswered)
	assert.Equal(t, "alice", post.User.Name)
}

func TestCreatePost_MissingFields(t *testing.T) {
	ts := newTestServer(t, &stubOracle{allowed: true}, 1)
	ts.seedUser(t, "alice", "alice@example.com")

	resp := ts.request(t, http.MethodPost, "/api/posts/", map[string]any{"title": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreatePost_BlockedReturns403(t *testing.T) {
	ts := newTestServer(t, &stubOracle{allowed: false}, 1)
	ts.seedUser(t, "alice", "alice@example.com")

	resp := ts.request(t, http.MethodPost, "/api/posts/", map[string]any{
		"title":   "Bad",
		"content": "bad content",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var errResp models.ErrorResponse
	decodeBody(t, resp, &errResp)
	assert.Equal(t, "Post was blocked", errResp.Error)

	var count int64
	require.NoError(t, ts.db.Model(&models.Post{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, ts.db.Model(&models.BlockedContent{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreatePost_OracleDownReturns503(t *testing.T) {
	ts := newTestServer(t, &stubOracle{err: assert.AnError}, 1)
	ts.seedUser(t, "alice", "alice@example.com")

	resp := ts.request(t, http.MethodPost, "/api/posts/", map[string]any{
		"title":   "T",
		"content": "C",
	})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestGetPost_NotFoundHandler(t *testing.T) {
	ts := newTestServer(t, &stubOracle{allowed: true}, 1)

	resp := ts.request(t, http.MethodGet, "/api/posts/99", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = ts.request(t, http.MethodGet, "/api/posts/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdatePost_ForbiddenForNonOwner(t *testing.T) {
	ts := newTestServer(t, &stubOracle{allowed: true}, 2)
	owner := ts.seedUser(t, "alice", "alice@example.com")
	ts.seedUser(t, "bob", "bob@example.com")

	post := &models.Post{Title: "T", Content: "C", UserID: owner.ID}
	require.NoError(t, ts.db.Create(post).Error)

	resp := ts.request(t, http.MethodPut, "/api/posts/1", map[string]any{"content": "hijack"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDeletePost_Handler(t *testing.T) {
	ts := newTestServer(t, &stubOracle{allowed: true}, 1)
	owner := ts.seedUser(t, "alice", "alice@example.com")

	post := &models.Post{Title: "T", Content: "C", UserID: owner.ID}
	require.NoError(t, ts.db.Create(post).Error)

	resp := ts.request(t, http.MethodDelete, "/api/posts/1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = ts.request(t, http.MethodGet, "/api/posts/1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
