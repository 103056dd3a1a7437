package server

import (
	"net/http"
	"testing"
	"time"

	"starhaven/internal/models"
	"starhaven/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCommentsDailyBreakdown_Handler(t *testing.T) {
	ts := newTestServer(t, &stubOracle{allowed: true}, 1)
	user := ts.seedUser(t, "alice", "alice@example.com")

	post := &models.Post{Title: "T", Content: "C", UserID: user.ID}
	require.NoError(t, ts.db.Create(post).Error)

	day1 := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 21, 9, 0, 0, 0, time.UTC)
	require.NoError(t, ts.db.Create(&models.Comment{Content: "a", UserID: user.ID, PostID: post.ID, CreatedAt: day1}).Error)
	require.NoError(t, ts.db.Create(&models.Comment{Content: "b", UserID: user.ID, PostID: post.ID, CreatedAt: day1}).Error)
	require.NoError(t, ts.db.Create(&models.BlockedContent{UserID: user.ID, PostID: &post.ID, Content: "x", CreatedAt: day2}).Error)

	resp := ts.request(t, http.MethodGet, "/api/comments-daily-breakdown?date_from=2026-08-20&date_to=2026-08-21", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var stats []service.DailyCommentStats
	decodeBody(t, resp, &stats)
	require.Len(t, stats, 2)
	assert.Equal(t, service.DailyCommentStats{Date: "2026-08-20", CreatedComments: 2}, stats[0])
	assert.Equal(t, service.DailyCommentStats{Date: "2026-08-21", BlockedComments: 1}, stats[1])
}

func TestGetCommentsDailyBreakdown_BadParams(t *testing.T) {
	ts := newTestServer(t, &stubOracle{allowed: true}, 1)

	resp := ts.request(t, http.MethodGet, "/api/comments-daily-breakdown", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.request(t, http.MethodGet, "/api/comments-daily-breakdown?date_from=garbage&date_to=2026-08-21", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.request(t, http.MethodGet, "/api/comments-daily-breakdown?date_from=2026-08-22&date_to=2026-08-21", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetMyBlockedContents_Handler(t *testing.T) {
	ts := newTestServer(t, &stubOracle{allowed: true}, 1)
	user := ts.seedUser(t, "alice", "alice@example.com")
	other := ts.seedUser(t, "bob", "bob@example.com")

	require.NoError(t, ts.db.Create(&models.BlockedContent{UserID: user.ID, Content: "mine"}).Error)
	require.NoError(t, ts.db.Create(&models.BlockedContent{UserID: other.ID, Content: "theirs"}).Error)

	resp := ts.request(t, http.MethodGet, "/api/blocked", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var rows []models.BlockedContent
	decodeBody(t, resp, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, "mine", rows[0].Content)
}
