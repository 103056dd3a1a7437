package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"starhaven/internal/config"
	"starhaven/internal/database"
	"starhaven/internal/models"
	"starhaven/internal/oracle"
	"starhaven/internal/queue"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// stubOracle lets each test choose the moderation verdict.
type stubOracle struct {
	allowed bool
	err     error
}

func (o *stubOracle) Check(context.Context, string, string) (oracle.Verdict, error) {
	if o.err != nil {
		return oracle.Verdict{}, o.err
	}
	return oracle.Verdict{Allowed: o.allowed}, nil
}

func (o *stubOracle) Generate(context.Context, string, string) (string, error) {
	return "generated reply", nil
}

type testServer struct {
	app   *fiber.App
	srv   *Server
	db    *gorm.DB
	queue *queue.MemoryQueue
}

// newTestServer builds a server over in-memory SQLite with routes registered
// behind a middleware that authenticates every request as the given user.
func newTestServer(t *testing.T, o oracle.Oracle, authedUserID uint) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         database.NewGormLogger(),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{JWTSecret: "test-secret-0123456789abcdef0123", Env: "test"}
	q := queue.NewMemoryQueue(5, 0, nil)

	srv, err := NewServerWithDeps(cfg, db, nil, o, q)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if authedUserID != 0 {
			c.Locals("userID", authedUserID)
		}
		return c.Next()
	})

	api := app.Group("/api")
	api.Post("/auth/signup", srv.Signup)
	api.Post("/auth/login", srv.Login)
	api.Get("/users/me", srv.GetMyProfile)
	api.Get("/users/", srv.GetUsers)
	api.Post("/posts/", srv.CreatePost)
	api.Get("/posts/", srv.GetPosts)
	api.Get("/posts/:id/comments", srv.GetComments)
	api.Post("/posts/:id/comments", srv.CreateComment)
	api.Put("/posts/:id/comments/:commentId", srv.UpdateComment)
	api.Delete("/posts/:id/comments/:commentId", srv.DeleteComment)
	api.Get("/posts/:id", srv.GetPost)
	api.Put("/posts/:id", srv.UpdatePost)
	api.Delete("/posts/:id", srv.DeletePost)
	api.Get("/blocked", srv.GetMyBlockedContents)
	api.Get("/comments-daily-breakdown", srv.GetCommentsDailyBreakdown)

	return &testServer{app: app, srv: srv, db: db, queue: q}
}

func (ts *testServer) seedUser(t *testing.T, name, email string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: email, Password: "hash"}
	require.NoError(t, ts.db.Create(user).Error)
	return user
}

func (ts *testServer) request(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}
