package bootstrap

import (
	"context"
	"testing"

	"starhaven/internal/config"
	"starhaven/internal/database"
	"starhaven/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestEnsureAIUser_Idempotent(t *testing.T) {
	t.Parallel()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         database.NewGormLogger(),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{AIUserName: "Gemini", AIUserEmail: "gemini@starhaven.local"}

	first, err := EnsureAIUser(context.Background(), db, cfg)
	require.NoError(t, err)
	require.NotZero(t, first)

	second, err := EnsureAIUser(context.Background(), db, cfg)
	require.NoError(t, err)
	assert.Equal(t, first, second, "repeated provisioning must reuse the same account")

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("is_ai = ?", true).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var user models.User
	require.NoError(t, db.First(&user, first).Error)
	assert.True(t, user.IsAI)
	assert.Equal(t, "Gemini", user.Name)
}
