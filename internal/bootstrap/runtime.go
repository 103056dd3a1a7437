// Package bootstrap wires shared runtime dependencies for the server and
// worker commands.
package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"starhaven/internal/cache"
	"starhaven/internal/config"
	"starhaven/internal/database"
	"starhaven/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// InitRuntime connects to the database and Redis, runs schema migration, and
// provisions the reserved synthetic user. Redis may come back nil when the
// broker is unreachable; callers decide whether that is fatal.
func InitRuntime(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		return nil, nil, err
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if _, err := EnsureAIUser(context.Background(), db, cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to provision synthetic user: %w", err)
	}

	return db, r, nil
}

// EnsureAIUser creates the reserved author of automatic replies if it does
// not exist yet and returns its id. The account gets a random password hash
// so it can never be logged into.
func EnsureAIUser(ctx context.Context, db *gorm.DB, cfg *config.Config) (uint, error) {
	name := strings.TrimSpace(cfg.AIUserName)
	if name == "" {
		name = "Gemini"
	}
	email := strings.TrimSpace(strings.ToLower(cfg.AIUserEmail))
	if email == "" {
		email = "gemini@starhaven.local"
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash synthetic user password: %w", err)
	}

	var id uint
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		findErr := tx.Where("is_ai = ?", true).First(&user).Error
		if findErr == nil {
			id = user.ID
			return nil
		}
		if findErr != gorm.ErrRecordNotFound {
			return findErr
		}

		user = models.User{
			Name:     name,
			Email:    email,
			Password: string(hashedPassword),
			IsAI:     true,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		id = user.ID
		return nil
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}
