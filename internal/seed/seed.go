// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"starhaven/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeder creates demo users, posts, and comments.
type Seeder struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll deletes all seedable rows. Order matters for foreign keys.
func (s *Seeder) ClearAll() error {
	for _, model := range []any{
		&models.Comment{},
		&models.BlockedContent{},
		&models.Post{},
	} {
		if err := s.db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
	}
	// Keep the reserved synthetic user.
	if err := s.db.Unscoped().Where("is_ai = ?", false).Delete(&models.User{}).Error; err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	log.Println("Cleared existing seed data")
	return nil
}

// SeedUsers creates n users with the shared demo password "Seed!Password1".
func (s *Seeder) SeedUsers(n int) ([]*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("Seed!Password1"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user := &models.User{
			Name:     gofakeit.Name(),
			Email:    fmt.Sprintf("%d.%s", i, gofakeit.Email()),
			Password: string(hashed),
		}
		if err := s.db.Create(user).Error; err != nil {
			return nil, fmt.Errorf("seed user: %w", err)
		}
		users = append(users, user)
	}

	log.Printf("Seeded %d users", len(users))
	return users, nil
}

// SeedPosts creates n posts spread over the past 30 days. Roughly a third
// opt into automatic replies with a short random delay.
func (s *Seeder) SeedPosts(users []*models.User, n int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to own posts")
	}

	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		owner := users[s.rand.Intn(len(users))]
		post := &models.Post{
			Title:     gofakeit.Sentence(5),
			Content:   gofakeit.Paragraph(1, 3, 5, "\n"),
			UserID:    owner.ID,
			CreatedAt: time.Now().Add(-time.Duration(s.rand.Intn(30*24)) * time.Hour),
		}
		if s.rand.Intn(3) == 0 {
			post.ShouldBeAnswered = true
			post.TimeForAIAnswer = 30 + s.rand.Intn(270)
		}
		if err := s.db.Create(post).Error; err != nil {
			return nil, fmt.Errorf("seed post: %w", err)
		}
		posts = append(posts, post)
	}

	log.Printf("Seeded %d posts", len(posts))
	return posts, nil
}

// SeedComments creates n comments on random posts by random users.
func (s *Seeder) SeedComments(users []*models.User, posts []*models.Post, n int) error {
	if len(users) == 0 || len(posts) == 0 {
		return fmt.Errorf("no users or posts to comment on")
	}

	for i := 0; i < n; i++ {
		post := posts[s.rand.Intn(len(posts))]
		comment := &models.Comment{
			Content:   gofakeit.Sentence(10),
			UserID:    users[s.rand.Intn(len(users))].ID,
			PostID:    post.ID,
			CreatedAt: post.CreatedAt.Add(time.Duration(1+s.rand.Intn(72)) * time.Hour),
		}
		if err := s.db.Create(comment).Error; err != nil {
			return fmt.Errorf("seed comment: %w", err)
		}
	}

	log.Printf("Seeded %d comments", n)
	return nil
}
