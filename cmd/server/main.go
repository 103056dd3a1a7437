// Command main is the entry point for the Starhaven API server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"starhaven/internal/bootstrap"
	"starhaven/internal/config"
	"starhaven/internal/middleware"
	"starhaven/internal/oracle"
	"starhaven/internal/queue"
	"starhaven/internal/server"

	"github.com/gofiber/fiber/v2"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.InitMiddleware(cfg)

	db, redisClient, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	gemini, err := oracle.NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("Failed to create oracle client: %v", err)
	}

	var replyQueue queue.Queue
	if redisClient != nil {
		replyQueue = queue.NewRedisQueue(redisClient, cfg.ReplyQueueKey, queue.RedisQueueOptions{
			MaxDeliveries:   cfg.ReplyJobMaxDeliveries,
			RetryBackoffMin: time.Duration(cfg.ReplyJobRetryBackoffMS) * time.Millisecond,
		})
	} else {
		log.Println("Redis unavailable, reply jobs will use the in-process queue")
		replyQueue = queue.NewMemoryQueue(cfg.ReplyJobMaxDeliveries, time.Duration(cfg.ReplyJobRetryBackoffMS)*time.Millisecond, nil)
	}

	srv, err := server.NewServerWithDeps(cfg, db, redisClient, gemini, replyQueue)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:   "Starhaven API",
		BodyLimit: 1 * 1024 * 1024,
	})

	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Server starting on port %s...", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
