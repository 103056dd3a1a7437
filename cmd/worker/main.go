// Command main is the entry point for the Starhaven reply worker.
package main

import (
	"context"
	"errors"
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
	"starhaven/internal/repository"
	"starhaven/internal/worker"
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
	if redisClient == nil {
		log.Fatal("Redis is required for the reply worker")
	}

	aiUserID, err := bootstrap.EnsureAIUser(context.Background(), db, cfg)
	if err != nil {
		log.Fatalf("Failed to resolve synthetic user: %v", err)
	}

	gemini, err := oracle.NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("Failed to create oracle client: %v", err)
	}

	replyQueue := queue.NewRedisQueue(redisClient, cfg.ReplyQueueKey, queue.RedisQueueOptions{
		MaxDeliveries:   cfg.ReplyJobMaxDeliveries,
		RetryBackoffMin: time.Duration(cfg.ReplyJobRetryBackoffMS) * time.Millisecond,
	})

	w := worker.New(
		replyQueue,
		gemini,
		repository.NewCommentRepository(db),
		repository.NewPostRepository(db),
		aiUserID,
		worker.Options{
			GenTimeout:   cfg.OracleTimeout(),
			PollInterval: cfg.WorkerPollInterval(),
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Worker stopped with error: %v", err)
	}
	log.Println("Worker stopped")
}
