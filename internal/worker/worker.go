// Package worker runs the reply consumer: it drains the job queue, asks the
// oracle for an answer to the post, and persists the answer as a comment
// authored by the reserved synthetic user.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"starhaven/internal/middleware"
	"starhaven/internal/models"
	"starhaven/internal/observability"
	"starhaven/internal/oracle"
	"starhaven/internal/queue"
	"starhaven/internal/repository"

	"gorm.io/gorm"
)

// Worker consumes reply jobs. Safe to run multiple instances against the
// same queue: the lease protocol hands each job to one consumer at a time
// and the job-id unique index makes duplicate deliveries harmless.
type Worker struct {
	queue        queue.Queue
	oracle       oracle.Oracle
	commentRepo  repository.CommentRepository
	postRepo     repository.PostRepository
	aiUserID     uint
	genTimeout   time.Duration
	pollInterval time.Duration
	logger       *slog.Logger
}

type Options struct {
	// GenTimeout bounds one generation call. Defaults to 30s.
	GenTimeout time.Duration
	// PollInterval is the idle sleep between empty Receive calls.
	// Defaults to 500ms.
	PollInterval time.Duration
}

func New(q queue.Queue, o oracle.Oracle, commentRepo repository.CommentRepository, postRepo repository.PostRepository, aiUserID uint, opts Options) *Worker {
	if opts.GenTimeout <= 0 {
		opts.GenTimeout = 30 * time.Second
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	return &Worker{
		queue:        q,
		oracle:       o,
		commentRepo:  commentRepo,
		postRepo:     postRepo,
		aiUserID:     aiUserID,
		genTimeout:   opts.GenTimeout,
		pollInterval: opts.PollInterval,
		logger:       middleware.Logger,
	}
}

// Run polls the queue until the context is cancelled. Queue errors are
// logged and retried after the poll interval; they never stop the loop.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "reply worker started",
		slog.Any("ai_user_id", w.aiUserID),
		slog.Duration("poll_interval", w.pollInterval),
	)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		delivery, err := w.queue.Receive(ctx)
		if err != nil {
			w.logger.ErrorContext(ctx, "failed to receive reply job", slog.String("error", err.Error()))
		} else if delivery != nil {
			w.Process(ctx, delivery)
			if depth, err := w.queue.Depth(ctx); err == nil {
				observability.ReplyQueueDepth.Set(float64(depth))
			}
			continue
		}

		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "reply worker stopping")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Process handles one delivery through to settlement. Permanent conditions
// (post deleted, reply already persisted) ack and drop; transient failures
// nack for redelivery.
func (w *Worker) Process(ctx context.Context, delivery *queue.Delivery) {
	job := delivery.Job
	log := w.logger.With(
		slog.String("job_id", job.ID),
		slog.Any("post_id", job.PostID),
		slog.Int("attempt", job.Attempt),
	)

	exists, err := w.commentRepo.ExistsByReplyJobID(ctx, job.ID)
	if err != nil {
		log.ErrorContext(ctx, "failed to check for existing reply", slog.String("error", err.Error()))
		w.settle(ctx, delivery, false, "nacked", log)
		return
	}
	if exists {
		log.InfoContext(ctx, "reply already persisted, dropping redelivery")
		w.settle(ctx, delivery, true, "duplicate", log)
		return
	}

	if _, err := w.postRepo.GetByID(ctx, job.PostID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.InfoContext(ctx, "post deleted before reply was due, dropping job")
			w.settle(ctx, delivery, true, "post_deleted", log)
			return
		}
		log.ErrorContext(ctx, "failed to load post", slog.String("error", err.Error()))
		w.settle(ctx, delivery, false, "nacked", log)
		return
	}

	genCtx, cancel := context.WithTimeout(ctx, w.genTimeout)
	start := time.Now()
	reply, err := w.oracle.Generate(genCtx, job.PostContent, job.PostTitle)
	cancel()
	observability.ObserveOracleCall("generate", start)
	if err != nil {
		log.WarnContext(ctx, "reply generation failed", slog.String("error", err.Error()))
		w.settle(ctx, delivery, false, "nacked", log)
		return
	}

	jobID := job.ID
	comment := &models.Comment{
		Content:    reply,
		UserID:     w.aiUserID,
		PostID:     job.PostID,
		ReplyJobID: &jobID,
	}
	if err := w.commentRepo.Create(ctx, comment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent delivery won the race; its comment stands.
			log.InfoContext(ctx, "reply persisted by concurrent delivery")
			w.settle(ctx, delivery, true, "duplicate", log)
			return
		}
		log.ErrorContext(ctx, "failed to persist reply", slog.String("error", err.Error()))
		w.settle(ctx, delivery, false, "nacked", log)
		return
	}

	log.InfoContext(ctx, "reply posted", slog.Any("comment_id", comment.ID))
	w.settle(ctx, delivery, true, "replied", log)
}

func (w *Worker) settle(ctx context.Context, delivery *queue.Delivery, ack bool, result string, log *slog.Logger) {
	var err error
	if ack {
		err = delivery.Ack(ctx)
	} else {
		err = delivery.Nack(ctx)
	}
	if err != nil {
		// The lease will expire and the job will be redelivered; the
		// job-id index keeps the redelivery from duplicating the reply.
		log.ErrorContext(ctx, "failed to settle delivery", slog.String("error", err.Error()))
		return
	}
	observability.ReplyJobsDelivered.WithLabelValues(result).Inc()
}
