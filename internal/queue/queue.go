// Package queue implements the durable, at-least-once reply job queue.
//
// A ReplyJob is an opaque JSON payload to the queue itself; the reply worker
// owns deserialization. Jobs become deliverable no earlier than enqueue time
// plus the requested delay; no ordering is guaranteed beyond that floor.
package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ReplyJob is a deferred unit of work instructing the reply worker to
// generate and persist an automatic comment. It carries the post's own title
// and content — the reply answers the post, not the triggering comment.
type ReplyJob struct {
	ID          string `json:"id"`
	PostID      uint   `json:"post_id"`
	PostTitle   string `json:"post_title"`
	PostContent string `json:"post_content"`
	// Attempt counts deliveries so far; maintained by the queue.
	Attempt int `json:"attempt"`
}

// NewReplyJob builds a job for the given post snapshot with a fresh id.
// The id doubles as the idempotency key stored on the synthetic comment.
func NewReplyJob(postID uint, title, content string) ReplyJob {
	return ReplyJob{
		ID:          uuid.NewString(),
		PostID:      postID,
		PostTitle:   title,
		PostContent: content,
	}
}

func (j ReplyJob) encode() ([]byte, error) {
	return json.Marshal(j)
}

func decodeJob(payload []byte) (ReplyJob, error) {
	var job ReplyJob
	err := json.Unmarshal(payload, &job)
	return job, err
}

// Delivery is a single received job together with its settlement handles.
// Exactly one of Ack or Nack must be called; an unsettled delivery is
// redelivered after its lease expires.
type Delivery struct {
	Job  ReplyJob
	ack  func(ctx context.Context) error
	nack func(ctx context.Context) error
}

// Ack marks the job as done and removes it from the queue.
func (d *Delivery) Ack(ctx context.Context) error {
	return d.ack(ctx)
}

// Nack reports the job failed. The queue reschedules it with backoff, or
// drops it once the delivery cap is reached.
func (d *Delivery) Nack(ctx context.Context) error {
	return d.nack(ctx)
}

// Queue is the work-dispatch boundary between the comment service (producer)
// and the reply worker (consumer).
type Queue interface {
	// Enqueue schedules the job to become deliverable after the delay.
	Enqueue(ctx context.Context, job ReplyJob, delay time.Duration) error

	// Receive returns one due job, or (nil, nil) when none is due yet.
	Receive(ctx context.Context) (*Delivery, error)

	// Depth reports the number of jobs currently scheduled or in flight.
	Depth(ctx context.Context) (int64, error)
}
