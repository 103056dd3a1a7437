package queue

import (
	"context"
	"sync"
	"time"
)

// MemoryQueue is an in-process Queue with the same delivery semantics as the
// Redis implementation. It exists for tests and for running the server
// without a broker; it is not durable.
type MemoryQueue struct {
	mu            sync.Mutex
	scheduled     []memoryEntry
	inflight      map[string]ReplyJob
	maxDeliveries int
	retryBackoff  time.Duration
	now           func() time.Time
}

type memoryEntry struct {
	job     ReplyJob
	readyAt time.Time
}

// NewMemoryQueue creates an in-memory queue. nowFn may be nil for the real clock.
func NewMemoryQueue(maxDeliveries int, retryBackoff time.Duration, nowFn func() time.Time) *MemoryQueue {
	if maxDeliveries <= 0 {
		maxDeliveries = 5
	}
	if retryBackoff <= 0 {
		retryBackoff = 5 * time.Second
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	return &MemoryQueue{
		inflight:      make(map[string]ReplyJob),
		maxDeliveries: maxDeliveries,
		retryBackoff:  retryBackoff,
		now:           nowFn,
	}
}

var _ Queue = (*MemoryQueue)(nil)

// Enqueue implements Queue.
func (q *MemoryQueue) Enqueue(_ context.Context, job ReplyJob, delay time.Duration) error {
	if delay < 0 {
		delay = 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.scheduled = append(q.scheduled, memoryEntry{job: job, readyAt: q.now().Add(delay)})
	return nil
}

// Receive implements Queue.
func (q *MemoryQueue) Receive(_ context.Context) (*Delivery, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	for i, entry := range q.scheduled {
		if entry.readyAt.After(now) {
			continue
		}
		q.scheduled = append(q.scheduled[:i], q.scheduled[i+1:]...)
		job := entry.job
		job.Attempt++
		q.inflight[job.ID] = job

		return &Delivery{
			Job: job,
			ack: func(context.Context) error {
				q.mu.Lock()
				defer q.mu.Unlock()
				delete(q.inflight, job.ID)
				return nil
			},
			nack: func(context.Context) error {
				q.mu.Lock()
				defer q.mu.Unlock()
				delete(q.inflight, job.ID)
				if job.Attempt >= q.maxDeliveries {
					return nil
				}
				q.scheduled = append(q.scheduled, memoryEntry{
					job:     job,
					readyAt: q.now().Add(q.retryBackoff),
				})
				return nil
			},
		}, nil
	}
	return nil, nil
}

// Depth implements Queue.
func (q *MemoryQueue) Depth(context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.scheduled) + len(q.inflight)), nil
}
