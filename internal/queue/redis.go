package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"starhaven/internal/middleware"
	"starhaven/internal/observability"

	"github.com/jpillora/backoff"
	"github.com/redis/go-redis/v9"
)

// receiveScript atomically reclaims jobs whose processing lease expired, then
// pops one due job from the scheduled set into the processing set. Scores are
// unix milliseconds; the caller supplies "now" so a single clock governs
// scheduling and tests can drive it.
var receiveScript = redis.NewScript(`
local scheduled = KEYS[1]
local processing = KEYS[2]
local now = tonumber(ARGV[1])
local lease = tonumber(ARGV[2])

local expired = redis.call('ZRANGEBYSCORE', processing, '-inf', now)
for _, payload in ipairs(expired) do
  redis.call('ZREM', processing, payload)
  redis.call('ZADD', scheduled, now, payload)
end

local due = redis.call('ZRANGEBYSCORE', scheduled, '-inf', now, 'LIMIT', 0, 1)
if #due == 0 then
  return false
end
redis.call('ZREM', scheduled, due[1])
redis.call('ZADD', processing, now + lease, due[1])
return due[1]
`)

// RedisQueue is the Redis-backed Queue implementation. Scheduled jobs live in
// a sorted set scored by ready-time; in-flight jobs move to a second sorted
// set scored by lease expiry, so a worker crash mid-processing results in
// redelivery rather than loss.
type RedisQueue struct {
	rdb           *redis.Client
	scheduledKey  string
	processingKey string
	lease         time.Duration
	maxDeliveries int
	retryBackoff  *backoff.Backoff
	now           func() time.Time
	logger        *slog.Logger
}

// RedisQueueOptions tune delivery behavior. Zero values fall back to defaults.
type RedisQueueOptions struct {
	// Lease is the visibility timeout for an in-flight job.
	Lease time.Duration
	// MaxDeliveries caps deliveries per job; exceeding it drops the job.
	MaxDeliveries int
	// RetryBackoffMin seeds the exponential backoff applied on Nack.
	RetryBackoffMin time.Duration
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// NewRedisQueue creates a queue rooted at the given key prefix.
func NewRedisQueue(rdb *redis.Client, key string, opts RedisQueueOptions) *RedisQueue {
	if opts.Lease <= 0 {
		opts.Lease = 2 * time.Minute
	}
	if opts.MaxDeliveries <= 0 {
		opts.MaxDeliveries = 5
	}
	if opts.RetryBackoffMin <= 0 {
		opts.RetryBackoffMin = 5 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &RedisQueue{
		rdb:           rdb,
		scheduledKey:  key + ":scheduled",
		processingKey: key + ":processing",
		lease:         opts.Lease,
		maxDeliveries: opts.MaxDeliveries,
		retryBackoff: &backoff.Backoff{
			Min:    opts.RetryBackoffMin,
			Max:    10 * time.Minute,
			Factor: 2,
		},
		now:    opts.Now,
		logger: middleware.Logger,
	}
}

var _ Queue = (*RedisQueue)(nil)

// Enqueue implements Queue.
func (q *RedisQueue) Enqueue(ctx context.Context, job ReplyJob, delay time.Duration) error {
	if delay < 0 {
		delay = 0
	}
	payload, err := job.encode()
	if err != nil {
		return fmt.Errorf("encode reply job: %w", err)
	}

	readyAt := q.now().Add(delay)
	if err := q.rdb.ZAdd(ctx, q.scheduledKey, redis.Z{
		Score:  float64(readyAt.UnixMilli()),
		Member: payload,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue reply job: %w", err)
	}

	observability.ReplyJobsEnqueued.Inc()
	q.updateDepthGauge(ctx)
	return nil
}

// Receive implements Queue.
func (q *RedisQueue) Receive(ctx context.Context) (*Delivery, error) {
	res, err := receiveScript.Run(ctx, q.rdb,
		[]string{q.scheduledKey, q.processingKey},
		q.now().UnixMilli(), q.lease.Milliseconds(),
	).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("receive reply job: %w", err)
	}

	raw, ok := res.(string)
	if !ok {
		return nil, fmt.Errorf("receive reply job: unexpected script result %T", res)
	}

	job, err := decodeJob([]byte(raw))
	if err != nil {
		// Poison payload: drop it rather than redeliver forever.
		q.rdb.ZRem(ctx, q.processingKey, raw)
		observability.ReplyJobsDropped.Inc()
		return nil, fmt.Errorf("decode reply job: %w", err)
	}
	job.Attempt++

	return &Delivery{
		Job: job,
		ack: func(ctx context.Context) error {
			err := q.rdb.ZRem(ctx, q.processingKey, raw).Err()
			q.updateDepthGauge(ctx)
			return err
		},
		nack: func(ctx context.Context) error {
			return q.retry(ctx, raw, job)
		},
	}, nil
}

// retry reschedules a failed job with exponential backoff, or drops it once
// the delivery cap is reached.
func (q *RedisQueue) retry(ctx context.Context, raw string, job ReplyJob) error {
	if job.Attempt >= q.maxDeliveries {
		if err := q.rdb.ZRem(ctx, q.processingKey, raw).Err(); err != nil {
			return err
		}
		observability.ReplyJobsDropped.Inc()
		q.updateDepthGauge(ctx)
		q.logger.ErrorContext(ctx, "reply job dropped after delivery cap",
			slog.String("job_id", job.ID),
			slog.Any("post_id", job.PostID),
			slog.Int("attempts", job.Attempt),
		)
		return nil
	}

	payload, err := job.encode()
	if err != nil {
		return fmt.Errorf("encode reply job: %w", err)
	}
	retryAt := q.now().Add(q.retryBackoff.ForAttempt(float64(job.Attempt - 1)))

	pipe := q.rdb.TxPipeline()
	pipe.ZRem(ctx, q.processingKey, raw)
	pipe.ZAdd(ctx, q.scheduledKey, redis.Z{
		Score:  float64(retryAt.UnixMilli()),
		Member: payload,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("reschedule reply job: %w", err)
	}

	return nil
}

// Depth implements Queue.
func (q *RedisQueue) Depth(ctx context.Context) (int64, error) {
	pipe := q.rdb.Pipeline()
	scheduled := pipe.ZCard(ctx, q.scheduledKey)
	processing := pipe.ZCard(ctx, q.processingKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return scheduled.Val() + processing.Val(), nil
}

func (q *RedisQueue) updateDepthGauge(ctx context.Context) {
	if depth, err := q.Depth(ctx); err == nil {
		observability.ReplyQueueDepth.Set(float64(depth))
	}
}
