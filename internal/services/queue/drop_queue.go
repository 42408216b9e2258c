package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/redvale-rp/deaddrop/pkg/queue"
)

const jobsKey = "drop-jobs"

// popDueScript claims every job whose due time has passed. Claiming
// removes the member, so two workers polling concurrently never see
// the same job.
var popDueScript = redis.NewScript(`
local due = redis.call("ZRANGEBYSCORE", KEYS[1], "-inf", ARGV[1], "LIMIT", 0, ARGV[2])
if #due > 0 then
  redis.call("ZREM", KEYS[1], unpack(due))
end
return due
`)

// DropQueue schedules delayed drop work (reveals, expiry checks) in a
// Redis sorted set scored by due time. Jobs survive process restarts.
type DropQueue struct {
	client *Client
}

func NewDropQueue(client *Client) *DropQueue {
	return &DropQueue{client: client}
}

// Schedule enqueues a job to fire at dueAt.
func (q *DropQueue) Schedule(ctx context.Context, job *queue.Job, dueAt time.Time) error {
	data, err := job.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize job: %w", err)
	}

	err = q.client.rdb.ZAdd(ctx, jobsKey, redis.Z{
		Score:  float64(dueAt.UnixMilli()),
		Member: string(data),
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to schedule job: %w", err)
	}
	return nil
}

// PopDue atomically claims up to limit jobs due at or before now.
func (q *DropQueue) PopDue(ctx context.Context, now time.Time, limit int) ([]*queue.Job, error) {
	if limit <= 0 {
		limit = 10
	}

	raw, err := popDueScript.Run(ctx, q.client.rdb, []string{jobsKey}, now.UnixMilli(), limit).StringSlice()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop due jobs: %w", err)
	}

	jobs := make([]*queue.Job, 0, len(raw))
	for _, data := range raw {
		job, err := queue.FromJSON([]byte(data))
		if err != nil {
			q.client.logger.Error("Discarding malformed job", "error", err, "data", data)
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// Depth returns the number of scheduled jobs, due or not.
func (q *DropQueue) Depth(ctx context.Context) (int, error) {
	count, err := q.client.rdb.ZCard(ctx, jobsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue depth: %w", err)
	}
	return int(count), nil
}

// Clear removes all scheduled jobs.
func (q *DropQueue) Clear(ctx context.Context) error {
	if err := q.client.rdb.Del(ctx, jobsKey).Err(); err != nil {
		return fmt.Errorf("failed to clear job queue: %w", err)
	}
	return nil
}
