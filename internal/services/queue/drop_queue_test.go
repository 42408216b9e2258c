package queue

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	queuePkg "github.com/redvale-rp/deaddrop/pkg/queue"
)

func newTestQueue(t *testing.T) (*DropQueue, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewDropQueue(NewClientFromRedis(rdb, logger)), rdb
}

func TestScheduleAndPopDue(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(t)

	now := time.Now()
	due := queuePkg.NewJob(queuePkg.JobTypeReveal, "crook", uuid.New())
	future := queuePkg.NewJob(queuePkg.JobTypeExpiryCheck, "crook", uuid.New())

	if err := q.Schedule(ctx, due, now.Add(-time.Second)); err != nil {
		t.Fatal(err)
	}
	if err := q.Schedule(ctx, future, now.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	depth, err := q.Depth(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if depth != 2 {
		t.Errorf("expected depth 2, got %d", depth)
	}

	jobs, err := q.PopDue(ctx, now, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 due job, got %d", len(jobs))
	}
	if jobs[0].JobID != due.JobID {
		t.Errorf("popped wrong job: %s", jobs[0].JobID)
	}
	if jobs[0].DropID != due.DropID {
		t.Error("drop id lost in round trip")
	}

	// Claiming removed it; a second poll sees nothing.
	jobs, err = q.PopDue(ctx, now, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 0 {
		t.Errorf("job popped twice: %v", jobs)
	}

	// The future job becomes due once its time passes.
	jobs, err = q.PopDue(ctx, now.Add(2*time.Hour), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 || jobs[0].JobID != future.JobID {
		t.Errorf("future job not claimed when due: %v", jobs)
	}
}

func TestPopDueRespectsLimit(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(t)

	now := time.Now()
	for i := 0; i < 5; i++ {
		job := queuePkg.NewJob(queuePkg.JobTypeReveal, "crook", uuid.New())
		if err := q.Schedule(ctx, job, now.Add(-time.Duration(i)*time.Second)); err != nil {
			t.Fatal(err)
		}
	}

	jobs, err := q.PopDue(ctx, now, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(jobs))
	}

	depth, _ := q.Depth(ctx)
	if depth != 2 {
		t.Errorf("expected 2 jobs remaining, got %d", depth)
	}
}

func TestPopDueDiscardsMalformed(t *testing.T) {
	ctx := context.Background()
	q, rdb := newTestQueue(t)

	now := time.Now()
	if err := rdb.ZAdd(ctx, jobsKey, redis.Z{
		Score:  float64(now.Add(-time.Second).UnixMilli()),
		Member: "{not json",
	}).Err(); err != nil {
		t.Fatal(err)
	}
	good := queuePkg.NewJob(queuePkg.JobTypeReveal, "crook", uuid.New())
	if err := q.Schedule(ctx, good, now.Add(-time.Second)); err != nil {
		t.Fatal(err)
	}

	jobs, err := q.PopDue(ctx, now, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 || jobs[0].JobID != good.JobID {
		t.Errorf("expected only the well-formed job, got %v", jobs)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(t)

	job := queuePkg.NewJob(queuePkg.JobTypeReveal, "crook", uuid.New())
	if err := q.Schedule(ctx, job, time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := q.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	depth, _ := q.Depth(ctx)
	if depth != 0 {
		t.Errorf("expected empty queue, got depth %d", depth)
	}
}
