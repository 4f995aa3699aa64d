package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/mr1hm/go-disaster-response/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func record(i int) *models.NotificationRecord {
	return &models.NotificationRecord{
		ID:     fmt.Sprintf("ntf_%d", i),
		Action: models.ActionAlert,
		Status: models.StatusPending,
	}
}

func TestQueue_StartStop(t *testing.T) {
	var processed atomic.Int64
	run := func(ctx context.Context, rec *models.NotificationRecord) error {
		processed.Add(1)
		return nil
	}

	q := NewQueue(2, 10, run, nil)

	ctx, cancel := context.WithCancel(context.Background())
	q.Start(ctx)

	for i := 0; i < 5; i++ {
		q.Submit(record(i))
	}

	time.Sleep(50 * time.Millisecond)

	cancel()
	q.Stop()

	if processed.Load() != 5 {
		t.Errorf("expected 5 jobs processed, got %d", processed.Load())
	}
}

func TestQueue_ConcurrentSubmit(t *testing.T) {
	var processed atomic.Int64
	run := func(ctx context.Context, rec *models.NotificationRecord) error {
		processed.Add(1)
		return nil
	}

	q := NewQueue(4, 100, run, nil)

	ctx, cancel := context.WithCancel(context.Background())
	q.Start(ctx)

	for i := 0; i < 100; i++ {
		go func(n int) {
			q.Submit(record(n))
		}(i)
	}

	time.Sleep(100 * time.Millisecond)

	cancel()
	q.Stop()

	if processed.Load() != 100 {
		t.Errorf("expected 100 jobs processed, got %d", processed.Load())
	}
}

func TestQueue_GracefulShutdown(t *testing.T) {
	var processed atomic.Int64
	run := func(ctx context.Context, rec *models.NotificationRecord) error {
		time.Sleep(10 * time.Millisecond)
		processed.Add(1)
		return nil
	}

	q := NewQueue(2, 50, run, nil)

	ctx, cancel := context.WithCancel(context.Background())
	q.Start(ctx)

	for i := 0; i < 20; i++ {
		q.Submit(record(i))
	}

	cancel()

	done := make(chan struct{})
	go func() {
		q.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("queue.Stop() timed out")
	}

	t.Logf("processed %d jobs before shutdown", processed.Load())
}

func TestQueue_FailedJobDoesNotStopWorkers(t *testing.T) {
	var processed atomic.Int64
	run := func(ctx context.Context, rec *models.NotificationRecord) error {
		processed.Add(1)
		if rec.ID == "ntf_1" {
			return fmt.Errorf("simulated failure")
		}
		return nil
	}

	q := NewQueue(1, 10, run, nil)

	ctx, cancel := context.WithCancel(context.Background())
	q.Start(ctx)

	for i := 0; i < 3; i++ {
		q.Submit(record(i))
	}

	time.Sleep(50 * time.Millisecond)

	cancel()
	q.Stop()

	if processed.Load() != 3 {
		t.Errorf("expected all 3 jobs processed despite one failure, got %d", processed.Load())
	}
}
