// Package worker runs dispatch batches off the request path. The API
// enqueues a prepared pending record and returns immediately; a worker
// executes the sends and resolves the record. Batches for different actions
// are independent, so multiple workers are safe.
package worker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mr1hm/go-disaster-response/internal/models"
	"github.com/mr1hm/go-disaster-response/internal/observability"
)

// RunFunc executes the sends for one prepared record.
type RunFunc func(ctx context.Context, rec *models.NotificationRecord) error

type Queue struct {
	numWorkers int
	jobs       chan *models.NotificationRecord
	run        RunFunc
	metrics    *observability.Metrics
	wg         sync.WaitGroup
}

func NewQueue(numWorkers, bufferSize int, run RunFunc, metrics *observability.Metrics) *Queue {
	if metrics == nil {
		metrics = observability.NewMetricsForTesting()
	}
	return &Queue{
		numWorkers: numWorkers,
		jobs:       make(chan *models.NotificationRecord, bufferSize),
		run:        run,
		metrics:    metrics,
	}
}

func (q *Queue) Start(ctx context.Context) {
	for i := 1; i <= q.numWorkers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
}

func (q *Queue) worker(ctx context.Context, id int) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case rec, ok := <-q.jobs:
			if !ok {
				return
			}
			q.metrics.QueueDepth.Set(float64(len(q.jobs)))
			if err := q.run(ctx, rec); err != nil {
				slog.Error("dispatch job failed", "id", rec.ID, "worker", id, "error", err)
			}
		}
	}
}

// Submit enqueues a prepared record. Blocks when the buffer is full.
func (q *Queue) Submit(rec *models.NotificationRecord) {
	q.jobs <- rec
	q.metrics.QueueDepth.Set(float64(len(q.jobs)))
}

// Stop closes the queue and waits for workers to drain in-flight jobs.
func (q *Queue) Stop() {
	close(q.jobs)
	q.wg.Wait()
}
