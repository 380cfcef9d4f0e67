package pipeline

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/lebenh/rfi-triage/internal/catalog"
	"github.com/lebenh/rfi-triage/internal/ingest"
)

// Queue fans documents out to a fixed worker pool and streams the resulting
// catalog entries back on Results. Each job runs under its own timeout so a
// stuck external tool cannot hold a worker forever.
type Queue struct {
	proc    *Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch      chan ingest.Document
	results chan catalog.Entry
	wg      sync.WaitGroup
	once    sync.Once

	mu     sync.Mutex
	closed bool
	// intake counts in-flight Enqueue sends so Shutdown never closes the
	// channel under a sender.
	intake sync.WaitGroup
}

type QueueOption func(*Queue)

func WithWorkers(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.ch = make(chan ingest.Document, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) QueueOption {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewQueue(proc *Processor, logger *slog.Logger, opts ...QueueOption) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		proc:    proc,
		logger:  logger,
		workers: defaultQueueWorkers(),
		timeout: 3 * time.Minute,
		ch:      make(chan ingest.Document, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.results = make(chan catalog.Entry, cap(q.ch))
	q.start()
	return q
}

func defaultQueueWorkers() int {
	if n := runtime.NumCPU() - 1; n > 1 {
		return n
	}
	return 1
}

// Results streams one entry per enqueued document. Closed once Shutdown has
// drained the pool.
func (q *Queue) Results() <-chan catalog.Entry {
	return q.results
}

func (q *Queue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker started", "worker_id", workerID)

				for doc := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					entry := q.proc.Process(ctx, doc)
					cancel()
					q.results <- entry
				}

				q.logger.Debug("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Enqueue submits one document. Blocks when the buffer is full; returns the
// context error if the caller gives up first.
func (q *Queue) Enqueue(ctx context.Context, doc ingest.Document) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("cannot enqueue: queue is shutting down", "path", doc.Path)
		return nil
	}
	q.intake.Add(1)
	q.mu.Unlock()
	defer q.intake.Done()

	select {
	case q.ch <- doc:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops intake, waits for in-flight work (bounded by ctx), then
// closes Results.
func (q *Queue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	// no new senders can register once closed is set; wait out the in-flight
	// ones before closing the channel
	q.intake.Wait()
	close(q.ch)

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
		// workers may still be sending; close results only once they finish
		go func() { <-done; close(q.results) }()
	case <-done:
		q.logger.Debug("queue drained, shutdown complete")
		close(q.results)
	}
}
