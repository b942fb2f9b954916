// Package queue implements the bounded FIFO admission queue and fixed
// worker pool that sits behind the rate limiter on slicing routes. Its
// goroutine lifecycle (stopCh/stoppedCh, a single Stop that blocks until
// drained) follows the same idiom as the teacher's log rotation loop in
// common/logger/logger.go (startLogRotationLoop/stopLogRotationLoop), since
// the teacher has no compute queue of its own to generalize from directly.
package queue

import (
	"context"
	"time"

	"github.com/slicehub/slicehub/internal/metrics"
)

// ErrFull is returned by Submit when the queue already holds
// MaxSliceQueueLength pending items.
var ErrFull = fullError{}

type fullError struct{}

func (fullError) Error() string { return "queue full" }

// ErrTimeout is returned by Submit when the item was admitted but not
// dispatched to a worker within the wait budget.
var ErrTimeout = timeoutError{}

type timeoutError struct{}

func (timeoutError) Error() string { return "queue wait timeout" }

// Job is the unit of work a worker executes. A dispatched job receives
// context.Background(), which is never canceled, so it runs to completion;
// a job still pending when the queue stops is never run.
type Job func(ctx context.Context)

type item struct {
	job       Job
	admitted  time.Time
	dispatchedCh chan struct{}
	expiredCh    chan struct{}
}

// Queue is a bounded FIFO admission queue drained by a fixed pool of worker
// goroutines.
type Queue struct {
	workers   int
	maxLength int
	waitBudget time.Duration

	pending chan *item
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// New builds a Queue with the given worker count, maximum pending length,
// and per-item wait budget. Call Start before Submit.
func New(workers, maxLength int, waitBudget time.Duration) *Queue {
	return &Queue{
		workers:    workers,
		maxLength:  maxLength,
		waitBudget: waitBudget,
		pending:    make(chan *item, maxLength),
	}
}

// Start launches the worker pool. Safe to call once; a second call is a no-op.
func (q *Queue) Start() {
	if q.stopCh != nil {
		return
	}
	q.stopCh = make(chan struct{})
	q.stoppedCh = make(chan struct{})

	done := make(chan struct{}, q.workers)
	for i := 0; i < q.workers; i++ {
		go q.runWorker(done)
	}

	go func() {
		for i := 0; i < q.workers; i++ {
			<-done
		}
		close(q.stoppedCh)
	}()
}

func (q *Queue) runWorker(done chan<- struct{}) {
	defer func() { done <- struct{}{} }()

	for {
		select {
		case <-q.stopCh:
			return
		case it, ok := <-q.pending:
			if !ok {
				return
			}
			select {
			case <-q.stopCh:
				return
			default:
			}
			q.dispatch(it)
		}
	}
}

func (q *Queue) dispatch(it *item) {
	select {
	case <-it.expiredCh:
		return // caller already gave up and returned QUEUE_TIMEOUT
	default:
	}

	close(it.dispatchedCh)
	metrics.GlobalRecorder.RecordQueueOutcome("dispatched")
	metrics.GlobalRecorder.UpdateInFlightSlices(1)
	defer metrics.GlobalRecorder.UpdateInFlightSlices(-1)

	it.job(context.Background())
}

// Submit enqueues job. It blocks until the job is dispatched to a worker,
// the wait budget elapses (ErrTimeout), or the queue is already at
// MaxSliceQueueLength pending items (ErrFull, returned immediately,
// non-blocking).
func (q *Queue) Submit(job Job) error {
	it := &item{
		job:          job,
		admitted:     time.Now(),
		dispatchedCh: make(chan struct{}),
		expiredCh:    make(chan struct{}),
	}

	select {
	case q.pending <- it:
	default:
		metrics.GlobalRecorder.RecordQueueOutcome("full")
		return ErrFull
	}

	metrics.GlobalRecorder.UpdateQueueDepth(len(q.pending))
	defer metrics.GlobalRecorder.UpdateQueueDepth(len(q.pending))

	timer := time.NewTimer(q.waitBudget)
	defer timer.Stop()

	select {
	case <-it.dispatchedCh:
		return nil
	case <-timer.C:
		close(it.expiredCh)
		metrics.GlobalRecorder.RecordQueueOutcome("timeout")
		return ErrTimeout
	}
}

// Stop halts the worker pool, letting in-flight jobs run to completion but
// refusing to start any not yet dispatched, then blocks until every worker
// goroutine has exited or deadline elapses.
func (q *Queue) Stop(deadline time.Duration) {
	if q.stopCh == nil {
		return
	}
	close(q.stopCh)

	select {
	case <-q.stoppedCh:
	case <-time.After(deadline):
	}
}

// Depth reports the number of items currently pending dispatch.
func (q *Queue) Depth() int {
	return len(q.pending)
}
