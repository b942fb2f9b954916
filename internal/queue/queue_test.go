package queue

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQueueDispatchesWithinWorkerCount(t *testing.T) {
	q := New(2, 10, time.Second)
	q.Start()
	defer q.Stop(time.Second)

	var inFlight int32
	var maxObserved int32
	release := make(chan struct{})

	for i := 0; i < 2; i++ {
		go func() {
			_ = q.Submit(func(ctx context.Context) {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					old := atomic.LoadInt32(&maxObserved)
					if n <= old || atomic.CompareAndSwapInt32(&maxObserved, old, n) {
						break
					}
				}
				<-release
				atomic.AddInt32(&inFlight, -1)
			})
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	time.Sleep(50 * time.Millisecond)

	require.LessOrEqual(t, int(atomic.LoadInt32(&maxObserved)), 2)
}

func TestQueueRejectsWhenFull(t *testing.T) {
	q := New(0, 1, time.Second)
	// zero workers: nothing ever dispatches, so the first Submit occupies
	// the only pending slot and the second must be rejected immediately.
	block := make(chan struct{})
	go func() { _ = q.Submit(func(ctx context.Context) { <-block }) }()
	time.Sleep(20 * time.Millisecond)

	err := q.Submit(func(ctx context.Context) {})
	require.ErrorIs(t, err, ErrFull)
	close(block)
}

func TestQueueTimesOutWhenNoWorkerAvailable(t *testing.T) {
	q := New(0, 1, 20*time.Millisecond)
	err := q.Submit(func(ctx context.Context) {})
	require.ErrorIs(t, err, ErrTimeout)
}

func TestQueueStopDrainsInFlight(t *testing.T) {
	q := New(1, 1, time.Second)
	q.Start()

	done := make(chan struct{})
	go func() {
		_ = q.Submit(func(ctx context.Context) {
			time.Sleep(30 * time.Millisecond)
			close(done)
		})
	}()

	time.Sleep(10 * time.Millisecond)
	q.Stop(time.Second)
	select {
	case <-done:
	default:
		t.Fatal("expected in-flight job to complete before Stop returned")
	}
}
