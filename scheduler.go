package nodearea

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

const defaultScheduleQueueSize = 1024

// Op is a blocking operation run on the scheduler's worker goroutine.
type Op func(ctx context.Context) error

type scheduledOp struct {
	name string
	fn   Op
	done chan struct{}
}

// Scheduler runs gesture-originated operations one at a time, in the order
// they were scheduled, on a single worker goroutine. The input goroutine
// never waits on guards or notifications.
type Scheduler struct {
	logger *log.Logger
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex // protects queue creation/closing
	queue   chan scheduledOp
	running atomic.Bool
	wg      sync.WaitGroup

	completed atomic.Uint64
	failed    atomic.Uint64
	dropped   atomic.Uint64
}

// NewScheduler starts a scheduler. A nil logger discards failure logs.
func NewScheduler(logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = discardLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		queue:  make(chan scheduledOp, defaultScheduleQueueSize),
	}
	s.running.Store(true)
	s.wg.Add(1)
	go s.worker()
	return s
}

// Schedule appends fn to the queue. It returns false if the scheduler is
// closed or the queue is full; the operation is then dropped.
func (s *Scheduler) Schedule(name string, fn Op) bool {
	return s.enqueue(scheduledOp{name: name, fn: fn})
}

func (s *Scheduler) enqueue(op scheduledOp) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running.Load() {
		s.dropped.Add(1)
		return false
	}
	select {
	case s.queue <- op:
		return true
	default:
		s.dropped.Add(1)
		s.logger.Warn("schedule queue full, dropping operation", "op", op.name)
		return false
	}
}

// Flush blocks until every operation scheduled before the call has run.
func (s *Scheduler) Flush(ctx context.Context) error {
	done := make(chan struct{})
	if !s.enqueue(scheduledOp{name: "flush", done: done}) {
		return ErrDestroyed
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the worker. Operations still queued are dropped; an
// operation already running sees its context cancelled and is waited for.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if !s.running.Load() {
		s.mu.Unlock()
		return
	}
	s.running.Store(false)
	s.cancel()
	close(s.queue)
	s.mu.Unlock()
	s.wg.Wait()
}

// Stats returns the number of completed, failed and dropped operations.
func (s *Scheduler) Stats() (completed, failed, dropped uint64) {
	return s.completed.Load(), s.failed.Load(), s.dropped.Load()
}

func (s *Scheduler) worker() {
	defer s.wg.Done()
	for op := range s.queue {
		if op.done != nil {
			close(op.done)
			continue
		}
		if s.ctx.Err() != nil {
			s.dropped.Add(1)
			continue
		}
		if err := s.run(op); err != nil {
			s.failed.Add(1)
			s.logger.Warn("scheduled operation failed", "op", op.name, "err", err)
			continue
		}
		s.completed.Add(1)
	}
}

// run executes op, converting a panic into an error so one bad pipe does
// not kill the worker.
func (s *Scheduler) run(op scheduledOp) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", op.name, r)
		}
	}()
	return op.fn(s.ctx)
}
