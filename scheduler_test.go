package nodearea

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestScheduler_RunsInOrder(t *testing.T) {
	s := NewScheduler(nil)
	defer s.Close()

	var mu sync.Mutex
	var got []int
	for i := 0; i < 50; i++ {
		i := i
		if !s.Schedule("op", func(context.Context) error {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			return nil
		}) {
			t.Fatalf("Schedule %d rejected", i)
		}
	}
	if err := s.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 50 {
		t.Fatalf("ran %d ops, want 50", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("op %d ran at position %d", v, i)
		}
	}
	if completed, failed, dropped := s.Stats(); completed != 50 || failed != 0 || dropped != 0 {
		t.Errorf("stats = %d/%d/%d", completed, failed, dropped)
	}
}

func TestScheduler_FailuresAndPanicsAreCounted(t *testing.T) {
	s := NewScheduler(nil)
	defer s.Close()

	s.Schedule("fail", func(context.Context) error { return errors.New("boom") })
	s.Schedule("panic", func(context.Context) error { panic("bad pipe") })
	ran := false
	s.Schedule("after", func(context.Context) error {
		ran = true
		return nil
	})
	if err := s.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}

	if !ran {
		t.Error("worker stopped after a panic")
	}
	if completed, failed, _ := s.Stats(); completed != 1 || failed != 2 {
		t.Errorf("completed=%d failed=%d, want 1 and 2", completed, failed)
	}
}

func TestScheduler_Close(t *testing.T) {
	s := NewScheduler(nil)
	s.Close()
	s.Close()

	if s.Schedule("late", func(context.Context) error { return nil }) {
		t.Error("closed scheduler accepted an operation")
	}
	if err := s.Flush(context.Background()); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Flush after Close = %v, want ErrDestroyed", err)
	}
	if _, _, dropped := s.Stats(); dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
}

func TestScheduler_CloseCancelsRunningOp(t *testing.T) {
	s := NewScheduler(nil)
	started := make(chan struct{})
	s.Schedule("blocking", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	<-started

	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}
}

func TestScheduler_FlushHonorsContext(t *testing.T) {
	s := NewScheduler(nil)
	defer s.Close()

	release := make(chan struct{})
	s.Schedule("blocking", func(context.Context) error {
		<-release
		return nil
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Flush(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Flush = %v, want DeadlineExceeded", err)
	}
}
