package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	for _, spec := range []string{"*/15 * * * *", "0 6 * * *", "@hourly"} {
		if err := Validate(spec); err != nil {
			t.Errorf("Validate(%q) = %v", spec, err)
		}
	}
	for _, spec := range []string{"", "every minute", "* * *"} {
		if err := Validate(spec); err == nil {
			t.Errorf("Validate(%q) accepted", spec)
		}
	}
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	s := New(time.UTC)
	if err := s.Schedule("x", "nope", func(context.Context) error { return nil }); err == nil {
		t.Fatal("bad spec accepted")
	}
}

func TestStartStop(t *testing.T) {
	s := New(nil)
	if err := s.Schedule("noop", "@every 1h", func(context.Context) error { return nil }); err != nil {
		t.Fatal(err)
	}
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	if ctx.Err() != nil {
		t.Fatal("Stop did not return promptly")
	}
}

func TestStopCancelsRunningJob(t *testing.T) {
	s := New(time.UTC)
	started := make(chan struct{})
	var canceled atomic.Bool
	err := s.Schedule("slow", "@every 1s", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		canceled.Store(true)
		return ctx.Err()
	})
	if err != nil {
		t.Fatal(err)
	}
	s.Start()

	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("job never started")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.Stop(ctx)
	if ctx.Err() != nil {
		t.Fatal("Stop waited for the deadline instead of canceling the job")
	}
	if !canceled.Load() {
		t.Fatal("job context was not canceled")
	}
}

func TestSerialDoesNotOverlap(t *testing.T) {
	var running, maxRunning atomic.Int32
	job := NewSerial(func(context.Context) error {
		n := running.Add(1)
		for {
			m := maxRunning.Load()
			if n <= m || maxRunning.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = job.Run(context.Background())
		}()
	}
	wg.Wait()

	if maxRunning.Load() != 1 {
		t.Fatalf("max concurrent runs = %d", maxRunning.Load())
	}
}
