package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"docmill/internal/convert"
	"docmill/internal/docformat"
	"docmill/internal/logging"
)

type converterFunc func(context.Context, convert.Job) (convert.Result, error)

func (f converterFunc) Convert(ctx context.Context, job convert.Job) (convert.Result, error) {
	return f(ctx, job)
}

func succeedingConverter() convert.Converter {
	return converterFunc(func(context.Context, convert.Job) (convert.Result, error) {
		return convert.Result{Bytes: 10}, nil
	})
}

func testJob(n string) convert.Job {
	return convert.NewJob("/in/"+n, "/out/"+n+".pdf", docformat.KindWord)
}

func TestPoolExecutesSubmittedTasks(t *testing.T) {
	pool := NewPool(succeedingConverter(), logging.NewNop(), 2, 8)
	ctx := context.Background()
	pool.Start(ctx)
	defer pool.Stop(ctx)

	var wg sync.WaitGroup
	var completed atomic.Int32
	for i := 0; i < 5; i++ {
		wg.Add(1)
		err := pool.Submit(ctx, Task{Job: testJob("a"), Done: func(outcome convert.Outcome) {
			if outcome.Err != nil {
				t.Errorf("unexpected error: %v", outcome.Err)
			}
			if outcome.Bytes != 10 {
				t.Errorf("Bytes = %d, want 10", outcome.Bytes)
			}
			completed.Add(1)
			wg.Done()
		}})
		if err != nil {
			t.Fatal(err)
		}
	}
	wg.Wait()
	if completed.Load() != 5 {
		t.Fatalf("completed = %d, want 5", completed.Load())
	}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	var current, peak atomic.Int32
	conv := converterFunc(func(context.Context, convert.Job) (convert.Result, error) {
		c := current.Add(1)
		for {
			m := peak.Load()
			if c <= m || peak.CompareAndSwap(m, c) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		current.Add(-1)
		return convert.Result{}, nil
	})

	pool := NewPool(conv, logging.NewNop(), 2, 16)
	ctx := context.Background()
	pool.Start(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		if err := pool.Submit(ctx, Task{Job: testJob("f"), Done: func(convert.Outcome) { wg.Done() }}); err != nil {
			t.Fatal(err)
		}
	}
	wg.Wait()
	pool.Stop(ctx)

	if peak.Load() > 2 {
		t.Fatalf("peak concurrency %d exceeds worker count 2", peak.Load())
	}
}

func TestPoolSerializesSameDestination(t *testing.T) {
	var mu sync.Mutex
	active := map[string]int{}
	overlaps := 0
	conv := converterFunc(func(_ context.Context, job convert.Job) (convert.Result, error) {
		mu.Lock()
		active[job.Destination]++
		if active[job.Destination] > 1 {
			overlaps++
		}
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		active[job.Destination]--
		mu.Unlock()
		return convert.Result{}, nil
	})

	pool := NewPool(conv, logging.NewNop(), 4, 16)
	ctx := context.Background()
	pool.Start(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		job := convert.NewJob("/in/same", "/out/same.pdf", docformat.KindWord)
		if err := pool.Submit(ctx, Task{Job: job, Done: func(convert.Outcome) { wg.Done() }}); err != nil {
			t.Fatal(err)
		}
	}
	wg.Wait()
	pool.Stop(ctx)

	if overlaps != 0 {
		t.Fatalf("%d overlapping conversions for one destination", overlaps)
	}
}

func TestPoolRecoversConverterPanic(t *testing.T) {
	calls := atomic.Int32{}
	conv := converterFunc(func(context.Context, convert.Job) (convert.Result, error) {
		if calls.Add(1) == 1 {
			panic("renderer blew up")
		}
		return convert.Result{}, nil
	})

	pool := NewPool(conv, logging.NewNop(), 1, 4)
	ctx := context.Background()
	pool.Start(ctx)
	defer pool.Stop(ctx)

	outcomes := make(chan convert.Outcome, 2)
	done := func(outcome convert.Outcome) { outcomes <- outcome }
	if err := pool.Submit(ctx, Task{Job: testJob("boom"), Done: done}); err != nil {
		t.Fatal(err)
	}
	if err := pool.Submit(ctx, Task{Job: testJob("fine"), Done: done}); err != nil {
		t.Fatal(err)
	}

	first := <-outcomes
	if first.Err == nil {
		t.Fatal("panic should surface as an error outcome")
	}
	if first.Reason != convert.ReasonWriteFailure {
		t.Errorf("Reason = %q, want write_failure", first.Reason)
	}

	second := <-outcomes
	if second.Err != nil {
		t.Fatalf("worker did not survive the panic: %v", second.Err)
	}
}

func TestPoolSubmitAfterStop(t *testing.T) {
	pool := NewPool(succeedingConverter(), logging.NewNop(), 1, 1)
	ctx := context.Background()
	pool.Start(ctx)
	pool.Stop(ctx)

	if err := pool.Submit(ctx, Task{Job: testJob("late")}); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("err = %v, want ErrPoolClosed", err)
	}
	if pool.TrySubmit(Task{Job: testJob("late")}) {
		t.Fatal("TrySubmit succeeded on a closed pool")
	}
}

func TestPoolTrySubmitAppliesBackpressure(t *testing.T) {
	release := make(chan struct{})
	conv := converterFunc(func(context.Context, convert.Job) (convert.Result, error) {
		<-release
		return convert.Result{}, nil
	})

	pool := NewPool(conv, logging.NewNop(), 1, 1)
	ctx := context.Background()
	pool.Start(ctx)

	var wg sync.WaitGroup
	wg.Add(2)
	done := func(convert.Outcome) { wg.Done() }

	// First task occupies the worker, second fills the queue.
	if !pool.TrySubmit(Task{Job: testJob("a"), Done: done}) {
		t.Fatal("first TrySubmit should succeed")
	}
	// Give the worker a moment to pull the first task off the queue.
	deadline := time.After(time.Second)
	for {
		if pool.TrySubmit(Task{Job: testJob("b"), Done: done}) {
			break
		}
		select {
		case <-deadline:
			t.Fatal("queue never accepted the second task")
		case <-time.After(time.Millisecond):
		}
	}

	if pool.TrySubmit(Task{Job: testJob("c")}) {
		t.Fatal("TrySubmit should refuse when the queue is full")
	}

	close(release)
	wg.Wait()
	pool.Stop(ctx)
}

func TestPoolSkipsQueuedWorkAfterCancel(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	conv := converterFunc(func(context.Context, convert.Job) (convert.Result, error) {
		close(started)
		<-release
		return convert.Result{}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(conv, logging.NewNop(), 1, 4)
	pool.Start(ctx)

	outcomes := make(chan convert.Outcome, 2)
	done := func(outcome convert.Outcome) { outcomes <- outcome }
	if err := pool.Submit(ctx, Task{Job: testJob("running"), Done: done}); err != nil {
		t.Fatal(err)
	}
	if err := pool.Submit(ctx, Task{Job: testJob("queued"), Done: done}); err != nil {
		t.Fatal(err)
	}

	<-started
	cancel()
	close(release)

	first := <-outcomes
	if first.Skipped {
		t.Fatal("the in-flight job must not be reported as skipped")
	}
	second := <-outcomes
	if !second.Skipped {
		t.Fatal("queued job should be skipped after cancellation")
	}
	pool.Stop(context.Background())
}

func TestPoolSubmitRacingStopDoesNotPanic(t *testing.T) {
	pool := NewPool(succeedingConverter(), logging.NewNop(), 2, 4)
	ctx := context.Background()
	pool.Start(ctx)

	// Hammer both submit paths while Stop closes the queue; a send after
	// close would panic and fail the test.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				if !pool.TrySubmit(Task{Job: testJob("a")}) {
					return
				}
			}
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				if err := pool.Submit(ctx, Task{Job: testJob("b")}); err != nil {
					if !errors.Is(err, ErrPoolClosed) {
						t.Errorf("Submit returned %v, want ErrPoolClosed", err)
					}
					return
				}
			}
		}()
	}

	time.Sleep(5 * time.Millisecond)
	pool.Stop(ctx)
	wg.Wait()
}
