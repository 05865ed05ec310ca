package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// sleepJob waits for duration and optionally fails
type sleepJob struct {
	duration  time.Duration
	shouldErr bool
	executed  *int32
	start     func()
	end       func()
}

func (j *sleepJob) Execute(ctx context.Context) error {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.start != nil {
		j.start()
	}
	if j.end != nil {
		defer j.end()
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if j.shouldErr {
		return errors.New("job error")
	}
	return nil
}

func TestNewPool(t *testing.T) {
	ctx := context.Background()

	if p := NewPool[error](ctx, 5); p.workers != 5 {
		t.Errorf("expected 5 workers, got %d", p.workers)
	}
	if p := NewPool[error](ctx, 0); p.workers != 1 {
		t.Errorf("expected default 1 worker for 0 input, got %d", p.workers)
	}
	if p := NewPool[error](ctx, -1); p.workers != 1 {
		t.Errorf("expected default 1 worker for negative input, got %d", p.workers)
	}
}

func TestPool_SubmitWait(t *testing.T) {
	pool := NewPool[error](context.Background(), 2)
	pool.Start()

	var executed int32
	count := 4 // fits in the queue
	for i := 0; i < count; i++ {
		if !pool.Submit(&sleepJob{executed: &executed}) {
			t.Fatal("submit rejected")
		}
	}

	results := pool.Wait()
	if len(results) != count {
		t.Errorf("expected %d results, got %d", count, len(results))
	}
	if atomic.LoadInt32(&executed) != int32(count) {
		t.Errorf("expected %d executed jobs, got %d", count, executed)
	}
}

func TestPool_RunManyJobs(t *testing.T) {
	pool := NewPool[error](context.Background(), 3)

	var executed int32
	jobs := make([]Job[error], 100)
	for i := range jobs {
		jobs[i] = &sleepJob{executed: &executed}
	}

	results := pool.Run(jobs)
	if len(results) != len(jobs) {
		t.Errorf("expected %d results, got %d", len(jobs), len(results))
	}
	if atomic.LoadInt32(&executed) != int32(len(jobs)) {
		t.Errorf("expected %d executed jobs, got %d", len(jobs), executed)
	}
}

func TestPool_Concurrency(t *testing.T) {
	workers := 10
	pool := NewPool[error](context.Background(), workers)

	var current, maxConcurrent, completed int32
	var mu sync.Mutex

	jobs := make([]Job[error], 50)
	for i := range jobs {
		jobs[i] = &sleepJob{
			start: func() {
				curr := atomic.AddInt32(&current, 1)
				mu.Lock()
				if curr > maxConcurrent {
					maxConcurrent = curr
				}
				mu.Unlock()
			},
			end: func() {
				atomic.AddInt32(&current, -1)
				atomic.AddInt32(&completed, 1)
			},
			duration: 10 * time.Millisecond,
		}
	}

	pool.Run(jobs)

	if atomic.LoadInt32(&completed) != int32(len(jobs)) {
		t.Errorf("expected %d completed jobs, got %d", len(jobs), completed)
	}

	mu.Lock()
	max := maxConcurrent
	mu.Unlock()

	if max > int32(workers) {
		t.Errorf("max concurrency %d exceeded workers %d", max, workers)
	}
}

func TestPool_ErrorHandling(t *testing.T) {
	pool := NewPool[error](context.Background(), 2)
	results := pool.Run([]Job[error]{&sleepJob{shouldErr: true}, &sleepJob{}})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	failures := 0
	for _, err := range results {
		if err != nil {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("expected 1 error, got %d", failures)
	}
}

func TestPool_JobFunc(t *testing.T) {
	pool := NewPool[int](context.Background(), 2)
	results := pool.Run([]Job[int]{
		JobFunc[int](func(context.Context) int { return 1 }),
		JobFunc[int](func(context.Context) int { return 2 }),
	})

	sum := 0
	for _, r := range results {
		sum += r
	}
	if sum != 3 {
		t.Errorf("expected sum 3, got %d", sum)
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewPool[error](context.Background(), 2)
	pool.Start()
	pool.Shutdown()

	done := make(chan bool)
	go func() {
		done <- pool.Submit(&sleepJob{})
	}()

	select {
	case accepted := <-done:
		if accepted {
			t.Error("expected submit to be rejected after shutdown")
		}
	case <-time.After(1 * time.Second):
		t.Fatal("Submit after shutdown blocked")
	}
}

func TestPool_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewPool[error](ctx, 2)
	done := make(chan []error)
	go func() {
		done <- pool.Run([]Job[error]{&sleepJob{duration: time.Second}, &sleepJob{duration: time.Second}})
	}()

	select {
	case results := <-done:
		for _, err := range results {
			if err == nil {
				t.Error("expected jobs to observe cancellation")
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestPool_Shutdown(t *testing.T) {
	pool := NewPool[error](context.Background(), 2)
	pool.Start()

	started := make(chan struct{})
	pool.Submit(&sleepJob{
		start:    func() { close(started) },
		duration: 200 * time.Millisecond,
	})

	<-started
	pool.Shutdown()

	done := make(chan struct{})
	go func() {
		for range pool.results {
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Shutdown timed out")
	}
}
