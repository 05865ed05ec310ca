package worker

import (
	"context"
	"sync"
)

// Job is a unit of work producing a result of type R
type Job[R any] interface {
	Execute(ctx context.Context) R
}

// JobFunc adapts a function to Job
type JobFunc[R any] func(ctx context.Context) R

// Execute calls f
func (f JobFunc[R]) Execute(ctx context.Context) R { return f(ctx) }

// Pool runs jobs on a fixed number of goroutines
type Pool[R any] struct {
	workers    int
	jobQueue   chan Job[R]
	results    chan R
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	queueOnce  sync.Once
	closeOnce  sync.Once
}

// NewPool creates a pool bound to ctx; cancelling ctx stops the workers
func NewPool[R any](ctx context.Context, workers int) *Pool[R] {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool[R]{
		workers:    workers,
		jobQueue:   make(chan Job[R], workers*2),
		results:    make(chan R, workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start launches the workers
func (p *Pool[R]) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool[R]) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := job.Execute(p.ctx)
			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job. It returns false once the pool has been shut down or
// its context cancelled. Submit must not be called after Wait.
func (p *Pool[R]) Submit(job Job[R]) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- job:
		return true
	}
}

// Wait closes the queue and collects every result. Callers submitting more
// jobs than the queue holds should use Run instead.
func (p *Pool[R]) Wait() []R {
	p.closeQueue()
	return p.collect()
}

// Run starts the pool, feeds it jobs and returns the results in completion order
func (p *Pool[R]) Run(jobs []Job[R]) []R {
	p.Start()

	go func() {
		defer p.closeQueue()
		for _, job := range jobs {
			if !p.Submit(job) {
				return
			}
		}
	}()

	return p.collect()
}

// Shutdown stops the workers without waiting for queued jobs
func (p *Pool[R]) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool[R]) collect() []R {
	go func() {
		p.wg.Wait()
		p.closeResults()
	}()

	var results []R
	for result := range p.results {
		results = append(results, result)
	}
	p.cancelFunc()
	return results
}

func (p *Pool[R]) closeQueue() {
	p.queueOnce.Do(func() {
		close(p.jobQueue)
	})
}

func (p *Pool[R]) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
