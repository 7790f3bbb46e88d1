package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"docmill/internal/convert"
	"docmill/internal/logging"
)

// ErrPoolClosed is returned by Submit once Stop has begun.
var ErrPoolClosed = errors.New("worker pool closed")

// Task pairs a job with its completion callback. Done runs on the worker
// goroutine that executed the job; it must not block for long.
type Task struct {
	Job  convert.Job
	Done func(convert.Outcome)
}

// Pool runs conversions on a fixed set of long-lived workers. One pool serves
// both one-shot batches and the watch daemon, so the worker bound holds
// across everything the process converts.
type Pool struct {
	converter convert.Converter
	logger    *slog.Logger
	workers   int

	ch    chan Task
	wg    sync.WaitGroup
	once  sync.Once
	locks destLocks

	// mu guards closed and every send on ch: submitters hold it shared for
	// the duration of their send, Stop holds it exclusively to close the
	// channel, so a submit racing Stop can never send on a closed channel.
	mu     sync.RWMutex
	closed bool
}

// NewPool sizes a pool with the given worker count and queue depth. Values
// below one fall back to a single worker and a small queue.
func NewPool(converter convert.Converter, logger *slog.Logger, workers, depth int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if depth < 1 {
		depth = 16
	}
	return &Pool{
		converter: converter,
		logger:    logging.NewComponentLogger(logger, "batch.pool"),
		workers:   workers,
		ch:        make(chan Task, depth),
		locks:     destLocks{m: make(map[string]*destLock)},
	}
}

// Start launches the workers. Jobs observe ctx: once it is canceled, queued
// tasks complete as skipped without converting.
func (p *Pool) Start(ctx context.Context) {
	p.once.Do(func() {
		p.logger.Info("starting workers", logging.Int("workers", p.workers))
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go func(workerID int) {
				defer p.wg.Done()
				for task := range p.ch {
					outcome := p.execute(ctx, task.Job)
					if task.Done != nil {
						task.Done(outcome)
					}
				}
			}(i + 1)
		}
	})
}

// Submit enqueues a task, blocking while the queue is full. It fails when the
// pool is closed or ctx ends first. Stop waits for in-progress submits, so a
// blocked Submit delays shutdown only until the workers free a queue slot.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.ch <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySubmit enqueues a task only if queue space is free. The watch event loop
// uses it so a stalled pool can never block filesystem event handling.
func (p *Pool) TrySubmit(task Task) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}

	select {
	case p.ch <- task:
		return true
	default:
		return false
	}
}

// Stop closes the queue and waits for the workers to drain it, giving up when
// ctx ends first.
func (p *Pool) Stop(ctx context.Context) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.ch)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.wg.Wait()
	}()

	select {
	case <-ctx.Done():
		logging.WarnWithContext(p.logger, "shutdown interrupted before workers drained", "shutdown_timeout",
			logging.String(logging.FieldErrorHint, "queued conversions were abandoned"),
		)
	case <-done:
		p.logger.Info("workers drained")
	}
}

// execute runs one conversion, serializing on the destination path so two
// sources mapping to the same output never interleave their writes.
func (p *Pool) execute(ctx context.Context, job convert.Job) (outcome convert.Outcome) {
	outcome = convert.Outcome{Job: job}
	if ctx.Err() != nil {
		outcome.Skipped = true
		return outcome
	}

	release := p.locks.acquire(job.Destination)
	defer release()

	defer func() {
		if r := recover(); r != nil {
			outcome.Err = convert.Wrap(convert.ErrWriteFailure, "pool", "execute",
				fmt.Sprintf("converter panic: %v", r), nil)
			outcome.Reason = convert.ReasonFor(outcome.Err)
		}
	}()

	start := time.Now()
	res, err := p.converter.Convert(ctx, job)
	outcome.Elapsed = time.Since(start)
	outcome.Bytes = res.Bytes
	outcome.Fallback = res.Fallback
	outcome.Err = err
	if err != nil {
		outcome.Reason = convert.ReasonFor(err)
	}
	return outcome
}

type destLock struct {
	mu   sync.Mutex
	refs int
}

// destLocks hands out one mutex per destination path, dropping entries once
// unreferenced so a long-lived daemon does not accumulate them.
type destLocks struct {
	mu sync.Mutex
	m  map[string]*destLock
}

func (l *destLocks) acquire(key string) func() {
	l.mu.Lock()
	entry := l.m[key]
	if entry == nil {
		entry = &destLock{}
		l.m[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.m, key)
		}
		l.mu.Unlock()
	}
}
