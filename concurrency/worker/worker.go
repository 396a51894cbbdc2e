package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var ErrPoolClosed = errors.New("worker pool is stopped")

// Config represents pool configuration
type Config struct {
	MaxWorkers  int           // maximum number of workers
	QueueSize   int           // task queue size
	TaskTimeout time.Duration // timeout for single task, 0 for none
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		MaxWorkers:  4,
		QueueSize:   256,
		TaskTimeout: time.Minute,
	}
}

// Validate validates configuration
func (cfg *Config) Validate() error {
	if cfg.MaxWorkers < 1 {
		return errors.New("max workers must be greater than 0")
	}
	if cfg.QueueSize < 1 {
		return errors.New("queue size must be greater than 0")
	}
	if cfg.TaskTimeout < 0 {
		return errors.New("task timeout must be greater than or equal to 0")
	}
	return nil
}

// Task is a unit of work. The context carries the task timeout; the worker
// waits for the task to return, so tasks must honour cancellation.
type Task func(ctx context.Context) error

// Metrics tracks pool's operational metrics
type Metrics struct {
	ActiveWorkers  atomic.Int64
	PendingTasks   atomic.Int64
	CompletedTasks atomic.Int64
	FailedTasks    atomic.Int64
	ProcessingTime atomic.Int64 // nanoseconds
}

type job struct {
	ctx  context.Context
	task Task
	done func(error)
}

// Pool represents a worker pool
type Pool struct {
	maxWorkers  int
	taskTimeout time.Duration

	tasks chan job
	quit  chan struct{}
	wg    sync.WaitGroup

	mu      sync.RWMutex
	started bool
	stopped bool

	metrics *Metrics
}

// NewPool creates a new worker pool
//
// Usage:
//
//	pool, err := worker.NewPool(&worker.Config{MaxWorkers: 4, QueueSize: 64, TaskTimeout: time.Minute})
//	if err != nil {
//	    return err
//	}
//	pool.Start()
//	defer pool.Stop(context.Background())
//
//	errs := pool.RunAll(ctx, tasks)
func NewPool(cfg *Config) (*Pool, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pool{
		maxWorkers:  cfg.MaxWorkers,
		taskTimeout: cfg.TaskTimeout,
		tasks:       make(chan job, cfg.QueueSize),
		quit:        make(chan struct{}),
		metrics:     &Metrics{},
	}, nil
}

// Start starts the worker pool
func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true
	for i := 0; i < p.maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Stop stops accepting tasks and waits for the workers to drain the queue
// or for ctx to end.
func (p *Pool) Stop(ctx context.Context) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.quit)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
}

// Submit queues a task, waiting for queue space until ctx ends
func (p *Pool) Submit(ctx context.Context, task Task, done func(error)) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- job{ctx: ctx, task: task, done: done}:
		p.metrics.PendingTasks.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunAll runs every task on the pool and waits for all of them. The result
// holds one error per task, in order. Tasks that could not be queued report
// the submit error.
func (p *Pool) RunAll(ctx context.Context, tasks []Task) []error {
	errs := make([]error, len(tasks))
	var wg sync.WaitGroup
	for i, task := range tasks {
		i := i
		wg.Add(1)
		err := p.Submit(ctx, task, func(err error) {
			errs[i] = err
			wg.Done()
		})
		if err != nil {
			errs[i] = err
			wg.Done()
		}
	}
	wg.Wait()
	return errs
}

// worker represents a worker goroutine
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case j := <-p.tasks:
			p.processTask(j)
		case <-p.quit:
			// drain what is already queued so waiting callers complete
			for {
				select {
				case j := <-p.tasks:
					p.processTask(j)
				default:
					return
				}
			}
		}
	}
}

// processTask processes a single task
func (p *Pool) processTask(j job) {
	start := time.Now()
	p.metrics.ActiveWorkers.Add(1)
	p.metrics.PendingTasks.Add(-1)

	ctx := j.ctx
	var cancel context.CancelFunc = func() {}
	if p.taskTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, p.taskTimeout)
	}

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("task panic: %v", r)
			}
		}()
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
			return
		}
		err = j.task(ctx)
	}()
	cancel()

	p.metrics.ActiveWorkers.Add(-1)
	p.metrics.ProcessingTime.Add(time.Since(start).Nanoseconds())
	if err != nil {
		p.metrics.FailedTasks.Add(1)
	} else {
		p.metrics.CompletedTasks.Add(1)
	}
	if j.done != nil {
		j.done(err)
	}
}

// GetMetrics returns the current metrics
func (p *Pool) GetMetrics() map[string]int64 {
	return map[string]int64{
		"active_workers":  p.metrics.ActiveWorkers.Load(),
		"pending_tasks":   p.metrics.PendingTasks.Load(),
		"completed_tasks": p.metrics.CompletedTasks.Load(),
		"failed_tasks":    p.metrics.FailedTasks.Load(),
		"processing_time": p.metrics.ProcessingTime.Load(),
	}
}
