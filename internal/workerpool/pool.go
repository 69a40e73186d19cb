package workerpool

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Goofygiraffe06/otprelay/internal/logging"
)

// Task represents a unit of work to be executed by the pool.
// The context is propagated to support cancellation/timeouts per task.
type Task func(ctx context.Context)

// Pool is a bounded worker pool executing submitted tasks.
type Pool struct {
	name        string
	size        int
	taskTimeout time.Duration
	queue       chan Task
	wg          sync.WaitGroup
	mu          sync.RWMutex
	closed      bool
	shutdown    sync.Once
}

var (
	// ErrPoolClosed is returned when submitting to a closed pool.
	ErrPoolClosed = errors.New("worker pool closed")
	// ErrQueueFull is returned when the pool cannot accept more work.
	ErrQueueFull = errors.New("worker pool queue full")
)

// DefaultTaskTimeout guards against runaway tasks.
const DefaultTaskTimeout = 30 * time.Second

// New creates a new worker pool with given size and queue capacity.
func New(name string, size, queueCap int) *Pool {
	return NewWithTimeout(name, size, queueCap, DefaultTaskTimeout)
}

// NewWithTimeout is New with a per-task deadline.
func NewWithTimeout(name string, size, queueCap int, taskTimeout time.Duration) *Pool {
	if size <= 0 {
		size = 1
	}
	if queueCap <= 0 {
		queueCap = 1
	}
	if taskTimeout <= 0 {
		taskTimeout = DefaultTaskTimeout
	}
	p := &Pool{
		name:        name,
		size:        size,
		taskTimeout: taskTimeout,
		queue:       make(chan Task, queueCap),
	}
	p.start()
	return p
}

// Name returns the pool label used in logs.
func (p *Pool) Name() string { return p.name }

func (p *Pool) start() {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for task := range p.queue {
				ctx, cancel := context.WithTimeout(context.Background(), p.taskTimeout)
				func() {
					defer func() {
						if r := recover(); r != nil {
							logging.ErrorLog("workerpool '%s' worker %d recovered from panic: %v", p.name, id, r)
						}
					}()
					task(ctx)
				}()
				cancel()
			}
		}(i)
	}
}

// Submit enqueues a task for execution.
func (p *Pool) Submit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.queue <- task:
		return nil
	default:
		// Queue full; log and drop to protect service
		logging.WarnLog("workerpool '%s' queue full; dropping task", p.name)
		return ErrQueueFull
	}
}

// Close stops accepting work, drains queued tasks and waits for workers to finish.
func (p *Pool) Close() {
	p.shutdown.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.queue)
		p.mu.Unlock()

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()
		// Wait with a timeout to avoid blocking indefinitely
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			logging.WarnLog("workerpool '%s' shutdown timed out", p.name)
		}
	})
}
