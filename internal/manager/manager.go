package manager

import (
	"context"
	"fmt"
	"time"

	"github.com/Goofygiraffe06/otprelay/internal/config"
	"github.com/Goofygiraffe06/otprelay/internal/workerpool"
)

// WorkManager provides separate pools for user-directory lookups and SMS
// provider calls, so a slow upstream cannot starve the other or block HTTP
// handlers beyond their deadline.
type WorkManager struct {
	directory *workerpool.Pool
	sms       *workerpool.Pool
	timeout   time.Duration
}

// Option configures the WorkManager.
type Option func(*options)

type options struct {
	directoryWorkers int
	smsWorkers       int
	queueSize        int
	callTimeout      time.Duration
}

// WithDirectoryWorkers sets the directory worker count.
func WithDirectoryWorkers(n int) Option { return func(o *options) { o.directoryWorkers = n } }

// WithSMSWorkers sets the SMS worker count.
func WithSMSWorkers(n int) Option { return func(o *options) { o.smsWorkers = n } }

// WithQueueSize sets the shared queue size (per pool).
func WithQueueSize(n int) Option { return func(o *options) { o.queueSize = n } }

// WithCallTimeout bounds each outbound call.
func WithCallTimeout(d time.Duration) Option { return func(o *options) { o.callTimeout = d } }

// NewWorkManager constructs the manager with the given options (or defaults from config).
func NewWorkManager(opts ...Option) *WorkManager {
	o := &options{
		directoryWorkers: config.DirectoryWorkerCount(),
		smsWorkers:       config.SMSWorkerCount(),
		queueSize:        config.WorkerQueueSize(),
		callTimeout:      config.ProviderCallTimeout(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return &WorkManager{
		directory: workerpool.NewWithTimeout("directory", o.directoryWorkers, o.queueSize, o.callTimeout),
		sms:       workerpool.NewWithTimeout("sms", o.smsWorkers, o.queueSize, o.callTimeout),
		timeout:   o.callTimeout,
	}
}

// Close shuts down all pools.
func (m *WorkManager) Close() {
	if m == nil {
		return
	}
	m.directory.Close()
	m.sms.Close()
}

// Directory runs fn on the directory pool and waits for its result.
func (m *WorkManager) Directory(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.do(ctx, m.directory, fn)
}

// SMS runs fn on the SMS pool and waits for its result.
func (m *WorkManager) SMS(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.do(ctx, m.sms, fn)
}

// do submits fn and blocks until it returns, the call deadline passes or the
// caller goes away. A panic inside fn is returned as an error.
func (m *WorkManager) do(ctx context.Context, pool *workerpool.Pool, fn func(ctx context.Context) error) error {
	result := make(chan error, 1)
	err := pool.Submit(func(taskCtx context.Context) {
		var callErr error
		defer func() {
			if r := recover(); r != nil {
				callErr = fmt.Errorf("%s call panicked: %v", pool.Name(), r)
			}
			result <- callErr
		}()
		// Cancel with whichever of the caller or the task deadline ends first.
		callCtx, cancel := context.WithCancel(taskCtx)
		defer cancel()
		stop := context.AfterFunc(ctx, cancel)
		defer stop()
		callErr = fn(callCtx)
	})
	if err != nil {
		return err
	}

	// hard cap slightly above the task deadline
	timer := time.NewTimer(m.timeout + time.Second)
	defer timer.Stop()
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return context.DeadlineExceeded
	}
}

// RunWithTimeout runs a function respecting a deadline and returns whether it completed.
func RunWithTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context)) bool {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	done := make(chan struct{})
	go func() { fn(ctx); close(done) }()
	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}
