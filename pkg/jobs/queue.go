package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrQueueFull is returned by TryEnqueue when the buffer has no room.
var ErrQueueFull = errors.New("queue full")

// ErrQueueStopped is returned when enqueuing on a queue that is not running.
var ErrQueueStopped = errors.New("queue not running")

// Handler processes one item.
type Handler[T any] func(context.Context, T) error

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

type envelope[T any] struct {
	item    T
	attempt int
}

// Queue is an in-memory buffered dispatcher drained by a fixed set of goroutines.
// Stop drains whatever is already buffered before returning; retries still
// waiting on their delay get one final attempt.
type Queue[T any] struct {
	name    string
	handler Handler[T]
	cfg     QueueConfig

	items   chan envelope[T]
	mu      sync.RWMutex
	running bool
	ctx     context.Context
	wg      sync.WaitGroup
	retries sync.WaitGroup
	done    chan struct{}
}

// NewQueue builds a queue with the provided handler.
func NewQueue[T any](name string, handler Handler[T], cfg QueueConfig) *Queue[T] {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 64
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Queue[T]{
		name:    name,
		handler: handler,
		cfg:     cfg,
		items:   make(chan envelope[T], cfg.BufferSize),
		done:    make(chan struct{}),
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (q *Queue[T]) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	q.running = true
	q.ctx = ctx
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx)
	}
	q.cfg.Logger.Info("queue started", zap.String("queue", q.name), zap.Int("workers", q.cfg.Workers))
}

// Stop refuses new items, processes the buffered ones and waits for the workers.
func (q *Queue[T]) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	close(q.done)
	q.mu.Unlock()

	close(q.items)
	// Workers are the only callers of retries.Add, so once they exit the count can only fall.
	q.wg.Wait()
	q.retries.Wait()
	q.cfg.Logger.Info("queue stopped", zap.String("queue", q.name))
}

// Enqueue blocks until the item is buffered or ctx is done.
func (q *Queue[T]) Enqueue(ctx context.Context, item T) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if !q.running {
		return fmt.Errorf("%s: %w", q.name, ErrQueueStopped)
	}
	select {
	case q.items <- envelope[T]{item: item}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryEnqueue buffers the item without blocking.
func (q *Queue[T]) TryEnqueue(item T) error {
	return q.push(envelope[T]{item: item})
}

func (q *Queue[T]) push(env envelope[T]) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if !q.running {
		return fmt.Errorf("%s: %w", q.name, ErrQueueStopped)
	}
	select {
	case q.items <- env:
		return nil
	default:
		return fmt.Errorf("%s: %w", q.name, ErrQueueFull)
	}
}

func (q *Queue[T]) worker(ctx context.Context) {
	defer q.wg.Done()
	for env := range q.items {
		if err := q.handler(ctx, env.item); err != nil {
			q.handleFailure(env, err)
		}
	}
}

func (q *Queue[T]) handleFailure(env envelope[T], err error) {
	env.attempt++
	if env.attempt > q.cfg.MaxRetries {
		q.cfg.Logger.Error("job exceeded retries", zap.String("queue", q.name), zap.Int("attempts", env.attempt), zap.Error(err))
		return
	}
	q.cfg.Logger.Warn("job failed, retrying", zap.String("queue", q.name), zap.Int("attempt", env.attempt), zap.Error(err))

	q.retries.Add(1)
	go func() {
		defer q.retries.Done()
		timer := time.NewTimer(q.cfg.RetryDelay)
		defer timer.Stop()
		select {
		case <-q.done:
		case <-timer.C:
			err := q.push(env)
			if err == nil {
				return
			}
			if !errors.Is(err, ErrQueueStopped) {
				q.cfg.Logger.Error("failed to requeue job", zap.String("queue", q.name), zap.Error(err))
				return
			}
		}
		q.flush(env)
	}()
}

func (q *Queue[T]) flush(env envelope[T]) {
	if err := q.handler(q.ctx, env.item); err != nil {
		q.cfg.Logger.Error("job failed during shutdown", zap.String("queue", q.name), zap.Int("attempts", env.attempt+1), zap.Error(err))
	}
}
