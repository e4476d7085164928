package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesBufferedItemsBeforeStop(t *testing.T) {
	var mu sync.Mutex
	var seen []int
	q := NewQueue[int]("test", func(_ context.Context, item int) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, item)
		return nil
	}, QueueConfig{Workers: 2, BufferSize: 16})

	q.Start(context.Background())
	for i := 0; i < 10; i++ {
		require.NoError(t, q.Enqueue(context.Background(), i))
	}
	q.Stop()

	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, seen)
}

func TestQueueRejectsWhenStopped(t *testing.T) {
	q := NewQueue[int]("test", func(context.Context, int) error { return nil }, QueueConfig{})

	err := q.TryEnqueue(1)
	assert.ErrorIs(t, err, ErrQueueStopped)

	q.Start(context.Background())
	q.Stop()
	assert.ErrorIs(t, q.Enqueue(context.Background(), 1), ErrQueueStopped)
}

func TestQueueTryEnqueueReportsFull(t *testing.T) {
	release := make(chan struct{})
	q := NewQueue[int]("test", func(context.Context, int) error {
		<-release
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())

	require.NoError(t, q.TryEnqueue(1))
	require.Eventually(t, func() bool { return len(q.items) == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, q.TryEnqueue(2))
	assert.ErrorIs(t, q.TryEnqueue(3), ErrQueueFull)

	close(release)
	q.Stop()
}

func TestQueueRetriesFailedItems(t *testing.T) {
	var attempts int32
	q := NewQueue[string]("test", func(context.Context, string) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("transient")
		}
		return nil
	}, QueueConfig{MaxRetries: 3, RetryDelay: time.Millisecond})
	q.Start(context.Background())

	require.NoError(t, q.TryEnqueue("entry"))
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&attempts) == 3 }, time.Second, 5*time.Millisecond)
	q.Stop()
}

func TestQueueStopFlushesPendingRetries(t *testing.T) {
	var attempts int32
	q := NewQueue[string]("test", func(context.Context, string) error {
		if atomic.AddInt32(&attempts, 1) == 1 {
			return errors.New("transient")
		}
		return nil
	}, QueueConfig{MaxRetries: 2, RetryDelay: time.Hour})
	q.Start(context.Background())

	require.NoError(t, q.TryEnqueue("entry"))
	q.Stop()

	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}
