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

func TestQueueProcessesJobs(t *testing.T) {
	var done sync.WaitGroup
	done.Add(3)
	var seen int32
	q := NewQueue("test", func(_ context.Context, job Job) error {
		atomic.AddInt32(&seen, 1)
		done.Done()
		return nil
	}, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(Job{ID: id}))
	}
	done.Wait()
	assert.Equal(t, int32(3), atomic.LoadInt32(&seen))
}

func TestQueueRetriesThenExhausts(t *testing.T) {
	var attempts int32
	exhausted := make(chan error, 1)
	q := NewQueue("retry", func(context.Context, Job) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("upstream down")
	}, QueueConfig{
		MaxRetries:  2,
		RetryDelay:  time.Millisecond,
		OnExhausted: func(_ context.Context, _ Job, err error) { exhausted <- err },
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job"}))
	select {
	case err := <-exhausted:
		assert.EqualError(t, err, "upstream down")
	case <-time.After(2 * time.Second):
		t.Fatal("job never exhausted")
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestQueuePermanentErrorSkipsRetry(t *testing.T) {
	var attempts int32
	exhausted := make(chan struct{}, 1)
	q := NewQueue("permanent", func(context.Context, Job) error {
		atomic.AddInt32(&attempts, 1)
		return Permanent(errors.New("render failed"))
	}, QueueConfig{MaxRetries: 5, RetryDelay: time.Millisecond, OnExhausted: func(context.Context, Job, error) { exhausted <- struct{}{} }})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job"}))
	<-exhausted
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	assert.True(t, IsPermanent(Permanent(errors.New("x"))))
	assert.Nil(t, Permanent(nil))
}

func TestQueueEnqueueRequiresStart(t *testing.T) {
	q := NewQueue("idle", func(context.Context, Job) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job{ID: "x"}))
}

func TestQueueEnqueueFull(t *testing.T) {
	block := make(chan struct{})
	q := NewQueue("full", func(context.Context, Job) error { <-block; return nil }, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer func() {
		close(block)
		q.Stop()
	}()

	require.NoError(t, q.Enqueue(Job{ID: "1"}))
	require.Eventually(t, func() bool { return q.Len() == 0 }, time.Second, time.Millisecond)
	require.NoError(t, q.Enqueue(Job{ID: "2"}))
	assert.ErrorIs(t, q.Enqueue(Job{ID: "3"}), ErrQueueFull)
}
