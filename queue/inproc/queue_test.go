package inproc

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calyptra/docstream/core"
	"github.com/calyptra/docstream/queue"
)

func TestQueue_PublishSubscribe(t *testing.T) {
	q := NewQueue()
	defer q.Close()
	ctx := context.Background()

	received := make(chan core.ProcessingTask, 1)
	sub, err := q.Subscribe(ctx, func(d queue.Delivery) {
		task, err := d.DecodeTask()
		require.NoError(t, err)
		d.Ack()
		received <- task
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	task := core.ProcessingTask{ID: uuid.NewString(), Filename: "report.pdf"}
	require.NoError(t, q.Publish(ctx, task))

	select {
	case got := <-received:
		assert.Equal(t, task, got)
	case <-time.After(2 * time.Second):
		t.Fatal("task never delivered")
	}
}

func TestQueue_NakRedelivers(t *testing.T) {
	q := NewQueue()
	defer q.Close()
	ctx := context.Background()

	var attempts atomic.Int32
	done := make(chan struct{})

	sub, err := q.Subscribe(ctx, func(d queue.Delivery) {
		n := attempts.Add(1)
		if n < 3 {
			d.Nak(time.Millisecond)
			return
		}
		d.Ack()
		close(done)
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.NoError(t, q.Publish(ctx, core.ProcessingTask{ID: uuid.NewString()}))

	select {
	case <-done:
		assert.Equal(t, int32(3), attempts.Load())
	case <-time.After(2 * time.Second):
		t.Fatal("task was not redelivered")
	}
}

func TestQueue_NakRespectsDeliveryCeiling(t *testing.T) {
	q := NewQueueWithMaxDeliver(3)
	defer q.Close()
	ctx := context.Background()

	var attempts atomic.Int32
	sub, err := q.Subscribe(ctx, func(d queue.Delivery) {
		attempts.Add(1)
		d.Nak(time.Millisecond)
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.NoError(t, q.Publish(ctx, core.ProcessingTask{ID: uuid.NewString()}))

	assert.Eventually(t, func() bool { return q.Dropped() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(3), attempts.Load(), "delivery stops at the ceiling")
}

func TestQueue_DeliveryAttemptIsReported(t *testing.T) {
	q := NewQueue()
	defer q.Close()
	ctx := context.Background()

	seen := make(chan int, 4)
	sub, err := q.Subscribe(ctx, func(d queue.Delivery) {
		seen <- d.Attempt
		if d.Attempt < 2 {
			d.Nak(time.Millisecond)
			return
		}
		d.Ack()
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.NoError(t, q.Publish(ctx, core.ProcessingTask{ID: uuid.NewString()}))

	first := <-seen
	second := <-seen
	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
}

func TestQueue_CompetingConsumers(t *testing.T) {
	q := NewQueue()
	defer q.Close()
	ctx := context.Background()

	var mu sync.Mutex
	deliveries := make(map[string]int)
	var wg sync.WaitGroup

	const tasks = 20
	wg.Add(tasks)

	handler := func(d queue.Delivery) {
		task, err := d.DecodeTask()
		require.NoError(t, err)
		d.Ack()
		mu.Lock()
		deliveries[task.ID]++
		mu.Unlock()
		wg.Done()
	}

	subA, err := q.Subscribe(ctx, handler)
	require.NoError(t, err)
	defer subA.Unsubscribe()
	subB, err := q.Subscribe(ctx, handler)
	require.NoError(t, err)
	defer subB.Unsubscribe()

	for i := 0; i < tasks; i++ {
		require.NoError(t, q.Publish(ctx, core.ProcessingTask{ID: uuid.NewString()}))
	}

	waitDone := make(chan struct{})
	go func() { wg.Wait(); close(waitDone) }()
	select {
	case <-waitDone:
	case <-time.After(5 * time.Second):
		t.Fatal("not all tasks delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, deliveries, tasks)
	for id, count := range deliveries {
		assert.Equal(t, 1, count, "task %s delivered to exactly one consumer", id)
	}
}

func TestQueue_ClosedQueueRejectsOperations(t *testing.T) {
	q := NewQueue()
	require.NoError(t, q.Close())

	err := q.Publish(context.Background(), core.ProcessingTask{ID: uuid.NewString()})
	assert.ErrorIs(t, err, queue.ErrQueueClosed)

	_, err = q.Subscribe(context.Background(), func(queue.Delivery) {})
	assert.ErrorIs(t, err, queue.ErrQueueClosed)

	assert.ErrorIs(t, q.Ping(context.Background()), queue.ErrNotConnected)
}
