// Copyright 2026 Calyptra Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package inproc implements the task queue on in-process channels.
//
// It reproduces the contract the worker relies on: at-least-once delivery
// via Nak-triggered redelivery, a bounded delivery ceiling, and competing
// consumers when multiple subscribers share the queue. A message whose
// handler returns without acking is not redelivered; the worker always
// settles every delivery explicitly.
package inproc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/calyptra/docstream/core"
	"github.com/calyptra/docstream/queue"
)

const bufferSize = 64

// defaultMaxDeliver mirrors the production redelivery ceiling.
const defaultMaxDeliver = 5

type message struct {
	data     []byte
	attempts int
}

// Queue is a channel-backed queue.TaskQueue for tests and local development.
type Queue struct {
	msgs       chan *message
	done       chan struct{}
	maxDeliver int

	mu        sync.Mutex
	closed    bool
	published int
	dropped   int // messages that exhausted the delivery ceiling
}

var _ queue.TaskQueue = (*Queue)(nil)

// NewQueue creates an in-process queue with the default delivery ceiling.
func NewQueue() *Queue {
	return NewQueueWithMaxDeliver(defaultMaxDeliver)
}

// NewQueueWithMaxDeliver creates an in-process queue with a custom ceiling.
func NewQueueWithMaxDeliver(maxDeliver int) *Queue {
	if maxDeliver < 1 {
		maxDeliver = 1
	}
	return &Queue{
		msgs:       make(chan *message, bufferSize),
		done:       make(chan struct{}),
		maxDeliver: maxDeliver,
	}
}

// Publish sends a processing task to the channel.
func (q *Queue) Publish(ctx context.Context, task core.ProcessingTask) error {
	if err := core.ValidateTask(&task); err != nil {
		return err
	}

	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}
	return q.PublishRaw(ctx, data)
}

// PublishRaw enqueues an arbitrary payload. Tests use this to simulate
// malformed messages arriving on the channel.
func (q *Queue) PublishRaw(ctx context.Context, data []byte) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return queue.ErrQueueClosed
	}
	q.published++
	q.mu.Unlock()

	select {
	case q.msgs <- &message{data: data}:
		return nil
	case <-q.done:
		return queue.ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe starts a consumer goroutine. Multiple subscribers compete for
// messages from the shared channel.
func (q *Queue) Subscribe(ctx context.Context, handler func(queue.Delivery)) (queue.Subscription, error) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil, queue.ErrQueueClosed
	}
	q.mu.Unlock()

	stop := make(chan struct{})

	go func() {
		for {
			select {
			case <-stop:
				return
			case <-q.done:
				return
			case <-ctx.Done():
				return
			case msg := <-q.msgs:
				msg.attempts++
				handler(queue.Delivery{
					Data:    msg.data,
					Attempt: msg.attempts,
					AckFunc: func() error { return nil },
					NakFunc: func(delay time.Duration) error {
						q.redeliver(msg, delay)
						return nil
					},
					TermFunc: func() error { return nil },
				})
			}
		}
	}()

	return &subscription{stop: stop}, nil
}

// redeliver requeues a message after delay unless it has exhausted the
// delivery ceiling.
func (q *Queue) redeliver(msg *message, delay time.Duration) {
	if msg.attempts >= q.maxDeliver {
		q.mu.Lock()
		q.dropped++
		q.mu.Unlock()
		return
	}

	go func() {
		if delay > 0 {
			timer := time.NewTimer(delay)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-q.done:
				return
			}
		}
		select {
		case q.msgs <- msg:
		case <-q.done:
		}
	}()
}

// Ping reports the queue as reachable while it is open.
func (q *Queue) Ping(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return queue.ErrNotConnected
	}
	return nil
}

// Close stops delivery. Pending messages are discarded.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	close(q.done)
	return nil
}

// Published returns the number of accepted publishes, for test assertions.
func (q *Queue) Published() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.published
}

// Dropped returns the number of messages that exhausted the delivery
// ceiling, for test assertions.
func (q *Queue) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

type subscription struct {
	stop    chan struct{}
	stopped sync.Once
}

func (s *subscription) Unsubscribe() error {
	s.stopped.Do(func() { close(s.stop) })
	return nil
}
