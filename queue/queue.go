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


package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/calyptra/docstream/core"
)

// Subject is the channel subject processing tasks are published on.
const Subject = "document.process"

// Delivery is one received message together with its acknowledgment
// controls. The worker acknowledges only after durable completion; anything
// else leaves the message to the channel's redelivery policy.
type Delivery struct {
	// Data is the raw message payload: UTF-8 JSON {"id":..., "filename":...}.
	Data []byte

	// Attempt is the 1-based delivery attempt, when the transport knows it.
	Attempt int

	AckFunc  func() error
	NakFunc  func(delay time.Duration) error
	TermFunc func() error
}

// Ack confirms durable completion; the message will not be redelivered.
func (d *Delivery) Ack() error {
	if d.AckFunc == nil {
		return nil
	}
	return d.AckFunc()
}

// Nak asks for redelivery after the given delay. Used for transient
// mid-pipeline failures.
func (d *Delivery) Nak(delay time.Duration) error {
	if d.NakFunc == nil {
		return nil
	}
	return d.NakFunc(delay)
}

// Term stops redelivery of a message that can never succeed, such as a
// malformed payload. The transport routes it to its dead-letter path.
func (d *Delivery) Term() error {
	if d.TermFunc == nil {
		return nil
	}
	return d.TermFunc()
}

// DecodeTask parses and validates a task payload.
// Returns ErrMalformedTask for anything that can never become a valid task.
func (d *Delivery) DecodeTask() (core.ProcessingTask, error) {
	var task core.ProcessingTask
	if err := json.Unmarshal(d.Data, &task); err != nil {
		return core.ProcessingTask{}, fmt.Errorf("%w: %w", ErrMalformedTask, err)
	}
	if err := core.ValidateTask(&task); err != nil {
		return core.ProcessingTask{}, fmt.Errorf("%w: %w", ErrMalformedTask, err)
	}
	return task, nil
}

// Subscription is an active consumer registration.
type Subscription interface {
	// Unsubscribe stops delivery to this subscriber.
	Unsubscribe() error
}

// TaskQueue is the message channel between intake and workers.
//
// Delivery is at least once: the same task may arrive more than once, and
// the worker's idempotent pipeline absorbs duplicates. Multiple subscribers
// on the same queue compete for messages; each message goes to exactly one
// subscriber under normal operation.
type TaskQueue interface {
	// Publish sends a processing task to the channel. The caller must have
	// inserted the document's metadata row first: the channel never
	// references an ID unknown to the metadata store.
	Publish(ctx context.Context, task core.ProcessingTask) error

	// Subscribe registers a handler for task deliveries and begins
	// consumption. The handler runs until the subscription is closed.
	Subscribe(ctx context.Context, handler func(Delivery)) (Subscription, error)

	// Ping verifies the channel is reachable.
	Ping(ctx context.Context) error

	// Close drains and releases the connection.
	Close() error
}
