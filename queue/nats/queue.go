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


// Package nats implements the task queue on NATS JetStream.
//
// The stream uses work-queue retention with explicit acknowledgment, so a
// task stays on the stream until a worker acks it. Multiple workers consume
// through one durable consumer, giving competing-consumers semantics: each
// message goes to exactly one worker instance.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/calyptra/docstream/core"
	"github.com/calyptra/docstream/queue"
)

const (
	defaultStream  = "DOCUMENTS"
	defaultDurable = "document-workers"

	// defaultMaxDeliver bounds redelivery attempts per task. A message
	// that exhausts the ceiling stops being redelivered and surfaces on
	// JetStream's max-deliveries advisory subject, which operators treat
	// as the dead-letter path.
	defaultMaxDeliver = 5

	defaultAckWait = 30 * time.Second
)

// Config contains connection parameters for the message channel.
type Config struct {
	URL      string
	User     string
	Password string

	// Stream and Durable name the JetStream stream and the shared worker
	// consumer. Defaults: DOCUMENTS, document-workers.
	Stream  string
	Durable string

	// MaxDeliver bounds delivery attempts per message. Default: 5.
	MaxDeliver int

	// AckWait is how long JetStream waits for an ack before redelivering.
	// Default: 30s.
	AckWait time.Duration
}

func (c *Config) applyDefaults() {
	if c.Stream == "" {
		c.Stream = defaultStream
	}
	if c.Durable == "" {
		c.Durable = defaultDurable
	}
	if c.MaxDeliver <= 0 {
		c.MaxDeliver = defaultMaxDeliver
	}
	if c.AckWait <= 0 {
		c.AckWait = defaultAckWait
	}
}

// Queue implements queue.TaskQueue on NATS JetStream.
type Queue struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	stream jetstream.Stream
	cfg    Config
	logger *slog.Logger
}

var _ queue.TaskQueue = (*Queue)(nil)

// NewQueue connects to NATS and ensures the task stream exists.
//
// Returns queue.TaskQueue interface to enforce abstraction.
func NewQueue(ctx context.Context, cfg Config) (queue.TaskQueue, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("nats url is required")
	}
	cfg.applyDefaults()

	var opts []nats.Option
	if cfg.User != "" {
		opts = append(opts, nats.UserInfo(cfg.User, cfg.Password))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      cfg.Stream,
		Subjects:  []string{queue.Subject},
		Retention: jetstream.WorkQueuePolicy,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream %q: %w", cfg.Stream, err)
	}

	return &Queue{
		nc:     nc,
		js:     js,
		stream: stream,
		cfg:    cfg,
		logger: slog.Default().With("component", "nats-queue"),
	}, nil
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

	if _, err := q.js.Publish(ctx, queue.Subject, data); err != nil {
		return fmt.Errorf("publish task: %w", err)
	}
	q.logger.Debug("task published", "id", task.ID)
	return nil
}

// Subscribe joins the shared durable consumer and begins consumption.
func (q *Queue) Subscribe(ctx context.Context, handler func(queue.Delivery)) (queue.Subscription, error) {
	consumer, err := q.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:    q.cfg.Durable,
		AckPolicy:  jetstream.AckExplicitPolicy,
		MaxDeliver: q.cfg.MaxDeliver,
		AckWait:    q.cfg.AckWait,
	})
	if err != nil {
		return nil, fmt.Errorf("ensure consumer %q: %w", q.cfg.Durable, err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		attempt := 1
		if meta, err := msg.Metadata(); err == nil {
			attempt = int(meta.NumDelivered)
		}
		handler(queue.Delivery{
			Data:     msg.Data(),
			Attempt:  attempt,
			AckFunc:  msg.Ack,
			NakFunc:  msg.NakWithDelay,
			TermFunc: msg.Term,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("consume: %w", err)
	}

	return &subscription{cc: cc}, nil
}

// Ping verifies the NATS connection is up.
func (q *Queue) Ping(ctx context.Context) error {
	if !q.nc.IsConnected() {
		return queue.ErrNotConnected
	}
	return nil
}

// Close drains the connection, letting in-flight handlers finish.
func (q *Queue) Close() error {
	return q.nc.Drain()
}

type subscription struct {
	cc jetstream.ConsumeContext
}

func (s *subscription) Unsubscribe() error {
	s.cc.Stop()
	return nil
}
