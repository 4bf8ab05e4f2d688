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


package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/calyptra/docstream/ai"
	"github.com/calyptra/docstream/core"
	"github.com/calyptra/docstream/queue"
	"github.com/calyptra/docstream/storage"
	"github.com/calyptra/docstream/vectorstore"
)

// defaultNakDelay is how long a transiently failed task waits before the
// channel redelivers it.
const defaultNakDelay = 10 * time.Second

// Worker consumes processing tasks and runs each through the pipeline:
// fetch raw bytes, extract text, embed, upsert the vector, then commit
// metadata. The vector upsert always lands before the metadata commit, so a
// crash between the two leaves an unacknowledged task and a harmless
// orphaned vector that the retry overwrites.
type Worker struct {
	repository storage.DocumentRepository
	objects    storage.ObjectStore
	index      vectorstore.Index
	provider   ai.Provider
	tasks      queue.TaskQueue
	pool       *ants.Pool
	nakDelay   time.Duration
	logger     *slog.Logger

	subscription queue.Subscription
}

// Option configures a Worker.
type Option func(*Worker) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) error {
		if logger == nil {
			logger = slog.Default()
		}
		w.logger = logger
		return nil
	}
}

// WithNakDelay sets the redelivery delay requested for transient failures.
func WithNakDelay(delay time.Duration) Option {
	return func(w *Worker) error {
		if delay > 0 {
			w.nakDelay = delay
		}
		return nil
	}
}

// NewWorker creates a document processing worker.
//
// Tasks execute on a single-slot pool: one document at a time per process,
// in arrival order. Parallelism comes from running more worker processes
// against the same queue, not from threads inside one.
func NewWorker(
	repository storage.DocumentRepository,
	objects storage.ObjectStore,
	index vectorstore.Index,
	provider ai.Provider,
	tasks queue.TaskQueue,
	opts ...Option,
) (*Worker, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if objects == nil {
		return nil, ErrObjectStoreRequired
	}
	if index == nil {
		return nil, ErrIndexRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}
	if tasks == nil {
		return nil, ErrQueueRequired
	}

	pool, err := ants.NewPool(1)
	if err != nil {
		return nil, err
	}

	w := &Worker{
		repository: repository,
		objects:    objects,
		index:      index,
		provider:   provider,
		tasks:      tasks,
		pool:       pool,
		nakDelay:   defaultNakDelay,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(w); optErr != nil {
			pool.Release()
			return nil, optErr
		}
	}

	return w, nil
}

// Start subscribes to the task channel and begins consuming. Deliveries
// queue behind the single pool slot, so a burst of uploads drains serially.
func (w *Worker) Start(ctx context.Context) error {
	if w.subscription != nil {
		return ErrAlreadyStarted
	}

	sub, err := w.tasks.Subscribe(ctx, func(d queue.Delivery) {
		submitErr := w.pool.Submit(func() {
			w.handle(ctx, d)
		})
		if submitErr != nil {
			w.logger.Error("error submitting task to pool", "err", submitErr)
			if nakErr := d.Nak(w.nakDelay); nakErr != nil {
				w.logger.Error("error returning task to channel", "err", nakErr)
			}
		}
	})
	if err != nil {
		return fmt.Errorf("subscribing to task channel: %w", err)
	}

	w.subscription = sub
	w.logger.Info("worker started", "subject", queue.Subject)
	return nil
}

// Stop ends consumption and releases the pool. In-flight tasks finish;
// unacknowledged ones return to the channel for another worker.
func (w *Worker) Stop() error {
	var err error
	if w.subscription != nil {
		err = w.subscription.Unsubscribe()
		w.subscription = nil
	}
	w.pool.Release()
	return err
}

// handle decodes one delivery and maps the pipeline outcome onto the
// channel's acknowledgment protocol.
func (w *Worker) handle(ctx context.Context, d queue.Delivery) {
	task, err := d.DecodeTask()
	if err != nil {
		w.logger.Error("discarding malformed task", "err", err)
		if termErr := d.Term(); termErr != nil {
			w.logger.Error("error terminating malformed task", "err", termErr)
		}
		return
	}

	logger := w.logger.With("document_id", task.ID, "attempt", d.Attempt)

	err = w.process(ctx, task, logger)
	switch {
	case err == nil:
		if ackErr := d.Ack(); ackErr != nil {
			logger.Error("error acknowledging task", "err", ackErr)
		}
	case errors.Is(err, ErrPermanentFailure):
		// Failure is already durably recorded; retrying cannot help.
		logger.Error("document failed permanently", "err", err)
		if ackErr := d.Ack(); ackErr != nil {
			logger.Error("error acknowledging failed task", "err", ackErr)
		}
	default:
		logger.Warn("transient failure, returning task for redelivery", "err", err)
		if nakErr := d.Nak(w.nakDelay); nakErr != nil {
			logger.Error("error returning task to channel", "err", nakErr)
		}
	}
}

// process runs the pipeline for one task. A nil return means the document
// is committed as processed. ErrPermanentFailure means the failure was
// recorded and the task should not be retried. Any other error is transient.
//
// Every step is idempotent against redelivery: the object read is pure, the
// vector upsert overwrites by document ID, and the metadata commit is a
// repeatable status write.
func (w *Worker) process(ctx context.Context, task core.ProcessingTask, logger *slog.Logger) error {
	filename := task.Filename
	if filename == "" {
		// Old-format tasks carry only the ID; recover the filename from
		// the metadata row.
		doc, err := w.repository.GetDocument(ctx, task.ID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return w.markFailed(ctx, task.ID, fmt.Errorf("no metadata row for task: %w", err))
			}
			return fmt.Errorf("loading document metadata: %w", err)
		}
		filename = doc.Filename
	}

	key := storage.ObjectKey(task.ID, filename)
	data, err := w.objects.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return w.markFailed(ctx, task.ID, fmt.Errorf("raw object %s missing: %w", key, err))
		}
		return fmt.Errorf("fetching raw object %s: %w", key, err)
	}

	text := ExtractText(data)

	embedder, err := w.provider.Embedder()
	if err != nil {
		return fmt.Errorf("obtaining embedder: %w", err)
	}

	vector, err := embedder.EmbedText(ctx, text)
	if err != nil {
		return fmt.Errorf("embedding document text: %w", err)
	}

	// Vector first, metadata second. The commit is what makes success
	// visible, so the index is never behind a processed row.
	err = w.index.Upsert(ctx, vectorstore.Point{
		ID:     task.ID,
		Vector: vector,
		Payload: vectorstore.Payload{
			Text:     text,
			Filename: filename,
			DocID:    task.ID,
		},
	})
	if err != nil {
		return fmt.Errorf("upserting vector: %w", err)
	}

	if err := w.repository.MarkProcessed(ctx, task.ID, BuildPreview(text)); err != nil {
		return fmt.Errorf("committing processed status: %w", err)
	}

	logger.Info("document processed", "filename", filename, "text_bytes", len(text))
	return nil
}

// markFailed records a non-retryable failure against the document and
// converts cause into a permanent error. If even the status write fails the
// error stays transient so the channel redelivers.
func (w *Worker) markFailed(ctx context.Context, id string, cause error) error {
	if err := w.repository.UpdateStatus(ctx, id, core.StatusFailed); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Nothing to record against; the task references a document
			// that never existed.
			return fmt.Errorf("%w: %w", ErrPermanentFailure, cause)
		}
		return fmt.Errorf("recording failure for %s: %w", id, err)
	}
	return fmt.Errorf("%w: %w", ErrPermanentFailure, cause)
}
