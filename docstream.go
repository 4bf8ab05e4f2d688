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


// Package docstream wires the document ingestion and search system
// together: metadata store, object store, vector index, task channel,
// response cache, and embedding provider behind one connected System.
package docstream

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/calyptra/docstream/ai"
	"github.com/calyptra/docstream/ai/openai"
	"github.com/calyptra/docstream/cache"
	rediscache "github.com/calyptra/docstream/cache/redis"
	"github.com/calyptra/docstream/core"
	"github.com/calyptra/docstream/intake"
	"github.com/calyptra/docstream/queue"
	natsqueue "github.com/calyptra/docstream/queue/nats"
	"github.com/calyptra/docstream/storage"
	"github.com/calyptra/docstream/storage/minio"
	"github.com/calyptra/docstream/storage/postgres"
	"github.com/calyptra/docstream/vectorstore"
	"github.com/calyptra/docstream/vectorstore/qdrant"
	"github.com/calyptra/docstream/worker"
)

// Startup connection ceilings per dependency. Exhaustion is fatal: the
// process never serves half-connected.
const (
	natsStartupAttempts     = 5
	postgresStartupAttempts = 10
	redisStartupAttempts    = 5

	startupBaseDelay = time.Second
)

// Config carries connection settings for every external dependency.
type Config struct {
	Postgres postgres.Config
	Minio    minio.Config
	Qdrant   qdrant.Config
	NATS     natsqueue.Config
	Redis    rediscache.Config
}

// System holds the connected dependencies and builds the two roles that
// run on top of them: the intake service and the document worker.
type System struct {
	repository storage.DocumentRepository
	objects    storage.ObjectStore
	index      vectorstore.Index
	tasks      queue.TaskQueue
	responses  *rediscache.Cache
	provider   ai.Provider
	logger     *slog.Logger
}

// SystemOption configures a System.
type SystemOption func(*systemOptions)

type systemOptions struct {
	aiConfig  *ai.Config
	logger    *slog.Logger
	skipCache bool
}

// WithAIConfig sets the embedding provider configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(cfg *ai.Config) SystemOption {
	return func(o *systemOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithSystemLogger sets a custom logger.
// Default is slog.Default().
func WithSystemLogger(logger *slog.Logger) SystemOption {
	return func(o *systemOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithoutResponseCache skips the Redis connection. The worker role never
// touches the response cache, so its process does not depend on it.
func WithoutResponseCache() SystemOption {
	return func(o *systemOptions) {
		o.skipCache = true
	}
}

// Connect establishes every dependency connection, retrying each with
// exponential backoff before giving up. The embedding provider is lazy:
// the model client is built on first use, not here.
func Connect(ctx context.Context, cfg Config, opts ...SystemOption) (*System, error) {
	options := &systemOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger

	var tasks queue.TaskQueue
	err := core.RetryWithBackoff(ctx, func() error {
		var connErr error
		tasks, connErr = natsqueue.NewQueue(ctx, cfg.NATS)
		if connErr != nil {
			logger.Warn("message channel not ready", "url", cfg.NATS.URL, "err", connErr)
		}
		return connErr
	}, natsStartupAttempts, startupBaseDelay)
	if err != nil {
		return nil, fmt.Errorf("connecting message channel: %w", err)
	}

	var repository storage.DocumentRepository
	err = core.RetryWithBackoff(ctx, func() error {
		var connErr error
		repository, connErr = postgres.NewRepository(ctx, cfg.Postgres)
		if connErr != nil {
			logger.Warn("metadata store not ready", "host", cfg.Postgres.Host, "err", connErr)
		}
		return connErr
	}, postgresStartupAttempts, startupBaseDelay)
	if err != nil {
		_ = tasks.Close()
		return nil, fmt.Errorf("connecting metadata store: %w", err)
	}

	var responses *rediscache.Cache
	if !options.skipCache {
		err = core.RetryWithBackoff(ctx, func() error {
			var connErr error
			responses, connErr = rediscache.NewCache(ctx, cfg.Redis)
			if connErr != nil {
				logger.Warn("response cache not ready", "addr", cfg.Redis.Addr, "err", connErr)
			}
			return connErr
		}, redisStartupAttempts, startupBaseDelay)
		if err != nil {
			_ = repository.Close()
			_ = tasks.Close()
			return nil, fmt.Errorf("connecting response cache: %w", err)
		}
	}

	objects, err := minio.NewObjectStore(ctx, cfg.Minio)
	if err != nil {
		closeAll(logger, responses, repository, tasks)
		return nil, fmt.Errorf("connecting object store: %w", err)
	}

	qcfg := cfg.Qdrant
	if qcfg.Dimension == 0 {
		qcfg.Dimension = options.aiConfig.Dimension
	}
	index, err := qdrant.NewIndex(qcfg)
	if err != nil {
		closeAll(logger, responses, repository, tasks)
		return nil, fmt.Errorf("configuring vector index: %w", err)
	}

	aiConfig := options.aiConfig
	provider := ai.NewLazyProvider(func() (ai.Embedder, error) {
		return openai.NewEmbedder(aiConfig)
	})

	logger.Info("system connected",
		"nats", cfg.NATS.URL,
		"postgres", cfg.Postgres.Host,
		"redis", cfg.Redis.Addr,
		"minio", cfg.Minio.Endpoint,
		"qdrant", qcfg.URL)

	return &System{
		repository: repository,
		objects:    objects,
		index:      index,
		tasks:      tasks,
		responses:  responses,
		provider:   provider,
		logger:     logger,
	}, nil
}

func closeAll(logger *slog.Logger, responses *rediscache.Cache,
	repository storage.DocumentRepository, tasks queue.TaskQueue) {
	if responses != nil {
		if err := responses.Close(); err != nil {
			logger.Error("error closing response cache", "err", err)
		}
	}
	_ = repository.Close()
	_ = tasks.Close()
}

// NewIntakeService builds the upload/search/listing service on the
// connected dependencies. Requires a System connected with the response
// cache.
func (s *System) NewIntakeService(opts ...intake.Option) (*intake.Service, error) {
	var responses cache.QueryCache
	if s.responses != nil {
		responses = s.responses
	}
	opts = append([]intake.Option{intake.WithLogger(s.logger)}, opts...)
	return intake.NewService(s.repository, s.objects, s.index, s.provider,
		s.tasks, responses, opts...)
}

// NewWorker builds the document processing worker on the connected
// dependencies.
func (s *System) NewWorker(opts ...worker.Option) (*worker.Worker, error) {
	opts = append([]worker.Option{worker.WithLogger(s.logger)}, opts...)
	return worker.NewWorker(s.repository, s.objects, s.index, s.provider,
		s.tasks, opts...)
}

// Repository returns the metadata store.
func (s *System) Repository() storage.DocumentRepository {
	return s.repository
}

// Tasks returns the message channel.
func (s *System) Tasks() queue.TaskQueue {
	return s.tasks
}

// Close releases every connection. Errors are logged; the first one from
// a storage-owning dependency is returned.
func (s *System) Close() error {
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing embedding provider", "err", err)
	}
	if err := s.tasks.Close(); err != nil {
		s.logger.Error("error closing message channel", "err", err)
	}
	if s.responses != nil {
		if err := s.responses.Close(); err != nil {
			s.logger.Error("error closing response cache", "err", err)
		}
	}
	if err := s.repository.Close(); err != nil {
		s.logger.Error("error closing metadata store", "err", err)
		return err
	}
	return nil
}
