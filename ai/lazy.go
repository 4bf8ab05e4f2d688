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


package ai

import (
	"log/slog"
	"sync"
)

// LazyProvider defers construction of an Embedder until first use.
//
// Building the embedding client is the expensive part of worker startup, so
// it happens at most once per process lifetime. Concurrent first accesses are
// guarded by sync.Once: exactly one caller runs the factory, the rest wait
// and observe the same result. A failed initialization is sticky; callers
// see the original error on every subsequent access.
type LazyProvider struct {
	factory func() (Embedder, error)
	logger  *slog.Logger

	once     sync.Once
	embedder Embedder
	err      error
}

var _ Provider = (*LazyProvider)(nil)

// NewLazyProvider wraps an embedder factory in a single-initialization guard.
func NewLazyProvider(factory func() (Embedder, error)) *LazyProvider {
	return &LazyProvider{
		factory: factory,
		logger:  slog.Default().With("component", "lazy-provider"),
	}
}

// Embedder returns the embedding service, initializing it on first access.
func (p *LazyProvider) Embedder() (Embedder, error) {
	p.once.Do(func() {
		p.logger.Info("initializing embedding service")
		p.embedder, p.err = p.factory()
		if p.err != nil {
			p.logger.Error("embedding service initialization failed", "err", p.err)
			return
		}
		p.logger.Info("embedding service ready", "dimension", p.embedder.Dimension())
	})
	return p.embedder, p.err
}

// Close releases the embedder if it was ever initialized.
func (p *LazyProvider) Close() error {
	if p.embedder != nil {
		if closer, ok := p.embedder.(interface{ Close() error }); ok {
			return closer.Close()
		}
	}
	return nil
}

// Static wraps an already-constructed Embedder in the Provider interface.
// Used by tests and by services that initialize eagerly at startup.
type Static struct {
	E Embedder
}

var _ Provider = (*Static)(nil)

// Embedder returns the wrapped embedding service.
func (s *Static) Embedder() (Embedder, error) {
	return s.E, nil
}

// Close is a no-op; the caller owns the wrapped embedder's lifecycle.
func (s *Static) Close() error {
	return nil
}
