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


// Package ai provides abstractions for the embedding services used in docstream.
//
// The pipeline treats the embedding model as a black-box function from text to
// a fixed-length vector. This package defines the interfaces for that function
// and its lifecycle, allowing the worker and intake service to depend on
// abstractions rather than a concrete model client.
//
// # Interfaces
//
//   - Embedder: generates vector embeddings from text
//   - Provider: owns embedder construction and teardown
//
// # Implementation Packages
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//   - ai/mock: test doubles for unit testing without external services
//
// # Lifecycle
//
// Embedding clients are expensive to construct and cheap to invoke, so a
// process builds one at most once. LazyProvider implements first-use
// initialization with a single-initialization guarantee for workers that
// should start consuming before the model is warm; Static wraps an eagerly
// constructed embedder for services that prefer to fail at startup.
//
//	provider := ai.NewLazyProvider(func() (ai.Embedder, error) {
//	    return openai.NewEmbedder(ai.DefaultConfig())
//	})
//	defer provider.Close()
//
//	embedder, err := provider.Embedder() // first call initializes
package ai
