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


package intake

import "errors"

var (
	// ErrRepositoryRequired is returned when a Service is constructed
	// without a document repository.
	ErrRepositoryRequired = errors.New("document repository is required")

	// ErrObjectStoreRequired is returned when a Service is constructed
	// without an object store.
	ErrObjectStoreRequired = errors.New("object store is required")

	// ErrIndexRequired is returned when a Service is constructed without a
	// vector index.
	ErrIndexRequired = errors.New("vector index is required")

	// ErrProviderRequired is returned when a Service is constructed without
	// an embedding provider.
	ErrProviderRequired = errors.New("embedding provider is required")

	// ErrQueueRequired is returned when a Service is constructed without a
	// task queue.
	ErrQueueRequired = errors.New("task queue is required")

	// ErrCacheRequired is returned when a Service is constructed without a
	// query cache.
	ErrCacheRequired = errors.New("query cache is required")

	// ErrEmptyUpload is returned for uploads with no content.
	ErrEmptyUpload = errors.New("upload contains no data")

	// ErrEmptyQuery is returned for blank search queries.
	ErrEmptyQuery = errors.New("query must not be empty")
)
