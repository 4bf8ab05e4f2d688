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


package storage

import (
	"context"

	"github.com/calyptra/docstream/core"
)

// DocumentRepository is the durable record of each document's identity and
// processing status. It is the single source of truth for the document state
// machine: the message channel and vector index only ever reference IDs that
// exist here first.
//
// Implementations must be thread-safe and support concurrent access.
type DocumentRepository interface {
	// InsertDocument adds a new document row. The caller assigns the ID.
	// Returns ErrDuplicateKey if the ID already exists.
	InsertDocument(ctx context.Context, doc *core.Document) error

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id string) (*core.Document, error)

	// UpdateStatus transitions a document to the given lifecycle status.
	// Returns ErrNotFound if the document doesn't exist.
	UpdateStatus(ctx context.Context, id string, status core.Status) error

	// MarkProcessed records durable processing success: status becomes
	// processed and the text preview is set, in a single write. This is the
	// point at which success becomes externally visible.
	// Returns ErrNotFound if the document doesn't exist.
	MarkProcessed(ctx context.Context, id string, preview string) error

	// ListRecent retrieves the most recently uploaded documents, newest
	// first. Returns up to limit documents.
	ListRecent(ctx context.Context, limit int) ([]*core.Document, error)

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ObjectStore is durable byte storage for raw documents. Objects are
// write-once: the worker only ever reads them back by key.
type ObjectStore interface {
	// Put stores raw bytes under the given key, overwriting nothing:
	// callers use fresh keys derived from fresh document IDs.
	Put(ctx context.Context, key string, data []byte) error

	// Get retrieves the raw bytes stored under key.
	// Returns ErrObjectNotFound if no such object exists.
	Get(ctx context.Context, key string) ([]byte, error)

	// Ping verifies the object store is reachable.
	Ping(ctx context.Context) error
}
