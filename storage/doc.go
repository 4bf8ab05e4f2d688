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


// Package storage provides the storage abstraction layer for docstream.
//
// It defines two independent interfaces: DocumentRepository for the metadata
// store (the source of truth for the document state machine) and ObjectStore
// for raw document bytes. Keeping them separate mirrors the deployment
// reality that they are independently-failing external systems.
//
// # Constructor Return Type Pattern
//
// Public constructors in the implementation packages return interface types
// to enforce abstraction and enable multiple backends:
//
//	repo, err := postgres.NewRepository(ctx, cfg)  // returns storage.DocumentRepository
//	store, err := minio.NewObjectStore(ctx, cfg)   // returns storage.ObjectStore
//
// # Implementation Packages
//
//   - storage/postgres: pgx-backed document repository with a bounded pool
//   - storage/minio: S3-compatible object store
//   - storage/mock: function-field test doubles for both interfaces
//
// # Thread Safety
//
// All implementations must be thread-safe and support concurrent access
// from multiple goroutines.
package storage
