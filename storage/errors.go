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

import "errors"

var (
	// ErrNotFound indicates that the requested document row was not found.
	ErrNotFound = errors.New("document not found")

	// ErrObjectNotFound indicates that no raw bytes exist for the given key.
	// For a document ID known to the metadata store this is a data
	// integrity failure, not a transient condition.
	ErrObjectNotFound = errors.New("object not found")

	// ErrDuplicateKey indicates a duplicate document ID insertion.
	ErrDuplicateKey = errors.New("duplicate document id")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrInvalidLimit indicates a non-positive listing limit.
	ErrInvalidLimit = errors.New("limit must be greater than zero")
)
