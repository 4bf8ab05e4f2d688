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


package vectorstore

import "context"

// Payload is the metadata attached to every indexed vector. It carries
// enough context for search results to be rendered without a second lookup.
type Payload struct {
	Text     string `json:"text"`
	Filename string `json:"filename"`
	DocID    string `json:"doc_id"`
}

// Point is one indexed document vector. The point ID equals the document ID,
// so re-processing the same document overwrites its prior record.
type Point struct {
	ID      string
	Vector  []float32
	Payload Payload
}

// ScoredPoint is a single similarity search hit.
type ScoredPoint struct {
	ID      string  `json:"id"`
	Score   float32 `json:"score"`
	Payload Payload `json:"payload"`
}

// Index is the remote vector index interface.
//
// Implementations must be thread-safe for concurrent use.
type Index interface {
	// Upsert indexes a point, replacing any existing point with the same ID.
	// Upsert, not insert: reprocessing a document is idempotent here.
	Upsert(ctx context.Context, point Point) error

	// Query finds the limit nearest points to the given vector, with
	// payloads attached, ordered by similarity score descending.
	Query(ctx context.Context, vector []float32, limit int) ([]ScoredPoint, error)

	// Ping verifies the index is reachable.
	Ping(ctx context.Context) error
}
