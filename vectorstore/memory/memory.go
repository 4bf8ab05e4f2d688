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


// Package memory provides an in-process vector index with exact cosine
// scoring. It backs tests and local development; production deployments use
// the qdrant client.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/calyptra/docstream/vectorstore"
)

// Index is an in-memory vectorstore.Index with cosine similarity.
type Index struct {
	mu     sync.RWMutex
	points map[string]vectorstore.Point
}

var _ vectorstore.Index = (*Index)(nil)

// NewIndex creates an empty in-memory index.
func NewIndex() *Index {
	return &Index{points: make(map[string]vectorstore.Point)}
}

// Upsert indexes a point, replacing any existing point with the same ID.
func (m *Index) Upsert(ctx context.Context, point vectorstore.Point) error {
	if len(point.Vector) == 0 {
		return vectorstore.ErrEmptyVector
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.points[point.ID] = point
	return nil
}

// Query finds the limit nearest points by cosine similarity.
func (m *Index) Query(ctx context.Context, vector []float32, limit int) ([]vectorstore.ScoredPoint, error) {
	if len(vector) == 0 {
		return nil, vectorstore.ErrEmptyVector
	}
	if limit <= 0 {
		return nil, vectorstore.ErrInvalidLimit
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	scored := make([]vectorstore.ScoredPoint, 0, len(m.points))
	for _, p := range m.points {
		scored = append(scored, vectorstore.ScoredPoint{
			ID:      p.ID,
			Score:   cosine(vector, p.Vector),
			Payload: p.Payload,
		})
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// Ping always succeeds; the index lives in-process.
func (m *Index) Ping(ctx context.Context) error {
	return nil
}

// Get returns the stored point for an ID, for test assertions.
func (m *Index) Get(id string) (vectorstore.Point, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.points[id]
	return p, ok
}

// Len returns the number of stored points.
func (m *Index) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.points)
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
