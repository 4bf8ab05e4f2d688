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


package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/calyptra/docstream/vectorstore"
)

// Config contains connection details for a Qdrant collection.
type Config struct {
	URL        string // base URL, e.g. http://localhost:6333
	APIKey     string
	Collection string
	Dimension  int
	Timeout    time.Duration
}

// Index is a minimal REST client to Qdrant. It assumes cosine distance and
// creates the collection on first use if missing.
type Index struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client

	ensureOnce sync.Once
	ensureErr  error
}

var _ vectorstore.Index = (*Index)(nil)

// NewIndex creates a Qdrant-backed vector index.
//
// Returns the concrete type; callers hold it as vectorstore.Index.
func NewIndex(cfg Config) (*Index, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("qdrant url is required")
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("qdrant collection is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Index{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		dimension:  cfg.Dimension,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

// ensureCollection creates the collection if it doesn't exist.
func (q *Index) ensureCollection(ctx context.Context) error {
	q.ensureOnce.Do(func() {
		// Check if collection exists.
		url := fmt.Sprintf("%s/collections/%s", q.url, q.collection)
		resp, err := q.do(ctx, http.MethodGet, url, nil)
		if err != nil {
			q.ensureErr = err
			return
		}
		_ = resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return
		}

		// Create collection.
		body := map[string]any{
			"vectors": map[string]any{
				"size":     q.dimension,
				"distance": "Cosine",
			},
		}
		resp, err = q.do(ctx, http.MethodPut, url, body)
		if err != nil {
			q.ensureErr = err
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			b, _ := io.ReadAll(resp.Body)
			q.ensureErr = fmt.Errorf("failed to create collection: %s %s", resp.Status, string(b))
		}
	})
	return q.ensureErr
}

// Upsert indexes a point, replacing any existing point with the same ID.
func (q *Index) Upsert(ctx context.Context, point vectorstore.Point) error {
	if len(point.Vector) == 0 {
		return vectorstore.ErrEmptyVector
	}
	if q.dimension > 0 && len(point.Vector) != q.dimension {
		return fmt.Errorf("%w: got %d, want %d", vectorstore.ErrDimensionMismatch, len(point.Vector), q.dimension)
	}
	if err := q.ensureCollection(ctx); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}

	body := map[string]any{
		"points": []any{map[string]any{
			"id":      point.ID,
			"vector":  point.Vector,
			"payload": point.Payload,
		}},
	}

	url := fmt.Sprintf("%s/collections/%s/points", q.url, q.collection)
	resp, err := q.do(ctx, http.MethodPut, url, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("qdrant upsert failed: %s %s", resp.Status, string(b))
	}
	return nil
}

// Query finds the limit nearest points to the given vector.
func (q *Index) Query(ctx context.Context, vector []float32, limit int) ([]vectorstore.ScoredPoint, error) {
	if len(vector) == 0 {
		return nil, vectorstore.ErrEmptyVector
	}
	if limit <= 0 {
		return nil, vectorstore.ErrInvalidLimit
	}
	if err := q.ensureCollection(ctx); err != nil {
		return nil, fmt.Errorf("ensure collection: %w", err)
	}

	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}

	url := fmt.Sprintf("%s/collections/%s/points/search", q.url, q.collection)
	resp, err := q.do(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("qdrant search failed: %s %s", resp.Status, string(b))
	}

	var result struct {
		Result []struct {
			ID      string              `json:"id"`
			Score   float32             `json:"score"`
			Payload vectorstore.Payload `json:"payload"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	points := make([]vectorstore.ScoredPoint, 0, len(result.Result))
	for _, r := range result.Result {
		points = append(points, vectorstore.ScoredPoint{
			ID:      r.ID,
			Score:   r.Score,
			Payload: r.Payload,
		})
	}
	return points, nil
}

// Ping verifies the index is reachable.
func (q *Index) Ping(ctx context.Context) error {
	resp, err := q.do(ctx, http.MethodGet, q.url+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("qdrant health check failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant unhealthy: %s", resp.Status)
	}
	return nil
}

func (q *Index) do(ctx context.Context, method, url string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}
	return q.client.Do(req)
}
