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

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/calyptra/docstream/ai"
	"github.com/calyptra/docstream/cache"
	"github.com/calyptra/docstream/core"
	"github.com/calyptra/docstream/queue"
	"github.com/calyptra/docstream/storage"
	"github.com/calyptra/docstream/vectorstore"
)

const (
	// searchLimit is the fixed number of nearest neighbors returned per query.
	searchLimit = 3

	// listLimit bounds the document listing page.
	listLimit = 10

	// cacheKeyPrefix namespaces query cache entries.
	cacheKeyPrefix = "search:"

	// cacheTTL is how long a cached search response stays valid.
	cacheTTL = 5 * time.Minute

	// probeTimeout bounds each dependency health probe independently.
	probeTimeout = 2 * time.Second
)

// Service is the intake and query boundary: it accepts uploads, answers
// searches and listings, and reports dependency health. It never processes
// documents itself; processing happens on the other side of the task queue.
type Service struct {
	repository storage.DocumentRepository
	objects    storage.ObjectStore
	index      vectorstore.Index
	provider   ai.Provider
	tasks      queue.TaskQueue
	responses  cache.QueryCache
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithClock overrides the service's time source. Test use only.
func WithClock(now func() time.Time) Option {
	return func(s *Service) error {
		if now != nil {
			s.now = now
		}
		return nil
	}
}

// NewService creates the intake service.
func NewService(
	repository storage.DocumentRepository,
	objects storage.ObjectStore,
	index vectorstore.Index,
	provider ai.Provider,
	tasks queue.TaskQueue,
	responses cache.QueryCache,
	opts ...Option,
) (*Service, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if objects == nil {
		return nil, ErrObjectStoreRequired
	}
	if index == nil {
		return nil, ErrIndexRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}
	if tasks == nil {
		return nil, ErrQueueRequired
	}
	if responses == nil {
		return nil, ErrCacheRequired
	}

	s := &Service{
		repository: repository,
		objects:    objects,
		index:      index,
		provider:   provider,
		tasks:      tasks,
		responses:  responses,
		logger:     slog.Default(),
		now:        time.Now,
	}

	for _, opt := range opts {
		if optErr := opt(s); optErr != nil {
			return nil, optErr
		}
	}

	return s, nil
}

// Upload accepts raw document bytes and hands them to the pipeline. It
// returns as soon as the task is published; processing is asynchronous.
//
// Write order is deliberate: object store first, then the metadata row, then
// the task. A failed object write aborts before any row exists, so the
// metadata store never references bytes that were not stored. A failed
// metadata insert orphans a blob, which is acceptable garbage. A failed
// publish leaves the row in uploaded status, an observable stuck state.
func (s *Service) Upload(ctx context.Context, filename string, data []byte) (*core.Document, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, core.ErrEmptyFilename
	}
	if len(data) == 0 {
		return nil, ErrEmptyUpload
	}

	id := uuid.NewString()
	key := storage.ObjectKey(id, filename)

	if err := s.objects.Put(ctx, key, data); err != nil {
		return nil, fmt.Errorf("storing raw bytes: %w", err)
	}

	doc := &core.Document{
		ID:         id,
		Filename:   filename,
		UploadedAt: s.now().UTC(),
		Status:     core.StatusUploaded,
		Checksum:   core.ChecksumBytes(data),
	}
	if err := s.repository.InsertDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("recording document metadata: %w", err)
	}

	task := core.ProcessingTask{ID: id, Filename: filename}
	if err := s.tasks.Publish(ctx, task); err != nil {
		return nil, fmt.Errorf("publishing processing task for %s: %w", id, err)
	}

	// Observability write only: the publish above is what makes the
	// document queued. A failure here is logged, not surfaced.
	if err := s.repository.UpdateStatus(ctx, id, core.StatusQueued); err != nil {
		s.logger.Warn("error recording queued status", "document_id", id, "err", err)
	}
	doc.Status = core.StatusQueued

	s.logger.Info("document accepted",
		"document_id", id, "filename", filename, "bytes", len(data))
	return doc, nil
}

// SearchResult is one similarity hit in a search response.
type SearchResult struct {
	ID       string  `json:"id"`
	Score    float32 `json:"score"`
	Text     string  `json:"text"`
	Filename string  `json:"filename"`
}

// SearchResponse is the serialized answer to a search query.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

// Search answers a similarity query. A cache hit replays the stored bytes
// unmodified; a miss embeds the query, asks the index for the nearest
// documents, caches the serialized response, and returns it. The cache is
// an optimization only: its failures are logged and search proceeds.
func (s *Service) Search(ctx context.Context, query string) ([]byte, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	key := cacheKeyPrefix + query
	cached, hit, err := s.responses.Get(ctx, key)
	if err != nil {
		s.logger.Warn("error reading response cache", "err", err)
	} else if hit {
		s.logger.Debug("cache hit", "query", query)
		return cached, nil
	}

	embedder, err := s.provider.Embedder()
	if err != nil {
		return nil, fmt.Errorf("obtaining embedder: %w", err)
	}
	vector, err := embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	hits, err := s.index.Query(ctx, vector, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("querying vector index: %w", err)
	}

	resp := SearchResponse{
		Query:   query,
		Results: make([]SearchResult, 0, len(hits)),
	}
	for _, hit := range hits {
		resp.Results = append(resp.Results, SearchResult{
			ID:       hit.ID,
			Score:    hit.Score,
			Text:     hit.Payload.Text,
			Filename: hit.Payload.Filename,
		})
	}

	body, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encoding search response: %w", err)
	}

	if err := s.responses.Set(ctx, key, body, cacheTTL); err != nil {
		s.logger.Warn("error writing response cache", "err", err)
	}

	return body, nil
}

// DocumentSummary is one row of the document listing.
type DocumentSummary struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	UploadDate  time.Time `json:"upload_date"`
	Processed   bool      `json:"processed"`
	TextPreview string    `json:"text_preview"`
}

// ListDocuments returns the most recently uploaded documents, newest first.
func (s *Service) ListDocuments(ctx context.Context) ([]DocumentSummary, error) {
	docs, err := s.repository.ListRecent(ctx, listLimit)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	summaries := make([]DocumentSummary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, DocumentSummary{
			ID:          doc.ID,
			Filename:    doc.Filename,
			UploadDate:  doc.UploadedAt,
			Processed:   doc.Status.Processed(),
			TextPreview: doc.TextPreview,
		})
	}
	return summaries, nil
}

// HealthReport is the per-dependency health map the status endpoint serves.
type HealthReport struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// Dependency health strings.
const (
	healthConnected    = "connected"
	healthDisconnected = "disconnected"

	statusOperational = "operational"
	statusDegraded    = "degraded"
)

// Status probes every dependency independently, each under its own short
// timeout. One dependency failing never hides the health of the others and
// never becomes a service-wide error.
func (s *Service) Status(ctx context.Context) HealthReport {
	probes := map[string]func(context.Context) error{
		"metadata_store":  s.repository.Ping,
		"object_store":    s.objects.Ping,
		"vector_index":    s.index.Ping,
		"message_channel": s.tasks.Ping,
		"cache":           s.responses.Ping,
	}

	report := HealthReport{
		Status:   statusOperational,
		Services: make(map[string]string, len(probes)),
	}

	for name, probe := range probes {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := probe(probeCtx)
		cancel()

		if err != nil {
			s.logger.Warn("dependency probe failed", "dependency", name, "err", err)
			report.Services[name] = healthDisconnected
			report.Status = statusDegraded
			continue
		}
		report.Services[name] = healthConnected
	}

	return report
}
