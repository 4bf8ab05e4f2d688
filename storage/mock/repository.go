package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/calyptra/docstream/core"
	"github.com/calyptra/docstream/storage"
)

// MockRepository is a test double for storage.DocumentRepository backed by an
// in-memory map. Default behavior is a working repository; individual
// operations can be overridden via function fields to inject failures.
type MockRepository struct {
	InsertFunc        func(ctx context.Context, doc *core.Document) error
	GetFunc           func(ctx context.Context, id string) (*core.Document, error)
	UpdateStatusFunc  func(ctx context.Context, id string, status core.Status) error
	MarkProcessedFunc func(ctx context.Context, id string, preview string) error
	ListRecentFunc    func(ctx context.Context, limit int) ([]*core.Document, error)
	PingFunc          func(ctx context.Context) error

	mu   sync.RWMutex
	docs map[string]*core.Document
}

var _ storage.DocumentRepository = (*MockRepository)(nil)

// NewMockRepository creates an empty in-memory repository.
// Note: Returns concrete type to allow behavior injection and assertions.
func NewMockRepository() *MockRepository {
	return &MockRepository{docs: make(map[string]*core.Document)}
}

// InsertDocument adds a document to the in-memory map.
func (m *MockRepository) InsertDocument(ctx context.Context, doc *core.Document) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, doc)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[doc.ID]; ok {
		return fmt.Errorf("%w: %s", storage.ErrDuplicateKey, doc.ID)
	}
	cp := *doc
	m.docs[doc.ID] = &cp
	return nil
}

// GetDocument retrieves a document by ID.
func (m *MockRepository) GetDocument(ctx context.Context, id string) (*core.Document, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	cp := *doc
	return &cp, nil
}

// UpdateStatus transitions a stored document's status.
func (m *MockRepository) UpdateStatus(ctx context.Context, id string, status core.Status) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[id]
	if !ok {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	doc.Status = status
	return nil
}

// MarkProcessed sets processed status and the preview in one step.
func (m *MockRepository) MarkProcessed(ctx context.Context, id string, preview string) error {
	if m.MarkProcessedFunc != nil {
		return m.MarkProcessedFunc(ctx, id, preview)
	}

	if len(preview) > core.PreviewLimit {
		preview = preview[:core.PreviewLimit]
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[id]
	if !ok {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	doc.Status = core.StatusProcessed
	doc.TextPreview = preview
	return nil
}

// ListRecent returns documents ordered by upload time descending.
func (m *MockRepository) ListRecent(ctx context.Context, limit int) ([]*core.Document, error) {
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, limit)
	}
	if limit <= 0 {
		return nil, storage.ErrInvalidLimit
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := make([]*core.Document, 0, len(m.docs))
	for _, doc := range m.docs {
		cp := *doc
		docs = append(docs, &cp)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})
	if len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

// Ping reports the repository as reachable unless overridden.
func (m *MockRepository) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

// Close is a no-op.
func (m *MockRepository) Close() error {
	return nil
}

// Len returns the number of stored documents, for test assertions.
func (m *MockRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}
