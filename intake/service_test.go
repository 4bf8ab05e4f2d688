package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calyptra/docstream/ai"
	aimock "github.com/calyptra/docstream/ai/mock"
	cachememory "github.com/calyptra/docstream/cache/memory"
	"github.com/calyptra/docstream/core"
	"github.com/calyptra/docstream/queue/inproc"
	"github.com/calyptra/docstream/storage"
	storagemock "github.com/calyptra/docstream/storage/mock"
	"github.com/calyptra/docstream/vectorstore"
	vsmemory "github.com/calyptra/docstream/vectorstore/memory"
)

type serviceFixture struct {
	repo     *storagemock.MockRepository
	objects  *storagemock.MockObjectStore
	index    *vsmemory.Index
	embedder *aimock.MockEmbedder
	queue    *inproc.Queue
	cache    *cachememory.Cache
	service  *Service
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	f := &serviceFixture{
		repo:     storagemock.NewMockRepository(),
		objects:  storagemock.NewMockObjectStore(),
		index:    vsmemory.NewIndex(),
		embedder: aimock.NewMockEmbedder(),
		queue:    inproc.NewQueue(),
		cache:    cachememory.NewCache(),
	}
	t.Cleanup(func() { _ = f.queue.Close() })

	svc, err := NewService(f.repo, f.objects, f.index,
		&ai.Static{E: f.embedder}, f.queue, f.cache)
	require.NoError(t, err)
	f.service = svc
	return f
}

// seedIndex indexes a document the way a worker would.
func (f *serviceFixture) seedIndex(t *testing.T, text, filename string) string {
	t.Helper()

	id := uuid.NewString()
	vector, err := f.embedder.EmbedText(context.Background(), text)
	require.NoError(t, err)
	require.NoError(t, f.index.Upsert(context.Background(), vectorstore.Point{
		ID:     id,
		Vector: vector,
		Payload: vectorstore.Payload{
			Text:     text,
			Filename: filename,
			DocID:    id,
		},
	}))
	return id
}

func TestUpload_AcceptsDocument(t *testing.T) {
	f := newServiceFixture(t)

	doc, err := f.service.Upload(context.Background(), "report.pdf", []byte("ESG disclosure content..."))
	require.NoError(t, err)

	assert.NoError(t, core.ValidateID(doc.ID))
	assert.Equal(t, core.StatusQueued, doc.Status)
	assert.NotEmpty(t, doc.Checksum)

	stored, err := f.repo.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusQueued, stored.Status)

	data, err := f.objects.Get(context.Background(), storage.ObjectKey(doc.ID, "report.pdf"))
	require.NoError(t, err)
	assert.Equal(t, []byte("ESG disclosure content..."), data)

	assert.Equal(t, 1, f.queue.Published())
}

func TestUpload_RejectsEmptyInput(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.service.Upload(ctx, "", []byte("content"))
	assert.ErrorIs(t, err, core.ErrEmptyFilename)

	_, err = f.service.Upload(ctx, "empty.txt", nil)
	assert.ErrorIs(t, err, ErrEmptyUpload)

	assert.Equal(t, 0, f.repo.Len())
	assert.Equal(t, 0, f.queue.Published())
}

func TestUpload_ObjectFailureLeavesNoOrphanRow(t *testing.T) {
	f := newServiceFixture(t)
	f.objects.PutFunc = func(context.Context, string, []byte) error {
		return errors.New("object store offline")
	}

	_, err := f.service.Upload(context.Background(), "doomed.txt", []byte("content"))
	require.Error(t, err)

	assert.Equal(t, 0, f.repo.Len())
	assert.Equal(t, 0, f.queue.Published())
}

func TestUpload_MetadataFailureIsLoud(t *testing.T) {
	f := newServiceFixture(t)
	f.repo.InsertFunc = func(context.Context, *core.Document) error {
		return errors.New("metadata store offline")
	}

	_, err := f.service.Upload(context.Background(), "orphan.txt", []byte("content"))
	require.Error(t, err)

	// The blob is orphaned garbage; the failure was not silent.
	assert.Equal(t, 1, f.objects.Len())
	assert.Equal(t, 0, f.queue.Published())
}

func TestUpload_PublishFailureLeavesObservableStuckState(t *testing.T) {
	f := newServiceFixture(t)
	require.NoError(t, f.queue.Close())

	_, err := f.service.Upload(context.Background(), "stuck.txt", []byte("content"))
	require.Error(t, err)

	// The row exists in uploaded status: stuck, but detectable.
	docs, listErr := f.repo.ListRecent(context.Background(), 10)
	require.NoError(t, listErr)
	require.Len(t, docs, 1)
	assert.Equal(t, core.StatusUploaded, docs[0].Status)
}

func TestSearch_MissQueriesIndexAndCaches(t *testing.T) {
	f := newServiceFixture(t)
	f.seedIndex(t, "climate risk assessment", "climate.pdf")

	body, err := f.service.Search(context.Background(), "climate risk")
	require.NoError(t, err)

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "climate risk", resp.Query)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "climate risk assessment", resp.Results[0].Text)
	assert.Equal(t, "climate.pdf", resp.Results[0].Filename)

	assert.Equal(t, 1, f.cache.Len())
}

func TestSearch_HitReplaysCachedBytesUnmodified(t *testing.T) {
	f := newServiceFixture(t)

	sentinel := []byte(`{"query":"q","results":[{"id":"cached"}]}`)
	require.NoError(t, f.cache.Set(context.Background(), "search:q", sentinel, time.Minute))

	body, err := f.service.Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, sentinel, body)
	assert.Equal(t, 0, f.embedder.CallCount())
}

// erroringIndex fails every operation.
type erroringIndex struct{}

func (erroringIndex) Upsert(context.Context, vectorstore.Point) error { return errors.New("down") }
func (erroringIndex) Query(context.Context, []float32, int) ([]vectorstore.ScoredPoint, error) {
	return nil, errors.New("down")
}
func (erroringIndex) Ping(context.Context) error { return errors.New("down") }

func TestSearch_CachedResponseSurvivesIndexOutage(t *testing.T) {
	f := newServiceFixture(t)
	f.seedIndex(t, "supply chain emissions", "emissions.txt")

	first, err := f.service.Search(context.Background(), "emissions")
	require.NoError(t, err)

	// Index goes away; the cached response must replay byte-identically.
	dead, err := NewService(f.repo, f.objects, erroringIndex{},
		&ai.Static{E: f.embedder}, f.queue, f.cache)
	require.NoError(t, err)

	second, err := dead.Search(context.Background(), "emissions")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Uncached queries do fail against the dead index.
	_, err = dead.Search(context.Background(), "something else")
	assert.Error(t, err)
}

func TestSearch_LimitsResults(t *testing.T) {
	f := newServiceFixture(t)
	for i := 0; i < 5; i++ {
		f.seedIndex(t, fmt.Sprintf("annual report volume %d", i), fmt.Sprintf("vol%d.pdf", i))
	}

	body, err := f.service.Search(context.Background(), "annual report")
	require.NoError(t, err)

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Len(t, resp.Results, searchLimit)
}

func TestSearch_RejectsBlankQuery(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.Search(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

// erroringCache fails every operation.
type erroringCache struct{}

func (erroringCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}
func (erroringCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("cache down")
}
func (erroringCache) Ping(context.Context) error { return errors.New("cache down") }

func TestSearch_CacheFailuresAreNotFatal(t *testing.T) {
	f := newServiceFixture(t)
	f.seedIndex(t, "governance policy", "gov.pdf")

	svc, err := NewService(f.repo, f.objects, f.index,
		&ai.Static{E: f.embedder}, f.queue, erroringCache{})
	require.NoError(t, err)

	body, err := svc.Search(context.Background(), "governance")
	require.NoError(t, err)

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Len(t, resp.Results, 1)
}

func TestListDocuments_NewestFirstBounded(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	var newest string
	for i := 0; i < 12; i++ {
		id := uuid.NewString()
		status := core.StatusQueued
		if i%2 == 0 {
			status = core.StatusProcessed
		}
		require.NoError(t, f.repo.InsertDocument(ctx, &core.Document{
			ID:         id,
			Filename:   fmt.Sprintf("doc-%d.txt", i),
			UploadedAt: base.Add(time.Duration(i) * time.Minute),
			Status:     status,
		}))
		newest = id
	}

	summaries, err := f.service.ListDocuments(ctx)
	require.NoError(t, err)

	require.Len(t, summaries, listLimit)
	assert.Equal(t, newest, summaries[0].ID)
	for i := 1; i < len(summaries); i++ {
		assert.True(t, summaries[i].UploadDate.Before(summaries[i-1].UploadDate))
	}
}

func TestListDocuments_MapsProcessedFlag(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	id := uuid.NewString()
	require.NoError(t, f.repo.InsertDocument(ctx, &core.Document{
		ID:          id,
		Filename:    "done.txt",
		UploadedAt:  time.Now().UTC(),
		Status:      core.StatusProcessed,
		TextPreview: "first lines of the document",
	}))

	summaries, err := f.service.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.True(t, summaries[0].Processed)
	assert.Equal(t, "first lines of the document", summaries[0].TextPreview)
}

func TestStatus_AllHealthy(t *testing.T) {
	f := newServiceFixture(t)

	report := f.service.Status(context.Background())

	assert.Equal(t, statusOperational, report.Status)
	for name, state := range report.Services {
		assert.Equal(t, healthConnected, state, name)
	}
	assert.Len(t, report.Services, 5)
}

func TestStatus_IsolatesSingleFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.repo.PingFunc = func(context.Context) error {
		return errors.New("connection refused")
	}

	report := f.service.Status(context.Background())

	assert.Equal(t, statusDegraded, report.Status)
	assert.Equal(t, healthDisconnected, report.Services["metadata_store"])
	for _, name := range []string{"object_store", "vector_index", "message_channel", "cache"} {
		assert.Equal(t, healthConnected, report.Services[name], name)
	}
}

func TestStatus_DeadIndexDoesNotHideOthers(t *testing.T) {
	f := newServiceFixture(t)

	svc, err := NewService(f.repo, f.objects, erroringIndex{},
		&ai.Static{E: f.embedder}, f.queue, f.cache)
	require.NoError(t, err)

	report := svc.Status(context.Background())

	assert.Equal(t, statusDegraded, report.Status)
	assert.Equal(t, healthDisconnected, report.Services["vector_index"])
	assert.Equal(t, healthConnected, report.Services["metadata_store"])
	assert.Equal(t, healthConnected, report.Services["message_channel"])
}

func TestNewService_RequiresDependencies(t *testing.T) {
	f := newServiceFixture(t)
	provider := &ai.Static{E: f.embedder}

	_, err := NewService(nil, f.objects, f.index, provider, f.queue, f.cache)
	assert.ErrorIs(t, err, ErrRepositoryRequired)

	_, err = NewService(f.repo, nil, f.index, provider, f.queue, f.cache)
	assert.ErrorIs(t, err, ErrObjectStoreRequired)

	_, err = NewService(f.repo, f.objects, nil, provider, f.queue, f.cache)
	assert.ErrorIs(t, err, ErrIndexRequired)

	_, err = NewService(f.repo, f.objects, f.index, nil, f.queue, f.cache)
	assert.ErrorIs(t, err, ErrProviderRequired)

	_, err = NewService(f.repo, f.objects, f.index, provider, nil, f.cache)
	assert.ErrorIs(t, err, ErrQueueRequired)

	_, err = NewService(f.repo, f.objects, f.index, provider, f.queue, nil)
	assert.ErrorIs(t, err, ErrCacheRequired)
}
