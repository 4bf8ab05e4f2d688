package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calyptra/docstream/vectorstore"
)

const testID = "3e0c3b2a-9f1e-4d7c-8a6b-2f4e1d0c9b8a"

// fakeQdrant emulates the subset of the Qdrant REST API the client uses.
type fakeQdrant struct {
	points   map[string]map[string]any
	upserts  int
	searches int
	apiKeys  []string
}

func newFakeQdrant() *fakeQdrant {
	return &fakeQdrant{points: make(map[string]map[string]any)}
}

func (f *fakeQdrant) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("GET /collections/documents", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("PUT /collections/documents/points", func(w http.ResponseWriter, r *http.Request) {
		f.apiKeys = append(f.apiKeys, r.Header.Get("api-key"))
		var body struct {
			Points []map[string]any `json:"points"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		for _, p := range body.Points {
			f.points[p["id"].(string)] = p
		}
		f.upserts++
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("POST /collections/documents/points/search", func(w http.ResponseWriter, r *http.Request) {
		f.searches++
		var results []map[string]any
		for id, p := range f.points {
			results = append(results, map[string]any{
				"id":      id,
				"score":   0.87,
				"payload": p["payload"],
			})
		}
		json.NewEncoder(w).Encode(map[string]any{"result": results})
	})

	return mux
}

func setupIndex(t *testing.T) (*Index, *fakeQdrant) {
	t.Helper()

	fake := newFakeQdrant()
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	idx, err := NewIndex(Config{
		URL:        server.URL,
		APIKey:     "secret",
		Collection: "documents",
		Dimension:  3,
	})
	require.NoError(t, err)
	return idx, fake
}

func TestNewIndex_Validation(t *testing.T) {
	_, err := NewIndex(Config{Collection: "documents"})
	assert.Error(t, err)

	_, err = NewIndex(Config{URL: "http://localhost:6333"})
	assert.Error(t, err)
}

func TestIndex_UpsertThenQuery(t *testing.T) {
	idx, fake := setupIndex(t)
	ctx := context.Background()

	point := vectorstore.Point{
		ID:     testID,
		Vector: []float32{0.1, 0.2, 0.3},
		Payload: vectorstore.Payload{
			Text:     "ESG disclosure content...",
			Filename: "report.pdf",
			DocID:    testID,
		},
	}
	require.NoError(t, idx.Upsert(ctx, point))
	assert.Equal(t, 1, fake.upserts)
	assert.Equal(t, []string{"secret"}, fake.apiKeys, "api key header must be sent")

	hits, err := idx.Query(ctx, []float32{0.1, 0.2, 0.3}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, testID, hits[0].ID)
	assert.Equal(t, "report.pdf", hits[0].Payload.Filename)
	assert.Equal(t, testID, hits[0].Payload.DocID)
	assert.InDelta(t, 0.87, hits[0].Score, 0.001)
}

func TestIndex_UpsertIsIdempotent(t *testing.T) {
	idx, fake := setupIndex(t)
	ctx := context.Background()

	point := vectorstore.Point{
		ID:      testID,
		Vector:  []float32{0.1, 0.2, 0.3},
		Payload: vectorstore.Payload{Text: "first", DocID: testID},
	}
	require.NoError(t, idx.Upsert(ctx, point))

	point.Payload.Text = "second"
	require.NoError(t, idx.Upsert(ctx, point))

	assert.Len(t, fake.points, 1, "same ID must overwrite, not append")
	hits, err := idx.Query(ctx, []float32{0.1, 0.2, 0.3}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "second", hits[0].Payload.Text)
}

func TestIndex_UpsertValidation(t *testing.T) {
	idx, _ := setupIndex(t)
	ctx := context.Background()

	err := idx.Upsert(ctx, vectorstore.Point{ID: testID})
	assert.ErrorIs(t, err, vectorstore.ErrEmptyVector)

	err = idx.Upsert(ctx, vectorstore.Point{ID: testID, Vector: []float32{0.1}})
	assert.ErrorIs(t, err, vectorstore.ErrDimensionMismatch)
}

func TestIndex_QueryValidation(t *testing.T) {
	idx, _ := setupIndex(t)
	ctx := context.Background()

	_, err := idx.Query(ctx, nil, 3)
	assert.ErrorIs(t, err, vectorstore.ErrEmptyVector)

	_, err = idx.Query(ctx, []float32{0.1, 0.2, 0.3}, 0)
	assert.ErrorIs(t, err, vectorstore.ErrInvalidLimit)
}

func TestIndex_Ping(t *testing.T) {
	idx, _ := setupIndex(t)
	assert.NoError(t, idx.Ping(context.Background()))
}

func TestIndex_PingUnreachable(t *testing.T) {
	idx, err := NewIndex(Config{
		URL:        "http://127.0.0.1:1", // nothing listens here
		Collection: "documents",
	})
	require.NoError(t, err)
	assert.Error(t, idx.Ping(context.Background()))
}

func TestIndex_CreatesMissingCollection(t *testing.T) {
	created := false
	mux := http.NewServeMux()
	mux.HandleFunc("GET /collections/documents", func(w http.ResponseWriter, r *http.Request) {
		if created {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("PUT /collections/documents", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		vectors := body["vectors"].(map[string]any)
		assert.Equal(t, float64(3), vectors["size"])
		assert.Equal(t, "Cosine", vectors["distance"])
		created = true
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("PUT /collections/documents/points", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	idx, err := NewIndex(Config{URL: server.URL, Collection: "documents", Dimension: 3})
	require.NoError(t, err)

	err = idx.Upsert(context.Background(), vectorstore.Point{
		ID:     testID,
		Vector: []float32{0.1, 0.2, 0.3},
	})
	require.NoError(t, err)
	assert.True(t, created, "collection must be created when missing")
}
