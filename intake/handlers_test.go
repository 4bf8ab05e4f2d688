package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*serviceFixture, http.Handler) {
	t.Helper()
	f := newServiceFixture(t)
	return f, NewHandler(f.service, nil).Routes()
}

func multipartUpload(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandler_Upload(t *testing.T) {
	f, h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartUpload(t, "report.pdf", []byte("ESG disclosure content...")))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["id"])
	assert.Equal(t, "queued", resp["status"])

	assert.Equal(t, 1, f.queue.Published())
}

func TestHandler_UploadRequiresFileField(t *testing.T) {
	_, h := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewBufferString("plain body"))
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_UploadRejectsGet(t *testing.T) {
	_, h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/upload", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandler_SearchRequiresQuery(t *testing.T) {
	_, h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Search(t *testing.T) {
	f, h := newTestHandler(t)
	f.seedIndex(t, "carbon accounting methodology", "carbon.pdf")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?query=carbon", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "carbon", resp.Query)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "carbon.pdf", resp.Results[0].Filename)
}

func TestHandler_SearchReplaysCachedBodyExactly(t *testing.T) {
	f, h := newTestHandler(t)
	f.seedIndex(t, "water usage metrics", "water.csv")

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/search?query=water", nil))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/search?query=water", nil))
	require.Equal(t, http.StatusOK, second.Code)

	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())
}

func TestHandler_Documents(t *testing.T) {
	f, h := newTestHandler(t)

	_, err := f.service.Upload(context.Background(), "listed.txt", []byte("content"))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var summaries []DocumentSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "listed.txt", summaries[0].Filename)
	assert.False(t, summaries[0].Processed)
}

func TestHandler_Status(t *testing.T) {
	_, h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var report HealthReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "operational", report.Status)
	assert.Len(t, report.Services, 5)
}

func TestHandler_StatusStays200WhenDegraded(t *testing.T) {
	f := newServiceFixture(t)
	require.NoError(t, f.queue.Close())
	h := NewHandler(f.service, nil).Routes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var report HealthReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "degraded", report.Status)
	assert.Equal(t, "disconnected", report.Services["message_channel"])
}
