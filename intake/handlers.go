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
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/calyptra/docstream/core"
)

// maxUploadBytes bounds multipart upload memory and body size.
const maxUploadBytes = 32 << 20 // 32 MiB

// Handler exposes the intake service over HTTP.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler wraps a Service with its HTTP surface.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes returns the intake mux:
//
//	POST /upload     multipart file upload
//	GET  /search     ?query= similarity search
//	GET  /documents  recent document listing
//	GET  /status     per-dependency health
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/upload", h.Upload)
	mux.HandleFunc("/search", h.Search)
	mux.HandleFunc("/documents", h.Documents)
	mux.HandleFunc("/status", h.Status)
	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// Upload handles POST /upload. The file arrives as the multipart form field
// "file"; the response acknowledges acceptance, not completion.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart form field 'file' is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "error reading upload")
		return
	}

	doc, err := h.service.Upload(r.Context(), header.Filename, data)
	if err != nil {
		if errors.Is(err, core.ErrEmptyFilename) || errors.Is(err, ErrEmptyUpload) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("upload failed", "filename", header.Filename, "err", err)
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"id":     doc.ID,
		"status": string(doc.Status),
	})
}

// Search handles GET /search?query=. Responses are written byte-for-byte as
// the service produced them, so cached replays are identical to the
// original response.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query := r.URL.Query().Get("query")
	body, err := h.service.Search(r.Context(), query)
	if err != nil {
		if errors.Is(err, ErrEmptyQuery) {
			writeError(w, http.StatusBadRequest, "query parameter is required")
			return
		}
		h.logger.Error("search failed", "query", query, "err", err)
		writeError(w, http.StatusBadGateway, "search unavailable")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// Documents handles GET /documents.
func (h *Handler) Documents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	summaries, err := h.service.ListDocuments(r.Context())
	if err != nil {
		h.logger.Error("listing failed", "err", err)
		writeError(w, http.StatusInternalServerError, "listing unavailable")
		return
	}

	writeJSON(w, http.StatusOK, summaries)
}

// Status handles GET /status. Always 200: degraded dependencies are
// reported in the body, never as a transport-level failure.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, h.service.Status(r.Context()))
}
