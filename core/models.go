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


package core

import (
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// Status describes where a document sits in its processing lifecycle.
type Status string

const (
	// StatusUploaded means the raw bytes and metadata row exist but no
	// processing task has been published yet.
	StatusUploaded Status = "uploaded"

	// StatusQueued means a processing task has been published to the
	// message channel and a worker will pick it up.
	StatusQueued Status = "queued"

	// StatusProcessed means the document's vector is searchable and its
	// text preview has been written. Terminal for a task attempt.
	StatusProcessed Status = "processed"

	// StatusFailed means processing hit a non-retryable error. Terminal
	// for the attempt, but a re-queue may move the document back to queued.
	StatusFailed Status = "failed"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusUploaded, StatusQueued, StatusProcessed, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s ends a processing attempt.
func (s Status) Terminal() bool {
	return s == StatusProcessed || s == StatusFailed
}

// Processed reports whether the document is searchable. This is the boolean
// the external metadata schema and the listing API expose.
func (s Status) Processed() bool {
	return s == StatusProcessed
}

// CanTransition reports whether moving from s to next is a legal lifecycle
// step. Failed documents may be re-queued for another attempt.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusUploaded:
		return next == StatusQueued || next == StatusFailed
	case StatusQueued:
		return next == StatusProcessed || next == StatusFailed
	case StatusFailed:
		return next == StatusQueued
	}
	return false
}

// PreviewLimit bounds the length of a stored text preview, in bytes.
const PreviewLimit = 200

// Document is the central entity: a user-submitted file together with its
// derived metadata and search artifacts. ID and Checksum are write-once.
type Document struct {
	ID          string
	Filename    string
	UploadedAt  time.Time
	Status      Status
	TextPreview string // empty until processed, at most PreviewLimit bytes
	Checksum    string // BLAKE2b digest of the raw bytes, hex-encoded
}

// ProcessingTask is the ephemeral message handed from intake to a worker.
// The filename is an optimization only: a worker must be able to rebuild
// everything it needs from the document ID by re-reading the stores.
type ProcessingTask struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
}

// ChecksumBytes computes a short content digest using BLAKE2b hashing.
// Identical bytes always produce identical digests, so re-uploads of the
// same content are detectable without fetching the blob.
func ChecksumBytes(data []byte) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ChecksumUint64 returns the digest as a number, for callers that need a
// compact comparable form rather than the hex string.
func ChecksumUint64(data []byte) uint64 {
	h, _ := blake2b.New(8, nil)
	h.Write(data)
	return binary.LittleEndian.Uint64(h.Sum(nil))
}
