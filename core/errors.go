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

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidTask indicates a ProcessingTask failed validation.
	ErrInvalidTask = errors.New("invalid processing task")

	// ErrEmptyID indicates a required document ID is missing.
	ErrEmptyID = errors.New("document id cannot be empty")

	// ErrInvalidID indicates a document ID that is not a well-formed UUID.
	ErrInvalidID = errors.New("document id is not a valid uuid")

	// ErrEmptyFilename indicates the Filename field is empty.
	ErrEmptyFilename = errors.New("filename cannot be empty")

	// ErrInvalidStatus indicates an unknown lifecycle status value.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidTransition indicates an illegal lifecycle status change.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrInvalidMaxAttempts indicates a retry ceiling that is not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than zero")
)
