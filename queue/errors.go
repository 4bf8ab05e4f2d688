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


package queue

import "errors"

var (
	// ErrMalformedTask indicates a payload that can never decode into a
	// valid processing task. Not retryable.
	ErrMalformedTask = errors.New("malformed task payload")

	// ErrNotConnected indicates the channel connection is down.
	ErrNotConnected = errors.New("message channel not connected")

	// ErrQueueClosed indicates an operation on a closed queue.
	ErrQueueClosed = errors.New("queue is closed")
)
