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


// Package worker consumes document processing tasks and runs the
// fetch-extract-embed-index-commit pipeline.
//
// The worker is the only component that writes to three external systems in
// one logical operation, so its ordering rules carry the system's
// consistency story:
//
//   - the vector upsert happens strictly before the metadata commit
//   - the message is acknowledged only after the commit, or after a
//     failure has been durably recorded
//   - malformed payloads are terminated, never retried
//   - missing raw objects mark the document failed and acknowledge
//   - everything else is transient and returns to the channel
//
// Tasks within one process run serially on a single pool slot. Scale-out
// is horizontal: more processes competing on the same durable queue.
package worker
