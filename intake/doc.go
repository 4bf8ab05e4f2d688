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


// Package intake is the synchronous boundary of the system: uploads in,
// search results and listings out. Upload returns as soon as the
// processing task is published; everything after that is the worker's job.
//
// The upload write order encodes the consistency contract. Raw bytes land
// in the object store before the metadata row exists, so the row never
// points at missing bytes. The task publishes after the row exists, so the
// channel never carries an ID the metadata store does not know.
package intake
