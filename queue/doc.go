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


// Package queue defines the message channel between intake and workers.
//
// The channel decouples upload latency from processing latency and carries
// an at-least-once delivery contract: workers must tolerate duplicate
// deliveries, and acknowledgment happens only after durable completion.
//
// Implementations:
//
//   - queue/nats: JetStream work queue with explicit acks and a bounded
//     redelivery ceiling
//   - queue/inproc: channel-backed queue for tests, with redelivery on Nak
package queue
