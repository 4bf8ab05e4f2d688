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


// Package cache defines the short-lived response cache boundary.
//
// The cache is purely derived state: it memoizes serialized query responses
// under the raw query string and is safe to lose entirely. Correctness of
// search results never depends on its presence.
//
// Implementations:
//
//   - cache/redis: go-redis backed cache with SETEX-style expiry
//   - cache/memory: TTL map for tests
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidTTL indicates a non-positive cache TTL.
var ErrInvalidTTL = errors.New("ttl must be greater than zero")

// QueryCache memoizes serialized query responses.
//
// Keys are raw query strings without normalization: distinct strings with
// equivalent meaning are distinct entries. Expiry is TTL-only; there is no
// invalidation on ingestion, so newly indexed documents may be absent from
// cached results until the TTL elapses.
type QueryCache interface {
	// Get returns the cached value for key and whether it was present.
	// An expired or missing entry is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key for the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Ping verifies the cache is reachable.
	Ping(ctx context.Context) error
}
