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


package ai

import (
	"errors"
	"strings"
)

// DefaultDimension is the vector length of the default embedding model.
const DefaultDimension = 384

// Config holds configuration for the embedding service.
type Config struct {
	// Host is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server
	Host string

	// Model is the model identifier to use for text embeddings.
	// Example: "all-minilm", "text-embedding-3-small"
	Model string

	// Dimension is the fixed length of vectors the model produces.
	// Default: 384
	Dimension int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the embedding service host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithModel sets the embedding model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithDimension sets the embedding vector length.
func WithDimension(dim int) ConfigOption {
	return func(c *Config) {
		c.Dimension = dim
	}
}

// DefaultConfig returns a Config with default values applied.
func DefaultConfig(opts ...ConfigOption) *Config {
	c := &Config{
		Host:      "http://localhost:11434/v1",
		Model:     "all-minilm",
		Dimension: DefaultDimension,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validation errors
var (
	// ErrMissingHost indicates the embedding host URL is not configured.
	ErrMissingHost = errors.New("embedding host is required")

	// ErrMissingModel indicates the embedding model is not configured.
	ErrMissingModel = errors.New("embedding model is required")

	// ErrInvalidDimension indicates a non-positive vector dimension.
	ErrInvalidDimension = errors.New("embedding dimension must be greater than zero")
)

// Validate checks the configuration and normalizes the host URL.
// A configuration error here is fatal at startup: the process must not
// attempt to serve traffic with a broken embedding setup.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return ErrMissingHost
	}
	if strings.TrimSpace(c.Model) == "" {
		return ErrMissingModel
	}
	if c.Dimension <= 0 {
		return ErrInvalidDimension
	}
	c.Host = strings.TrimRight(strings.TrimSpace(c.Host), "/")
	return nil
}
