package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	assert.Equal(t, "all-minilm", cfg.Model)
	assert.Equal(t, DefaultDimension, cfg.Dimension)
	require.NoError(t, cfg.Validate())
}

func TestConfigOptions(t *testing.T) {
	cfg := DefaultConfig(
		WithHost("http://embeddings.internal:8080/v1"),
		WithModel("text-embedding-3-small"),
		WithDimension(1536),
	)

	assert.Equal(t, "http://embeddings.internal:8080/v1", cfg.Host)
	assert.Equal(t, "text-embedding-3-small", cfg.Model)
	assert.Equal(t, 1536, cfg.Dimension)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr error
	}{
		{
			name:    "valid",
			cfg:     &Config{Host: "http://localhost:11434/v1", Model: "all-minilm", Dimension: 384},
			wantErr: nil,
		},
		{
			name:    "missing host",
			cfg:     &Config{Model: "all-minilm", Dimension: 384},
			wantErr: ErrMissingHost,
		},
		{
			name:    "whitespace host",
			cfg:     &Config{Host: "   ", Model: "all-minilm", Dimension: 384},
			wantErr: ErrMissingHost,
		},
		{
			name:    "missing model",
			cfg:     &Config{Host: "http://localhost:11434/v1", Dimension: 384},
			wantErr: ErrMissingModel,
		},
		{
			name:    "zero dimension",
			cfg:     &Config{Host: "http://localhost:11434/v1", Model: "all-minilm"},
			wantErr: ErrInvalidDimension,
		},
		{
			name:    "negative dimension",
			cfg:     &Config{Host: "http://localhost:11434/v1", Model: "all-minilm", Dimension: -1},
			wantErr: ErrInvalidDimension,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConfigValidate_NormalizesHost(t *testing.T) {
	cfg := &Config{Host: " http://localhost:11434/v1/ ", Model: "all-minilm", Dimension: 384}

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
}
