package mock

import (
	"context"
	"hash/fnv"
	"math"
)

// DefaultDimension is the vector length the mock produces unless overridden.
const DefaultDimension = 384

// MockEmbedder is a test double for ai.Embedder. The default behavior maps
// each text to a stable unit vector, so equal inputs always embed equal and
// similarity comparisons stay meaningful without a model. Function fields
// override individual operations to inject failures.
type MockEmbedder struct {
	// EmbedTextFunc replaces EmbedText when set.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc replaces EmbedTexts when set.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	// Dim overrides the reported vector dimension. Zero means DefaultDimension.
	Dim int

	callCount int
}

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
// Note: Returns concrete type to allow test assertions via CallCount().
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// EmbedText returns the stable vector for text.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.callCount++

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}

	return generateDeterministicVector(text, m.Dimension()), nil
}

// EmbedTexts returns stable vectors for every text, in input order.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.callCount++

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = generateDeterministicVector(text, m.Dimension())
	}
	return embeddings, nil
}

// Dimension returns the mock's vector length.
func (m *MockEmbedder) Dimension() int {
	if m.Dim > 0 {
		return m.Dim
	}
	return DefaultDimension
}

// CallCount returns the number of times any embed method was called.
func (m *MockEmbedder) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockEmbedder) Reset() {
	m.callCount = 0
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

// generateDeterministicVector derives a unit vector from text: an FNV-1a
// hash seeds a linear congruential generator that fills the components,
// then the result is L2-normalized.
func generateDeterministicVector(text string, dim int) []float32 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	vector := make([]float32, dim)
	var sumSquares float64
	for i := range vector {
		seed = seed*6364136223846793005 + 1442695040888963407
		// Centered on zero so components spread across both signs.
		vector[i] = float32(seed%2001)/1000.0 - 1.0
		sumSquares += float64(vector[i]) * float64(vector[i])
	}

	if sumSquares > 0 {
		inv := float32(1.0 / math.Sqrt(sumSquares))
		for i := range vector {
			vector[i] *= inv
		}
	}

	return vector
}
