package embedding

import (
	"context"
	"crypto/sha256"
)

// MockClient produces deterministic embeddings from a content hash so that
// identical texts get identical vectors. For tests and keyless development.
type MockClient struct {
	dims int
}

func NewMockClient() *MockClient {
	return &MockClient{dims: 64}
}

func (c *MockClient) Embed(ctx context.Context, text string) ([]float32, error) {
	sum := sha256.Sum256([]byte(text))
	vec := make([]float32, c.dims)
	for i := 0; i < c.dims; i++ {
		vec[i] = float32(sum[i%len(sum)])/255.0 - 0.5
	}
	return vec, nil
}
