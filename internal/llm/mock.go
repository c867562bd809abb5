package llm

import "context"

// MockClient permite tests sin llamar a un LLM real.
type MockClient struct {
	Response  string
	Err       error
	Embedding []float32
	EmbedErr  error

	// EmbedFunc permite embeddings deterministas por texto en tests.
	EmbedFunc func(text string) ([]float32, error)
}

func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	return m.Response, m.Err
}

func (m *MockClient) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if m.EmbedFunc != nil {
		return m.EmbedFunc(text)
	}
	return m.Embedding, m.EmbedErr
}
