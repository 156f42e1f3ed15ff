package driven

import "context"

// EmbeddingService converts text batches into fixed-width float vectors.
//
// Implementations do no caching, retrying or internal batching; callers
// own batch sizing. The returned matrix has one row per input text, all
// rows the same width.
type EmbeddingService interface {
	// EmbedBatch embeds the given texts, returning a (len(texts), D)
	// matrix. An empty input returns a zero-row matrix without calling
	// the backing service. A backend response that is neither 1-D nor
	// 2-D fails with domain.ErrEmbeddingShape; connectivity failures
	// wrap domain.ErrEmbeddingUnavailable.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// EnsureModel checks the backend's model registry and triggers a
	// pull when the configured model is absent, blocking until it is
	// available or failing with domain.ErrModelUnavailable.
	EnsureModel(ctx context.Context) error

	// ModelName returns the configured embedding model name.
	ModelName() string

	// Ping validates the backend is reachable without running inference.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
