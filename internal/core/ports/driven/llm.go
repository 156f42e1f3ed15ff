package driven

import "context"

// Generator turns an assembled context block plus the original query
// into prose. The core makes no assumptions about the response format.
type Generator interface {
	// Generate produces a completion for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// ModelName returns the configured generation model name.
	ModelName() string

	// Close releases resources.
	Close() error
}
