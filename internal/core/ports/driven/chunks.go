package driven

import (
	"context"

	"github.com/secops-tools/socrag-cli/internal/core/domain"
)

// ChunkSource supplies the ordered (text, metadata) pairs produced by
// the external chunker. Metadata may still contain complex values at
// this boundary; the indexer flattens them before adding.
type ChunkSource interface {
	// Read returns all chunks in source order.
	Read(ctx context.Context) ([]domain.Chunk, error)
}
