package driving

import (
	"context"

	"github.com/secops-tools/socrag-cli/internal/core/domain"
)

// IndexerService builds the vector index from a chunk source.
type IndexerService interface {
	// Build reads all chunks, embeds them in batches, adds them to the
	// index, extracts rule-key records from rule_key chunks, and
	// persists. A failed batch aborts the build; previously added
	// batches remain committed.
	Build(ctx context.Context) (domain.IndexStats, error)
}
