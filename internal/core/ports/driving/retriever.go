package driving

import (
	"context"

	"github.com/secops-tools/socrag-cli/internal/core/domain"
)

// RetrieverService performs dual-source retrieval: classify, expand,
// embed, search, merge, boost, partition, filter and bound.
type RetrieverService interface {
	// Retrieve runs the full retrieval pipeline for a query.
	// An empty index yields empty buckets without error; an unreachable
	// embedding backend fails the whole retrieval.
	Retrieve(ctx context.Context, query string, opts domain.RetrieveOptions) (domain.RetrievalResult, error)
}

// ContextService renders a retrieval result into the bounded text block
// handed to the generator.
type ContextService interface {
	// BuildContext renders the partitioned hits with source markers,
	// cropping rulebook text to the relevant rule's paragraph when a
	// rule id is in scope. Returns domain.NoContextFound when both
	// buckets are empty.
	BuildContext(result domain.RetrievalResult, query string) string
}
