package driving

import (
	"context"

	"github.com/secops-tools/socrag-cli/internal/core/domain"
)

// AskService answers a question end to end: retrieve context, assemble
// the block, generate prose.
type AskService interface {
	// Ask answers the query. Generator failures propagate; an empty
	// retrieval still produces an answer over the no-context sentinel.
	Ask(ctx context.Context, query string, opts domain.RetrieveOptions) (domain.Answer, error)
}
