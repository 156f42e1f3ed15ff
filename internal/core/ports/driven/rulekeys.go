package driven

import (
	"context"

	"github.com/secops-tools/socrag-cli/internal/core/domain"
)

// RuleKeyStore provides access to the rule-key artifact: the ordered
// records a RuleMapping is built from. Absence of the artifact is not
// an error; Load returns an empty slice and the resolver falls back to
// regex-only matching.
type RuleKeyStore interface {
	// Load returns all rule-key records in their stored order.
	Load(ctx context.Context) ([]domain.RuleKey, error)

	// Replace overwrites the artifact with the given records.
	Replace(ctx context.Context, keys []domain.RuleKey) error

	// Close releases resources.
	Close() error
}
