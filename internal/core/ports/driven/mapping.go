package driven

import "github.com/secops-tools/socrag-cli/internal/core/domain"

// RuleMappingProvider hands out the current RuleMapping. A refresh is a
// new mapping instance swapped behind this interface, never an in-place
// mutation. Mapping may return nil when no artifact has been loaded.
type RuleMappingProvider interface {
	Mapping() *domain.RuleMapping
}

// StaticMapping is a provider that always returns the same mapping.
type StaticMapping struct {
	M *domain.RuleMapping
}

// Mapping returns the wrapped mapping.
func (s StaticMapping) Mapping() *domain.RuleMapping {
	return s.M
}
