package services

import (
	"fmt"
	"strings"

	"github.com/secops-tools/socrag-cli/internal/core/domain"
	"github.com/secops-tools/socrag-cli/internal/core/ports/driven"
)

// QueryExpander produces ordered query-string variants tuned for either
// operational-record retrieval or procedure retrieval. Embeddings are
// imprecise for exact identifiers like "Rule 014"; expansion issues
// several literal-pattern variants alongside the semantic query and
// leaves precision/recall arbitration to the boosting stage.
type QueryExpander struct {
	mapping driven.RuleMappingProvider
}

// NewQueryExpander creates an expander. The mapping provider is
// optional.
func NewQueryExpander(mapping driven.RuleMappingProvider) *QueryExpander {
	return &QueryExpander{mapping: mapping}
}

// ExpandTracker returns tracker-focused variants of the query,
// deduplicated and order-preserving.
func (e *QueryExpander) ExpandTracker(query string) []string {
	base := strings.TrimSpace(query)
	return dedupeNonEmpty([]string{
		base,
		base + " tracker",
		base + " incident",
		base + " status priority owner",
	})
}

// ExpandRulebook returns procedure-focused variants. When a rule id is
// known, literal rule patterns and any learned alert names are appended
// ahead of the generic suffixes.
func (e *QueryExpander) ExpandRulebook(query, ruleID string) []string {
	base := strings.TrimSpace(query)
	variants := []string{base}

	if ruleID != "" {
		ruleID = domain.NormalizeRuleID(ruleID)
		num := domain.RuleNumber(ruleID)
		variants = append(variants,
			fmt.Sprintf("Rule %s", ruleID),
			fmt.Sprintf("Rule#%s", ruleID),
			fmt.Sprintf("Rule %d", num),
			fmt.Sprintf("Rule#%d", num),
			fmt.Sprintf("Rule %s procedure", ruleID),
			fmt.Sprintf("Rule %s remediation", ruleID),
			fmt.Sprintf("Rule %s investigation steps", ruleID),
		)

		if mapping := e.currentMapping(); mapping != nil {
			variants = append(variants, mapping.Patterns(ruleID)...)
			for _, alert := range mapping.AlertNames(ruleID) {
				variants = append(variants,
					alert,
					alert+" procedure",
					alert+" remediation",
				)
			}
		}
	}

	variants = append(variants,
		base+" rulebook",
		base+" procedure steps remediation",
	)

	return dedupeNonEmpty(variants)
}

func (e *QueryExpander) currentMapping() *domain.RuleMapping {
	if e.mapping == nil {
		return nil
	}
	return e.mapping.Mapping()
}

// dedupeNonEmpty trims, drops empties, and removes duplicates while
// preserving first-seen order.
func dedupeNonEmpty(variants []string) []string {
	seen := make(map[string]bool, len(variants))
	out := make([]string, 0, len(variants))
	for _, v := range variants {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
