package services

import (
	"regexp"
	"strings"

	"github.com/secops-tools/socrag-cli/internal/core/domain"
	"github.com/secops-tools/socrag-cli/internal/core/ports/driven"
	"github.com/secops-tools/socrag-cli/internal/logger"
)

// Rule-id extraction patterns, tried in priority order.
var (
	// The whole query is "rule 14", "Rule#014", etc.
	exactRulePattern = regexp.MustCompile(`(?i)^\s*rule\s*#?\s*(\d{1,4})\s*$`)

	// "rule 14" embedded anywhere in the text.
	embeddedRulePattern = regexp.MustCompile(`(?i)\brule\b\s*#?\s*(\d{1,4})\b`)

	// The whole query is a bare 1-4 digit number.
	bareNumberPattern = regexp.MustCompile(`^\s*(\d{1,4})\s*$`)
)

// Keyword lists for intent classification.
var (
	proceduralKeywords = []string{"rule", "remediation", "procedure", "steps"}

	trackerKeywords = []string{
		"count", "counts", "total",
		"priority", "priorities",
		"status", "statuses",
		"opened", "closed", "resolved",
		"sla", "owner", "assignee",
		"incident", "ticket",
		"daily", "weekly", "summary", "dashboard",
	}
)

// DefaultPartialMatchThreshold is the fraction of an alert phrase's
// words that must appear in a query for a partial match.
const DefaultPartialMatchThreshold = 0.6

// RuleResolver extracts canonical rule identifiers from free text,
// layering exact pattern, embedded pattern, bare number, and the
// learned alert-name mapping.
type RuleResolver struct {
	mapping          driven.RuleMappingProvider
	partialThreshold float64
}

// NewRuleResolver creates a resolver. The mapping provider is optional;
// when nil (or when it yields no mapping) only regex matching applies.
func NewRuleResolver(mapping driven.RuleMappingProvider, partialThreshold float64) *RuleResolver {
	if partialThreshold <= 0 {
		partialThreshold = DefaultPartialMatchThreshold
	}
	return &RuleResolver{
		mapping:          mapping,
		partialThreshold: partialThreshold,
	}
}

// ParseRuleID extracts a zero-padded 3-digit rule id from a query.
// The second return is false when no rule is in scope.
func (r *RuleResolver) ParseRuleID(query string) (string, bool) {
	if strings.TrimSpace(query) == "" {
		return "", false
	}

	if m := exactRulePattern.FindStringSubmatch(query); m != nil {
		return domain.NormalizeRuleID(m[1]), true
	}
	if m := embeddedRulePattern.FindStringSubmatch(query); m != nil {
		return domain.NormalizeRuleID(m[1]), true
	}
	if m := bareNumberPattern.FindStringSubmatch(query); m != nil {
		return domain.NormalizeRuleID(m[1]), true
	}

	if mapping := r.currentMapping(); mapping != nil {
		if id, ok := mapping.FindRule(query, r.partialThreshold); ok {
			logger.Debug("Rule id %s resolved via learned alert mapping", id)
			return id, true
		}
	}

	return "", false
}

// Classify derives the query's intent.
func (r *RuleResolver) Classify(query string) domain.QueryClassification {
	lower := strings.ToLower(query)
	ruleID, found := r.ParseRuleID(query)

	exact := exactRulePattern.MatchString(query) || bareNumberPattern.MatchString(query)

	aboutRule := found
	for _, kw := range proceduralKeywords {
		if strings.Contains(lower, kw) {
			aboutRule = true
			break
		}
	}

	aboutTracker := !aboutRule
	for _, kw := range trackerKeywords {
		if strings.Contains(lower, kw) {
			aboutTracker = true
			break
		}
	}

	confidence := domain.ConfidenceLow
	switch {
	case exact && found:
		confidence = domain.ConfidenceHigh
	case found:
		confidence = domain.ConfidenceMedium
	}

	cls := domain.QueryClassification{
		AboutRule:    aboutRule,
		AboutTracker: aboutTracker,
		ExactRule:    exact && found,
		RuleID:       ruleID,
		Confidence:   confidence,
	}

	logger.Debug("Classified query: rule=%t tracker=%t exact=%t id=%q confidence=%s",
		cls.AboutRule, cls.AboutTracker, cls.ExactRule, cls.RuleID, cls.Confidence)

	return cls
}

// currentMapping resolves the provider chain to a mapping, nil-safe.
func (r *RuleResolver) currentMapping() *domain.RuleMapping {
	if r.mapping == nil {
		return nil
	}
	return r.mapping.Mapping()
}
