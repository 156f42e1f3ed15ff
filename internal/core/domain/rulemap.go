package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// RuleKey is one record of the rule-key artifact: a rule id paired with
// an alert name observed in the indexed data.
type RuleKey struct {
	RuleID    string `json:"rule_id"`
	AlertName string `json:"alert_name"`
	Source    string `json:"source"`
	RowIndex  int    `json:"row_index"`
}

// NormalizeRuleID zero-pads a rule id to exactly 3 digits.
// Lookups must normalise the same way or they silently miss.
func NormalizeRuleID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	for len(id) < 3 {
		id = "0" + id
	}
	return id
}

// RuleMapping is a learned, immutable table built from previously
// exported rule-key records. It maps rule ids to alert names and back,
// and carries literal search patterns per rule. A "refresh" is
// constructing a new instance and swapping the reference.
type RuleMapping struct {
	ruleToAlerts map[string][]string
	alertToRule  map[string]string
	// alertPhrases keeps the claim order of alertToRule keys so lookups
	// resolve ties the same way every run.
	alertPhrases []string
	rulePatterns map[string][]string
}

// NewRuleMapping builds a mapping from rule-key records. Records with an
// empty rule id are skipped. The first alert name to claim a lowercased
// phrase wins; later records do not overwrite it.
func NewRuleMapping(keys []RuleKey) *RuleMapping {
	m := &RuleMapping{
		ruleToAlerts: make(map[string][]string),
		alertToRule:  make(map[string]string),
		rulePatterns: make(map[string][]string),
	}

	for _, key := range keys {
		ruleID := NormalizeRuleID(key.RuleID)
		if ruleID == "" {
			continue
		}

		alert := strings.TrimSpace(key.AlertName)
		if alert != "" {
			if !containsString(m.ruleToAlerts[ruleID], alert) {
				m.ruleToAlerts[ruleID] = append(m.ruleToAlerts[ruleID], alert)
			}
			alertKey := strings.ToLower(alert)
			if _, taken := m.alertToRule[alertKey]; !taken {
				m.alertToRule[alertKey] = ruleID
				m.alertPhrases = append(m.alertPhrases, alertKey)
			}
		}

		m.rulePatterns[ruleID] = buildPatterns(ruleID, m.ruleToAlerts[ruleID])
	}

	return m
}

// buildPatterns derives the literal search variants for one rule.
func buildPatterns(ruleID string, alerts []string) []string {
	num := ruleNumber(ruleID)
	patterns := []string{
		fmt.Sprintf("rule %s", ruleID),
		fmt.Sprintf("rule#%s", ruleID),
		fmt.Sprintf("rule %d", num),
		fmt.Sprintf("rule#%d", num),
	}
	for _, alert := range alerts {
		lower := strings.ToLower(alert)
		patterns = append(patterns,
			lower,
			lower+" rule",
			fmt.Sprintf("rule %s %s", ruleID, lower),
		)
	}
	return patterns
}

// ruleNumber parses the integer form of a normalised rule id.
func ruleNumber(ruleID string) int {
	n, err := strconv.Atoi(strings.TrimLeft(ruleID, "0"))
	if err != nil {
		return 0
	}
	return n
}

// RuleNumber is the exported integer form of a rule id, for callers
// building "Rule 14" style variants from "014".
func RuleNumber(ruleID string) int {
	return ruleNumber(NormalizeRuleID(ruleID))
}

// FindRule resolves a rule id from free text via learned alert names.
// It first tries exact substring match of any known alert phrase, then
// a partial match: a multi-word phrase counts when at least threshold
// (e.g. 0.6) of its words appear in the query as whole words.
func (m *RuleMapping) FindRule(query string, threshold float64) (string, bool) {
	if m == nil {
		return "", false
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return "", false
	}

	for _, phrase := range m.alertPhrases {
		if strings.Contains(q, phrase) {
			return m.alertToRule[phrase], true
		}
	}

	queryWords := fieldSet(q)
	for _, phrase := range m.alertPhrases {
		ruleID := m.alertToRule[phrase]
		words := strings.Fields(phrase)
		if len(words) < 2 {
			continue
		}
		matched := 0
		for _, w := range words {
			if queryWords[w] {
				matched++
			}
		}
		if float64(matched) >= float64(len(words))*threshold {
			return ruleID, true
		}
	}

	return "", false
}

func fieldSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		set[w] = true
	}
	return set
}

// Patterns returns the literal search variants for a rule, nil when the
// rule is unknown.
func (m *RuleMapping) Patterns(ruleID string) []string {
	if m == nil {
		return nil
	}
	return m.rulePatterns[NormalizeRuleID(ruleID)]
}

// AlertNames returns the alert names learned for a rule.
func (m *RuleMapping) AlertNames(ruleID string) []string {
	if m == nil {
		return nil
	}
	return m.ruleToAlerts[NormalizeRuleID(ruleID)]
}

// RuleIDs returns the distinct rule ids in the mapping, sorted.
func (m *RuleMapping) RuleIDs() []string {
	if m == nil {
		return nil
	}
	ids := make([]string, 0, len(m.ruleToAlerts))
	for id := range m.ruleToAlerts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Rules returns the number of distinct rules in the mapping.
func (m *RuleMapping) Rules() int {
	if m == nil {
		return 0
	}
	return len(m.ruleToAlerts)
}

// AlertPatterns returns the number of distinct alert phrases.
func (m *RuleMapping) AlertPatterns() int {
	if m == nil {
		return 0
	}
	return len(m.alertToRule)
}

// SampleRules returns up to n rule ids for diagnostics.
func (m *RuleMapping) SampleRules(n int) []string {
	ids := m.RuleIDs()
	if len(ids) > n {
		ids = ids[:n]
	}
	return ids
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
