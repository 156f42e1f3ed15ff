package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/secops-tools/socrag-cli/internal/core/domain"
	"github.com/secops-tools/socrag-cli/internal/core/ports/driven"
	"github.com/secops-tools/socrag-cli/internal/core/ports/driving"
	"github.com/secops-tools/socrag-cli/internal/logger"
)

// Ensure ContextBuilder implements the interface.
var _ driving.ContextService = (*ContextBuilder)(nil)

// Raw tracker text is capped at this many characters when it fails to
// parse as JSON.
const rawTrackerLimit = 4000

// Crop bounds: a block shorter than cropExpandBelow characters expands
// backwards to the previous row marker; a crop under cropMinLength
// characters is degenerate and falls back to the full text.
const (
	cropExpandBelow = 200
	cropMinLength   = 10
)

// nextRuleLinePattern finds the start of the following rule's text when
// bounding a cropped block.
var nextRuleLinePattern = regexp.MustCompile(`(?im)^.*Rule[ #]*\d{1,4}.*$`)

// ContextBuilder renders a retrieval result into a single bounded text
// block with explicit source markers. Rulebook chunks can span an
// entire multi-rule file; when a rule id is known, long texts are
// cropped to the paragraph around that rule. Cropping is best-effort:
// on any ambiguity the full block is kept rather than risking
// truncation of real content.
type ContextBuilder struct {
	resolver *RuleResolver
	mapping  driven.RuleMappingProvider
}

// NewContextBuilder creates a context builder. The mapping provider is
// optional.
func NewContextBuilder(resolver *RuleResolver, mapping driven.RuleMappingProvider) *ContextBuilder {
	return &ContextBuilder{resolver: resolver, mapping: mapping}
}

// BuildContext renders the partitioned hits. Returns
// domain.NoContextFound when both buckets are empty.
func (b *ContextBuilder) BuildContext(result domain.RetrievalResult, query string) string {
	if len(result.Tracker) == 0 && len(result.Rulebook) == 0 {
		return domain.NoContextFound
	}

	ruleID, _ := b.resolver.ParseRuleID(query)

	var lines []string

	if ruleID != "" {
		lines = append(lines,
			"=== QUERY CONTEXT ===",
			fmt.Sprintf("Searching for: Rule %s", ruleID),
		)
		if mapping := b.currentMapping(); mapping != nil {
			if alerts := mapping.AlertNames(ruleID); len(alerts) > 0 {
				lines = append(lines, "Alert Names: "+strings.Join(alerts, ", "))
			}
		}
		lines = append(lines, "")
	}

	if len(result.Tracker) > 0 {
		lines = append(lines, "=== TRACKER DATA ===")
		for _, hit := range result.Tracker {
			src := metaString(hit.Metadata, domain.MetaSource)
			if src == "" {
				src = "tracker"
			}
			row := hit.Metadata[domain.MetaRowIndex]

			lines = append(lines,
				fmt.Sprintf("[score=%.3f] [src=%s] [row=%v]", hit.Score, src, row),
				renderTrackerPayload(hit.Text, ruleID),
				"",
			)
		}
	}

	if len(result.Rulebook) > 0 {
		lines = append(lines, "=== RULEBOOK PROCEDURES ===")
		for _, hit := range result.Rulebook {
			src := metaString(hit.Metadata, domain.MetaSource)
			if src == "" {
				src = metaString(hit.Metadata, domain.MetaFiletype)
			}
			if src == "" {
				src = "rulebook"
			}

			block := hit.Text
			if ruleID != "" && len(block) > 100 {
				if extracted := b.extractRuleBlock(block, ruleID); len(extracted) > cropMinLength {
					block = extracted
				}
			}

			lines = append(lines,
				fmt.Sprintf("[score=%.3f] [src=%s]", hit.Score, src),
				strings.TrimSpace(block),
				"",
			)
		}
	}

	return strings.Join(lines, "\n")
}

// renderTrackerPayload pretty-prints a tracker row's JSON payload. When
// a rule id is in scope, the row is narrowed to fields that speak to
// the rule. A payload that fails to parse is emitted raw, capped.
func renderTrackerPayload(text, ruleID string) string {
	fields, ok := trackerFields(text)
	if !ok {
		raw := strings.TrimSpace(text)
		if len(raw) > rawTrackerLimit {
			raw = raw[:rawTrackerLimit]
		}
		return raw
	}

	display := fields
	if ruleID != "" {
		relevant := make(map[string]any)
		for k, v := range fields {
			if v == nil {
				continue
			}
			lower := strings.ToLower(k)
			if strings.Contains(lower, "rule") ||
				strings.Contains(lower, "incident") ||
				strings.Contains(lower, "priority") ||
				strings.Contains(lower, "status") ||
				strings.Contains(lower, "comments") ||
				strings.Contains(lower, "alert") {
				relevant[k] = v
			}
		}
		if len(relevant) > 0 {
			display = relevant
		}
	}

	// Carry the extracted rule info alongside when the payload has it.
	var outer map[string]any
	if err := json.Unmarshal([]byte(text), &outer); err == nil {
		if info, ok := outer["extracted_rule_info"].(map[string]any); ok && len(info) > 0 {
			display["_extracted_rule_info"] = info
		}
	}

	pretty, err := json.MarshalIndent(display, "", "  ")
	if err != nil {
		raw := strings.TrimSpace(text)
		if len(raw) > rawTrackerLimit {
			raw = raw[:rawTrackerLimit]
		}
		return raw
	}
	return string(pretty)
}

// extractRuleBlock crops a rulebook text to the paragraph around the
// first literal occurrence of the rule's identifier. Returns the full
// text when no pattern matches.
func (b *ContextBuilder) extractRuleBlock(text, ruleID string) string {
	if text == "" || ruleID == "" {
		return text
	}

	t := strings.ReplaceAll(text, "\r\n", "\n")
	num := regexp.QuoteMeta(strings.TrimLeft(ruleID, "0"))

	patterns := []string{
		`(?im)^.*Rule#?0*` + num + `[^0-9].*$`,
		`(?im)^.*Rule[ #:-]*0*` + num + `[^0-9].*$`,
		`(?i)".*Rule#?0*` + num + `[^0-9][^"]*"`,
		`(?i)Rule#?0*` + num + `[^0-9].*`,
		`(?i)Rule[ #:-]*0*` + num + `[^0-9].*`,
	}

	if mapping := b.currentMapping(); mapping != nil {
		for _, alert := range mapping.AlertNames(ruleID) {
			escaped := regexp.QuoteMeta(alert)
			patterns = append(patterns,
				`(?im)^.*`+escaped+`.*$`,
				`(?i)`+escaped+`.*Rule.*`+num,
				`(?i)Rule.*`+num+`.*`+escaped,
			)
		}
	}

	start := -1
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			continue
		}
		if loc := re.FindStringIndex(t); loc != nil {
			start = loc[0]
			break
		}
	}
	if start < 0 {
		return text
	}

	// The block ends where the next rule's text begins. Skip just past
	// the matched header so the rule's own line doesn't terminate it.
	end := len(t)
	searchFrom := start + 50
	if searchFrom < len(t) {
		if loc := nextRuleLinePattern.FindStringIndex(t[searchFrom:]); loc != nil {
			end = searchFrom + loc[0]
		}
	}

	block := strings.TrimSpace(t[start:end])

	if len(block) < cropExpandBelow {
		if pre := strings.LastIndex(t[:start], "\nRow"); pre != -1 {
			block = strings.TrimSpace(t[pre:end])
		}
	}

	if len(block) <= cropMinLength {
		logger.Debug("Degenerate crop for rule %s, keeping full text", ruleID)
		return text
	}
	return block
}

func (b *ContextBuilder) currentMapping() *domain.RuleMapping {
	if b.mapping == nil {
		return nil
	}
	return b.mapping.Mapping()
}
