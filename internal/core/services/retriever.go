package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/secops-tools/socrag-cli/internal/core/domain"
	"github.com/secops-tools/socrag-cli/internal/core/ports/driven"
	"github.com/secops-tools/socrag-cli/internal/core/ports/driving"
	"github.com/secops-tools/socrag-cli/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.RetrieverService = (*Retriever)(nil)

// RetrieverConfig carries the retrieval tuning knobs. The boost
// multipliers and the partial-match threshold are empirically chosen;
// only their relative ordering is load-bearing.
type RetrieverConfig struct {
	// ExactBoost multiplies hits whose text literally contains the
	// rule's exact patterns (default 2.5).
	ExactBoost float64

	// PatternBoost multiplies hits matching a learned search pattern
	// (default 2.0). Competing pattern boosts are not cumulative.
	PatternBoost float64

	// OtherRulePenalty multiplies hits mentioning a different rule
	// number (default 0.5).
	OtherRulePenalty float64

	// GenericRuleBoost multiplies hits mentioning "rule" with no
	// extractable number (default 1.2).
	GenericRuleBoost float64

	// MinTrackerFields is the minimum count of non-null, non-blank
	// fields a tracker row needs to survive the empty-row filter
	// (default 5).
	MinTrackerFields int

	// MaxOtherRuleHits caps rulebook hits referencing a different rule
	// (default 2).
	MaxOtherRuleHits int

	// MaxGenericHits caps rulebook hits with no rule mention at all
	// (default 1).
	MaxGenericHits int

	// KTracker is the tracker bucket cap used when a request does not
	// set one (default 2).
	KTracker int

	// KRulebook is the rulebook bucket cap used when a request does not
	// set one (default 5).
	KRulebook int
}

// DefaultRetrieverConfig returns the reference tuning.
func DefaultRetrieverConfig() RetrieverConfig {
	return RetrieverConfig{
		ExactBoost:       2.5,
		PatternBoost:     2.0,
		OtherRulePenalty: 0.5,
		GenericRuleBoost: 1.2,
		MinTrackerFields: 5,
		MaxOtherRuleHits: 2,
		MaxGenericHits:   1,
		KTracker:         domain.DefaultKTracker,
		KRulebook:        domain.DefaultKRulebook,
	}
}

// normalise unset fields to the reference defaults.
func (c RetrieverConfig) withDefaults() RetrieverConfig {
	d := DefaultRetrieverConfig()
	if c.ExactBoost <= 0 {
		c.ExactBoost = d.ExactBoost
	}
	if c.PatternBoost <= 0 {
		c.PatternBoost = d.PatternBoost
	}
	if c.OtherRulePenalty <= 0 {
		c.OtherRulePenalty = d.OtherRulePenalty
	}
	if c.GenericRuleBoost <= 0 {
		c.GenericRuleBoost = d.GenericRuleBoost
	}
	if c.MinTrackerFields <= 0 {
		c.MinTrackerFields = d.MinTrackerFields
	}
	if c.MaxOtherRuleHits <= 0 {
		c.MaxOtherRuleHits = d.MaxOtherRuleHits
	}
	if c.MaxGenericHits <= 0 {
		c.MaxGenericHits = d.MaxGenericHits
	}
	if c.KTracker <= 0 {
		c.KTracker = d.KTracker
	}
	if c.KRulebook <= 0 {
		c.KRulebook = d.KRulebook
	}
	return c
}

// Retriever orchestrates embedding and index queries for all expanded
// variants, deduplicates by id, applies rule-aware boosting, partitions
// hits into tracker and rulebook buckets, filters low-information rows,
// and returns a bounded top-k per source.
type Retriever struct {
	embedding driven.EmbeddingService
	index     driven.VectorIndex
	resolver  *RuleResolver
	expander  *QueryExpander
	mapping   driven.RuleMappingProvider
	cfg       RetrieverConfig
}

// NewRetriever creates a retriever. The mapping provider is optional.
func NewRetriever(
	embedding driven.EmbeddingService,
	index driven.VectorIndex,
	resolver *RuleResolver,
	expander *QueryExpander,
	mapping driven.RuleMappingProvider,
	cfg RetrieverConfig,
) *Retriever {
	return &Retriever{
		embedding: embedding,
		index:     index,
		resolver:  resolver,
		expander:  expander,
		mapping:   mapping,
		cfg:       cfg.withDefaults(),
	}
}

// Retrieve runs the full dual-source pipeline.
func (r *Retriever) Retrieve(
	ctx context.Context, query string, opts domain.RetrieveOptions,
) (domain.RetrievalResult, error) {
	logger.Section("Retrieval")
	logger.Debug("Query: %q", query)

	cls := r.resolver.Classify(query)
	result := domain.RetrievalResult{
		Tracker:  []domain.RetrievalHit{},
		Rulebook: []domain.RetrievalHit{},
		Class:    cls,
	}

	if strings.TrimSpace(query) == "" {
		logger.Debug("Empty query, returning no results")
		return result, nil
	}

	kTracker := opts.KTracker
	if kTracker <= 0 {
		kTracker = r.cfg.KTracker
	}
	kRulebook := opts.KRulebook
	if kRulebook <= 0 {
		kRulebook = r.cfg.KRulebook
	}

	trackerQueries := []string{query}
	if cls.AboutTracker {
		trackerQueries = r.expander.ExpandTracker(query)
	}
	rulebookQueries := []string{query}
	if cls.AboutRule {
		rulebookQueries = r.expander.ExpandRulebook(query, cls.RuleID)
	}

	variants := append(trackerQueries, rulebookQueries...)
	logger.Debug("Expanded to %d variants (%d tracker, %d rulebook)",
		len(variants), len(trackerQueries), len(rulebookQueries))

	kPerQuery := kTracker
	if kRulebook > kPerQuery {
		kPerQuery = kRulebook
	}

	merged, err := r.searchVariants(ctx, variants, kPerQuery, cls.RuleID)
	if err != nil {
		return domain.RetrievalResult{}, err
	}
	logger.Debug("Merged hits after dedupe: %d", len(merged))

	// Stable sort keeps first-seen order among equal scores.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	trackerHits, rulebookHits := r.partition(merged, cls)
	logger.Debug("Partitioned: %d tracker, %d rulebook", len(trackerHits), len(rulebookHits))

	if cls.RuleID != "" {
		rulebookHits = r.filterByRuleRelevance(rulebookHits, cls.RuleID)
		logger.Debug("After rule relevance filter: %d rulebook", len(rulebookHits))

		if cls.ExactRule {
			trackerHits = r.filterTrackerByRule(trackerHits, cls.RuleID)
			logger.Debug("After exact-rule tracker filter: %d tracker", len(trackerHits))
		}
	}

	trackerHits = r.filterEmptyTrackerRows(trackerHits)
	logger.Debug("After empty-row filter: %d tracker", len(trackerHits))

	if len(trackerHits) > kTracker {
		trackerHits = trackerHits[:kTracker]
	}
	if len(rulebookHits) > kRulebook {
		rulebookHits = rulebookHits[:kRulebook]
	}

	result.Tracker = normalizeScores(trackerHits)
	result.Rulebook = normalizeScores(rulebookHits)

	logger.Info("Retrieval done: %d tracker, %d rulebook hits",
		len(result.Tracker), len(result.Rulebook))

	return result, nil
}

// searchVariants embeds each variant, queries the index, and merges hits
// into one list deduplicated by id. The first occurrence across the
// variant list wins, even if a later occurrence scores higher. Boosting
// is applied as hits are admitted.
func (r *Retriever) searchVariants(
	ctx context.Context, variants []string, k int, ruleID string,
) ([]domain.RetrievalHit, error) {
	var merged []domain.RetrievalHit
	seen := make(map[string]bool)

	for _, variant := range variants {
		matrix, err := r.embedding.EmbedBatch(ctx, []string{variant})
		if err != nil {
			return nil, fmt.Errorf("embed variant %q: %w", variant, err)
		}
		if len(matrix) == 0 {
			continue
		}

		res, err := r.index.Query(ctx, matrix[0], k)
		if err != nil {
			return nil, fmt.Errorf("query index for %q: %w", variant, err)
		}

		for i := range res.IDs {
			if seen[res.IDs[i]] {
				continue
			}
			seen[res.IDs[i]] = true

			score := res.Scores[i]
			if ruleID != "" {
				boost := r.boostFactor(res.Documents[i], ruleID)
				if boost != 1.0 {
					logger.Debug("Boost %.1fx for hit %s", boost, res.IDs[i])
				}
				score *= boost
			}

			merged = append(merged, domain.RetrievalHit{
				ID:       res.IDs[i],
				Score:    score,
				Text:     res.Documents[i],
				Metadata: res.Metadatas[i],
			})
		}
	}

	return merged, nil
}

// boostFactor inspects a hit's text for literal rule references.
func (r *Retriever) boostFactor(text, ruleID string) float64 {
	if text == "" {
		return 1.0
	}
	lower := strings.ToLower(text)
	num := domain.RuleNumber(ruleID)

	exactPatterns := []string{
		fmt.Sprintf("rule#%s", ruleID),
		fmt.Sprintf("rule %s", ruleID),
		fmt.Sprintf("rule %d", num),
	}
	for _, p := range exactPatterns {
		if strings.Contains(lower, p) {
			return r.cfg.ExactBoost
		}
	}

	if mapping := r.currentMapping(); mapping != nil {
		for _, p := range mapping.Patterns(ruleID) {
			if strings.Contains(lower, strings.ToLower(p)) {
				return r.cfg.PatternBoost
			}
		}
	}

	if strings.Contains(lower, "rule") {
		if m := embeddedRulePattern.FindStringSubmatch(lower); m != nil {
			if domain.NormalizeRuleID(m[1]) != ruleID {
				return r.cfg.OtherRulePenalty
			}
			return 1.0
		}
		return r.cfg.GenericRuleBoost
	}

	return 1.0
}

// partition splits merged hits into tracker and rulebook buckets by
// metadata heuristics; unclassified hits follow the query's primary
// intent.
func (r *Retriever) partition(
	hits []domain.RetrievalHit, cls domain.QueryClassification,
) (tracker, rulebook []domain.RetrievalHit) {
	for _, hit := range hits {
		switch {
		case isTrackerMeta(hit.Metadata):
			tracker = append(tracker, hit)
		case isRulebookMeta(hit.Metadata):
			rulebook = append(rulebook, hit)
		case cls.AboutTracker:
			tracker = append(tracker, hit)
		default:
			rulebook = append(rulebook, hit)
		}
	}
	return tracker, rulebook
}

func isTrackerMeta(meta map[string]any) bool {
	doctype := strings.ToLower(metaString(meta, domain.MetaDoctype))
	source := strings.ToLower(metaString(meta, domain.MetaSource))
	return doctype == domain.DoctypeTrackerRow || strings.Contains(source, "tracker")
}

func isRulebookMeta(meta map[string]any) bool {
	doctype := strings.ToLower(metaString(meta, domain.MetaDoctype))
	source := strings.ToLower(metaString(meta, domain.MetaSource))
	filetype := strings.ToLower(metaString(meta, domain.MetaFiletype))
	return doctype == domain.DoctypeRulebook ||
		filetype == "csv" || filetype == "xlsx" ||
		strings.Contains(source, "rule")
}

func metaString(meta map[string]any, key string) string {
	if meta == nil {
		return ""
	}
	v, ok := meta[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// filterByRuleRelevance partitions rulebook hits into exact matches,
// different-rule matches, and everything else, then caps the noise:
// all exact matches, at most MaxOtherRuleHits different-rule hits, at
// most MaxGenericHits generic hits. This keeps near-miss matches from
// drowning the bucket while still surfacing something when no exact
// rule text was indexed.
func (r *Retriever) filterByRuleRelevance(
	hits []domain.RetrievalHit, ruleID string,
) []domain.RetrievalHit {
	num := domain.RuleNumber(ruleID)
	patterns := []string{
		fmt.Sprintf("rule#%s", ruleID),
		fmt.Sprintf("rule %s", ruleID),
		fmt.Sprintf("rule %d", num),
		fmt.Sprintf("rule#%d", num),
	}
	if mapping := r.currentMapping(); mapping != nil {
		for _, p := range mapping.Patterns(ruleID) {
			patterns = append(patterns, strings.ToLower(p))
		}
	}

	var exact, otherRule, generic []domain.RetrievalHit

	for _, hit := range hits {
		lower := strings.ToLower(hit.Text)

		if containsAny(lower, patterns) {
			exact = append(exact, hit)
			continue
		}
		if m := embeddedRulePattern.FindStringSubmatch(lower); m != nil {
			if domain.NormalizeRuleID(m[1]) == ruleID {
				exact = append(exact, hit)
			} else {
				otherRule = append(otherRule, hit)
			}
			continue
		}
		generic = append(generic, hit)
	}

	if len(otherRule) > r.cfg.MaxOtherRuleHits {
		otherRule = otherRule[:r.cfg.MaxOtherRuleHits]
	}
	if len(generic) > r.cfg.MaxGenericHits {
		generic = generic[:r.cfg.MaxGenericHits]
	}

	out := make([]domain.RetrievalHit, 0, len(exact)+len(otherRule)+len(generic))
	out = append(out, exact...)
	out = append(out, otherRule...)
	out = append(out, generic...)
	return out
}

// filterTrackerByRule keeps only tracker rows whose text references one
// of the rule's known patterns. Applied only for exact-rule-only
// queries.
func (r *Retriever) filterTrackerByRule(
	hits []domain.RetrievalHit, ruleID string,
) []domain.RetrievalHit {
	patterns := []string{
		ruleID,
		fmt.Sprintf("rule#%s", ruleID),
		fmt.Sprintf("rule %s", ruleID),
	}
	if mapping := r.currentMapping(); mapping != nil {
		for _, p := range mapping.Patterns(ruleID) {
			patterns = append(patterns, strings.ToLower(p))
		}
	}

	var out []domain.RetrievalHit
	for _, hit := range hits {
		if containsAny(strings.ToLower(hit.Text), patterns) {
			out = append(out, hit)
		}
	}
	return out
}

// filterEmptyTrackerRows drops tracker hits whose JSON payload has too
// few populated fields. Malformed payloads are kept; parse failure is a
// data-quality variance, not emptiness.
func (r *Retriever) filterEmptyTrackerRows(hits []domain.RetrievalHit) []domain.RetrievalHit {
	var out []domain.RetrievalHit
	for _, hit := range hits {
		if !isTrackerMeta(hit.Metadata) {
			out = append(out, hit)
			continue
		}

		fields, ok := trackerFields(hit.Text)
		if !ok {
			out = append(out, hit)
			continue
		}

		populated := 0
		for _, v := range fields {
			if v == nil {
				continue
			}
			if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
				continue
			}
			populated++
		}
		if populated >= r.cfg.MinTrackerFields {
			out = append(out, hit)
		} else {
			logger.Debug("Dropping sparse tracker row %s (%d populated fields)", hit.ID, populated)
		}
	}
	return out
}

// trackerFields parses a tracker payload, unwrapping the nested
// "tracker_data" form when present.
func trackerFields(text string) (map[string]any, bool) {
	var data map[string]any
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, false
	}
	if inner, ok := data["tracker_data"].(map[string]any); ok {
		return inner, true
	}
	return data, true
}

// normalizeScores divides a bucket's scores by the bucket max so they
// land in (0, 1]. Buckets are normalised independently and are not
// comparable to each other.
func normalizeScores(hits []domain.RetrievalHit) []domain.RetrievalHit {
	if len(hits) == 0 {
		return []domain.RetrievalHit{}
	}
	maxScore := hits[0].Score
	for _, h := range hits[1:] {
		if h.Score > maxScore {
			maxScore = h.Score
		}
	}
	if maxScore == 0 {
		maxScore = 1.0
	}

	out := make([]domain.RetrievalHit, len(hits))
	for i, h := range hits {
		h.Score /= maxScore
		out[i] = h
	}
	return out
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func (r *Retriever) currentMapping() *domain.RuleMapping {
	if r.mapping == nil {
		return nil
	}
	return r.mapping.Mapping()
}
