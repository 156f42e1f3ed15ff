package domain

// Confidence grades how certain the classifier is about a rule query.
type Confidence string

const (
	// ConfidenceHigh means the query is an exact rule-id-only string.
	ConfidenceHigh Confidence = "high"

	// ConfidenceMedium means a rule id was found by any other means.
	ConfidenceMedium Confidence = "medium"

	// ConfidenceLow means no rule id could be extracted.
	ConfidenceLow Confidence = "low"
)

// QueryClassification captures the derived intent of a free-text query.
// It is never stored.
type QueryClassification struct {
	// AboutRule is true when the query targets rulebook procedures.
	AboutRule bool `json:"about_rule"`

	// AboutTracker is true when the query targets operational records.
	// Tracker is the default bucket when no rule intent is detected.
	AboutTracker bool `json:"about_tracker"`

	// ExactRule is true when the whole query is a rule id or bare number.
	ExactRule bool `json:"exact_rule"`

	// RuleID is the zero-padded 3-digit rule id, empty when none found.
	RuleID string `json:"rule_id"`

	// Confidence grades the classification.
	Confidence Confidence `json:"confidence"`
}

// RetrievalHit is one scored hit from the index, ephemeral per query.
// Score starts as inner-product similarity in roughly [-1, 1] and may
// exceed 1 after boosting.
type RetrievalHit struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

// RetrievalResult is the source-partitioned outcome of one retrieval.
// Scores within each bucket are normalised to (0, 1] independently and
// are not comparable across buckets.
type RetrievalResult struct {
	Tracker  []RetrievalHit      `json:"tracker"`
	Rulebook []RetrievalHit      `json:"rulebook"`
	Class    QueryClassification `json:"class"`
}

// RetrieveOptions bounds the per-source result counts.
// Tracker is capped low because operational rows are numerous and mostly
// redundant; rulebook procedures are rare and high-value.
type RetrieveOptions struct {
	// KTracker is the tracker bucket cap (default 2).
	KTracker int

	// KRulebook is the rulebook bucket cap (default 5).
	KRulebook int
}

// Default per-source result caps.
const (
	DefaultKTracker  = 2
	DefaultKRulebook = 5
)

// Answer is the outcome of a full question-answering pass.
type Answer struct {
	// Query is the original question.
	Query string `json:"query"`

	// Context is the assembled context block handed to the generator.
	Context string `json:"context"`

	// Text is the generated answer.
	Text string `json:"text"`

	// Class is the query classification used for retrieval.
	Class QueryClassification `json:"class"`
}

// IndexStats summarises an index build.
type IndexStats struct {
	// Total is the number of chunks read from the chunk source.
	Total int `json:"total"`

	// Indexed is the number of chunks embedded and added.
	Indexed int `json:"indexed"`

	// RuleKeys is the number of rule-key records extracted.
	RuleKeys int `json:"rule_keys"`

	// ElapsedSec is the wall-clock build time in seconds.
	ElapsedSec float64 `json:"elapsed_sec"`

	// Count is the index vector count after the build.
	Count int `json:"count"`
}

// NoContextFound is the designed empty-result sentinel. Callers must
// treat it as a valid answer distinct from an error.
const NoContextFound = "No matching context found."

// SystemStatus reports the state of the index and its backends.
type SystemStatus struct {
	// IndexCount is the number of stored vectors.
	IndexCount int `json:"index_count"`

	// Dimension is the index vector width, 0 when empty.
	Dimension int `json:"dimension"`

	// RuleKeys is the number of rule-key records in the artifact.
	RuleKeys int `json:"rule_keys"`

	// Rules is the number of distinct rules learned from the artifact.
	Rules int `json:"rules"`

	// AlertPatterns is the number of distinct alert phrases learned.
	AlertPatterns int `json:"alert_patterns"`

	// SampleRules holds up to a handful of learned rule ids.
	SampleRules []string `json:"sample_rules,omitempty"`

	// EmbedModel is the configured embedding model.
	EmbedModel string `json:"embed_model"`

	// GenerateModel is the configured generation model, empty when no
	// generator is wired.
	GenerateModel string `json:"generate_model,omitempty"`

	// BackendReachable is true when the embedding backend answers a
	// ping.
	BackendReachable bool `json:"backend_reachable"`
}
