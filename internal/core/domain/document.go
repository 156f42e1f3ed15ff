package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Well-known metadata keys consumed by the retrieval pipeline.
const (
	MetaDoctype   = "doctype"
	MetaSource    = "source"
	MetaRuleID    = "rule_id"
	MetaAlertName = "alert_name"
	MetaRowIndex  = "row_index"
	MetaFiletype  = "filetype"
)

// Doctype values distinguishing the two logical sources plus rule-key entries.
const (
	DoctypeTrackerRow = "tracker_row"
	DoctypeRulebook   = "rulebook"
	DoctypeRuleKey    = "rule_key"
)

// Chunk is a retrievable unit handed over by the external chunker:
// one text blob plus its metadata. Metadata values may still be
// arbitrary at this boundary; FlattenMetadata reduces them to scalars
// before indexing.
type Chunk struct {
	// Text is the raw retrievable string (JSON-serialised row or
	// rendered rulebook section).
	Text string

	// Metadata contains key-value pairs describing the chunk.
	Metadata map[string]any
}

// IndexedDocument is a unit stored in the vector index.
// Immutable once added; persisted alongside the index in the sidecar.
type IndexedDocument struct {
	// ID is a stable content+metadata hash plus a uniqueness suffix.
	ID string

	// Vector is the embedding, fixed dimension per index instance.
	Vector []float32

	// Text is the raw retrievable string.
	Text string

	// Metadata maps string keys to scalar values only.
	Metadata map[string]any
}

// FlattenMetadata reduces metadata values to scalars so they survive the
// JSON sidecar round trip: strings, numbers, bools and nil pass through;
// string slices are joined with ", "; other slices are replaced by a
// "<key>_count" field; anything else is stringified.
func FlattenMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}

	flat := make(map[string]any, len(meta))
	for k, v := range meta {
		switch val := v.(type) {
		case nil, string, bool,
			int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64,
			float32, float64, json.Number:
			flat[k] = val
		case []string:
			flat[k] = strings.Join(val, ", ")
		case []any:
			if joined, ok := joinStringSlice(val); ok {
				flat[k] = joined
			} else {
				flat[k+"_count"] = len(val)
			}
		default:
			flat[k] = stringify(val)
		}
	}
	return flat
}

// joinStringSlice joins a []any whose elements are all strings.
func joinStringSlice(vals []any) (string, bool) {
	parts := make([]string, len(vals))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			return "", false
		}
		parts[i] = s
	}
	return strings.Join(parts, ", "), true
}

func stringify(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// CanonicalMetadata renders flattened metadata as a deterministic string
// for content hashing: keys sorted, values JSON-encoded.
func CanonicalMetadata(meta map[string]any) string {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quoteKey(k))
		b.WriteByte(':')
		b.WriteString(stringify(meta[k]))
	}
	b.WriteByte('}')
	return b.String()
}

func quoteKey(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}
