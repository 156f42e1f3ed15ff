package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlattenMetadata_Scalars(t *testing.T) {
	meta := map[string]any{
		"doctype":   "tracker_row",
		"row_index": 7,
		"score":     0.5,
		"open":      true,
		"owner":     nil,
	}

	flat := FlattenMetadata(meta)

	assert.Equal(t, "tracker_row", flat["doctype"])
	assert.Equal(t, 7, flat["row_index"])
	assert.Equal(t, 0.5, flat["score"])
	assert.Equal(t, true, flat["open"])
	assert.Contains(t, flat, "owner")
	assert.Nil(t, flat["owner"])
}

func TestFlattenMetadata_StringSliceJoined(t *testing.T) {
	flat := FlattenMetadata(map[string]any{
		"tags": []string{"phishing", "p1"},
	})

	assert.Equal(t, "phishing, p1", flat["tags"])
}

func TestFlattenMetadata_AnySliceOfStringsJoined(t *testing.T) {
	flat := FlattenMetadata(map[string]any{
		"tags": []any{"phishing", "p1"},
	})

	assert.Equal(t, "phishing, p1", flat["tags"])
}

func TestFlattenMetadata_MixedSliceBecomesCount(t *testing.T) {
	flat := FlattenMetadata(map[string]any{
		"refs": []any{1, "two", 3},
	})

	assert.NotContains(t, flat, "refs")
	assert.Equal(t, 3, flat["refs_count"])
}

func TestFlattenMetadata_ObjectStringified(t *testing.T) {
	flat := FlattenMetadata(map[string]any{
		"nested": map[string]any{"a": 1},
	})

	assert.Equal(t, `{"a":1}`, flat["nested"])
}

func TestFlattenMetadata_Nil(t *testing.T) {
	flat := FlattenMetadata(nil)

	assert.NotNil(t, flat)
	assert.Empty(t, flat)
}

func TestCanonicalMetadata_Deterministic(t *testing.T) {
	a := CanonicalMetadata(map[string]any{"b": 2, "a": "x"})
	b := CanonicalMetadata(map[string]any{"a": "x", "b": 2})

	assert.Equal(t, a, b)
	assert.Equal(t, `{"a":"x","b":2}`, a)
}
