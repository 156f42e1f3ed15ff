package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestLoad_ParsesSections(t *testing.T) {
	dir := t.TempDir()
	content := `
[ollama]
base_url = "http://ollama:11434"
embed_model = "nomic-embed-text"
generate_model = "llama3.2"

[index]
dir = "/var/lib/socrag"
chunks_file = "chunks.jsonl"
batch_size = 32

[retrieval]
k_tracker = 3
k_rulebook = 7
exact_boost = 3.0
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "http://ollama:11434", cfg.Ollama.BaseURL)
	assert.Equal(t, "llama3.2", cfg.Ollama.GenerateModel)
	assert.Equal(t, 32, cfg.Index.BatchSize)
	assert.Equal(t, 3, cfg.Retrieval.KTracker)
	assert.Equal(t, 7, cfg.Retrieval.KRulebook)
	assert.InDelta(t, 3.0, cfg.Retrieval.ExactBoost, 1e-9)
	assert.Zero(t, cfg.Retrieval.PatternBoost, "unset keys stay zero")
}

func TestLoad_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not [valid toml"), 0o600))

	_, err := Load(dir)
	require.Error(t, err)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	want := Config{
		Ollama: OllamaConfig{BaseURL: "http://localhost:11434", EmbedModel: "custom"},
		Index:  IndexConfig{Dir: "idx", ChunksFile: "c.jsonl", BatchSize: 8},
		Retrieval: RetrievalConfig{
			KTracker:         2,
			KRulebook:        5,
			ExactBoost:       2.5,
			OtherRulePenalty: 0.5,
			MinTrackerFields: 5,
		},
	}

	require.NoError(t, Save(dir, want))

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
