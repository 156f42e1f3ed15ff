package services

import (
	"context"

	"github.com/secops-tools/socrag-cli/internal/core/domain"
	"github.com/secops-tools/socrag-cli/internal/core/ports/driven"
)

// --- Mock implementations of driven ports ---

// mockEmbedding implements driven.EmbeddingService for testing.
// It returns a deterministic vector per text unless an error is set.
type mockEmbedding struct {
	dim        int
	embedErr   error
	ensureErr  error
	pingErr    error
	embedCalls [][]string
}

func (m *mockEmbedding) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	m.embedCalls = append(m.embedCalls, texts)
	dim := m.dim
	if dim == 0 {
		dim = 4
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, dim)
		for j, b := range []byte(text) {
			vec[j%dim] += float32(b) / 255
		}
		vec[0] += 1 // keep vectors away from zero
		out[i] = vec
	}
	return out, nil
}

func (m *mockEmbedding) EnsureModel(_ context.Context) error { return m.ensureErr }
func (m *mockEmbedding) ModelName() string                   { return "mock-embed" }
func (m *mockEmbedding) Ping(_ context.Context) error        { return m.pingErr }
func (m *mockEmbedding) Close() error                        { return nil }

// mockIndex implements driven.VectorIndex with a fixed query result.
type mockIndex struct {
	result   driven.QueryResult
	queryErr error
	addErr   error

	added      int
	addedIDs   []string
	persisted  bool
	queryCalls int
}

func (m *mockIndex) Add(_ context.Context, vectors [][]float32, ids []string, _ []map[string]any, _ []string) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.added += len(vectors)
	m.addedIDs = append(m.addedIDs, ids...)
	return nil
}

func (m *mockIndex) Query(_ context.Context, _ []float32, k int) (driven.QueryResult, error) {
	if m.queryErr != nil {
		return driven.QueryResult{}, m.queryErr
	}
	m.queryCalls++
	res := m.result
	if k < len(res.IDs) {
		res = driven.QueryResult{
			IDs:       res.IDs[:k],
			Scores:    res.Scores[:k],
			Documents: res.Documents[:k],
			Metadatas: res.Metadatas[:k],
		}
	}
	return res, nil
}

func (m *mockIndex) Persist(_ context.Context) error { m.persisted = true; return nil }
func (m *mockIndex) Count() int                      { return m.added }
func (m *mockIndex) Dimension() int                  { return 4 }
func (m *mockIndex) Close() error                    { return nil }

// mockChunkSource implements driven.ChunkSource.
type mockChunkSource struct {
	chunks  []domain.Chunk
	readErr error
}

func (m *mockChunkSource) Read(_ context.Context) ([]domain.Chunk, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.chunks, nil
}

// mockRuleKeyStore implements driven.RuleKeyStore.
type mockRuleKeyStore struct {
	keys       []domain.RuleKey
	replaced   []domain.RuleKey
	loadErr    error
	replaceErr error
}

func (m *mockRuleKeyStore) Load(_ context.Context) ([]domain.RuleKey, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.keys, nil
}

func (m *mockRuleKeyStore) Replace(_ context.Context, keys []domain.RuleKey) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.replaced = keys
	return nil
}

func (m *mockRuleKeyStore) Close() error { return nil }

// mockGenerator implements driven.Generator.
type mockGenerator struct {
	response string
	err      error
	prompts  []string
}

func (m *mockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.prompts = append(m.prompts, prompt)
	return m.response, nil
}

func (m *mockGenerator) ModelName() string { return "mock-llm" }
func (m *mockGenerator) Close() error      { return nil }

// staticMapping builds a provider over rule keys.
func staticMapping(keys ...domain.RuleKey) driven.RuleMappingProvider {
	return driven.StaticMapping{M: domain.NewRuleMapping(keys)}
}
