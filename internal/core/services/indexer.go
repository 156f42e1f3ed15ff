package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/secops-tools/socrag-cli/internal/core/domain"
	"github.com/secops-tools/socrag-cli/internal/core/ports/driven"
	"github.com/secops-tools/socrag-cli/internal/core/ports/driving"
	"github.com/secops-tools/socrag-cli/internal/logger"
)

// Ensure Indexer implements the interface.
var _ driving.IndexerService = (*Indexer)(nil)

// DefaultBatchSize is the embed batch size when none is configured.
const DefaultBatchSize = 16

// maxChunkChars caps a chunk's text before embedding, matching the
// embedding model's useful input window.
const maxChunkChars = 3000

// Indexer builds the vector index from a chunk source: flatten
// metadata, embed in batches, append to the index, extract rule-key
// records, persist.
type Indexer struct {
	chunks    driven.ChunkSource
	embedding driven.EmbeddingService
	index     driven.VectorIndex
	ruleKeys  driven.RuleKeyStore
	batchSize int
}

// NewIndexer creates an indexer. The rule-key store is optional; when
// nil, rule-key extraction is skipped.
func NewIndexer(
	chunks driven.ChunkSource,
	embedding driven.EmbeddingService,
	index driven.VectorIndex,
	ruleKeys driven.RuleKeyStore,
	batchSize int,
) *Indexer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Indexer{
		chunks:    chunks,
		embedding: embedding,
		index:     index,
		ruleKeys:  ruleKeys,
		batchSize: batchSize,
	}
}

// Build runs the full index build. A failed batch aborts the build;
// previously added batches remain committed in memory but are only
// persisted on success.
func (ix *Indexer) Build(ctx context.Context) (domain.IndexStats, error) {
	logger.Section("Index Build")
	start := time.Now()

	logger.Debug("Ensuring embedding model %q is available", ix.embedding.ModelName())
	if err := ix.embedding.EnsureModel(ctx); err != nil {
		return domain.IndexStats{}, fmt.Errorf("ensure model: %w", err)
	}

	chunks, err := ix.chunks.Read(ctx)
	if err != nil {
		return domain.IndexStats{}, fmt.Errorf("read chunks: %w", err)
	}
	logger.Info("Read %d chunks", len(chunks))

	prepared := prepareChunks(chunks)

	indexed := 0
	for i := 0; i < len(prepared); i += ix.batchSize {
		endIdx := i + ix.batchSize
		if endIdx > len(prepared) {
			endIdx = len(prepared)
		}
		batch := prepared[i:endIdx]

		texts := make([]string, len(batch))
		for j, c := range batch {
			texts[j] = c.Text
		}

		vectors, err := ix.embedding.EmbedBatch(ctx, texts)
		if err != nil {
			return domain.IndexStats{}, fmt.Errorf("embed batch at %d: %w", i, err)
		}

		ids := make([]string, len(batch))
		metas := make([]map[string]any, len(batch))
		docs := make([]string, len(batch))
		for j, c := range batch {
			ids[j] = documentID(c.Text, c.Metadata)
			meta := make(map[string]any, len(c.Metadata)+1)
			for k, v := range c.Metadata {
				meta[k] = v
			}
			meta["len"] = len(c.Text)
			metas[j] = meta
			docs[j] = c.Text
		}

		if err := ix.index.Add(ctx, vectors, ids, metas, docs); err != nil {
			return domain.IndexStats{}, fmt.Errorf("add batch at %d: %w", i, err)
		}

		indexed += len(batch)
		logger.Debug("Indexed %d/%d chunks", indexed, len(prepared))
	}

	ruleKeys := extractRuleKeys(prepared)
	if ix.ruleKeys != nil && len(ruleKeys) > 0 {
		if err := ix.ruleKeys.Replace(ctx, ruleKeys); err != nil {
			return domain.IndexStats{}, fmt.Errorf("store rule keys: %w", err)
		}
		logger.Info("Stored %d rule keys", len(ruleKeys))
	}

	if err := ix.index.Persist(ctx); err != nil {
		return domain.IndexStats{}, fmt.Errorf("persist index: %w", err)
	}

	elapsed := time.Since(start).Seconds()
	logger.Info("Index build complete: count=%d in %.2fs", ix.index.Count(), elapsed)

	return domain.IndexStats{
		Total:      len(chunks),
		Indexed:    indexed,
		RuleKeys:   len(ruleKeys),
		ElapsedSec: elapsed,
		Count:      ix.index.Count(),
	}, nil
}

// prepareChunks flattens metadata and caps text length.
func prepareChunks(chunks []domain.Chunk) []domain.Chunk {
	prepared := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		text := c.Text
		if len(text) > maxChunkChars {
			text = text[:maxChunkChars]
		}
		prepared[i] = domain.Chunk{
			Text:     text,
			Metadata: domain.FlattenMetadata(c.Metadata),
		}
	}
	return prepared
}

// extractRuleKeys collects rule-key records from rule_key chunks, in
// chunk order.
func extractRuleKeys(chunks []domain.Chunk) []domain.RuleKey {
	var keys []domain.RuleKey
	for _, c := range chunks {
		if metaString(c.Metadata, domain.MetaDoctype) != domain.DoctypeRuleKey {
			continue
		}
		ruleID := domain.NormalizeRuleID(metaString(c.Metadata, domain.MetaRuleID))
		if ruleID == "" {
			continue
		}
		keys = append(keys, domain.RuleKey{
			RuleID:    ruleID,
			AlertName: metaString(c.Metadata, domain.MetaAlertName),
			Source:    metaString(c.Metadata, domain.MetaSource),
			RowIndex:  metaInt(c.Metadata, domain.MetaRowIndex),
		})
	}
	return keys
}

func metaInt(meta map[string]any, key string) int {
	if meta == nil {
		return 0
	}
	switch v := meta[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// documentID derives a stable content+metadata hash with a uniqueness
// suffix, so identical chunks indexed twice still get distinct ids.
func documentID(text string, meta map[string]any) string {
	h := sha256.New()
	h.Write([]byte(text))
	h.Write([]byte(domain.CanonicalMetadata(meta)))
	return hex.EncodeToString(h.Sum(nil)) + "-" + uuid.NewString()[:8]
}
