package driven

import "context"

// QueryResult holds one index query's hits. All four slices are
// positionally aligned and sorted by descending similarity.
type QueryResult struct {
	IDs       []string
	Scores    []float64
	Documents []string
	Metadatas []map[string]any
}

// VectorIndex is a flat inner-product similarity index over
// L2-normalised vectors with a parallel side-table of
// (id, metadata, raw text) persisted to disk.
//
// The first non-empty Add fixes the index dimension for its lifetime.
// Documents are immutable once added; there is no update or delete.
// The add path is single-writer; a persisted index is safe for
// concurrent readers.
type VectorIndex interface {
	// Add appends a batch. No-op on an empty batch. Fails with
	// domain.ErrShape on a non-2-D batch or misaligned slice lengths,
	// and with domain.ErrDimensionMismatch when the batch width differs
	// from the fixed dimension; the whole batch is rejected either way.
	// Vectors are L2-normalised before insertion.
	Add(ctx context.Context, vectors [][]float32, ids []string, metadatas []map[string]any, documents []string) error

	// Query returns the k nearest neighbours by inner product. An empty
	// index or zero-length query vector returns an empty result, not an
	// error.
	Query(ctx context.Context, vector []float32, k int) (QueryResult, error)

	// Persist writes the index structure and the JSON sidecar.
	Persist(ctx context.Context) error

	// Count returns the number of stored vectors, 0 when empty.
	Count() int

	// Dimension returns the fixed vector width, 0 when empty.
	Dimension() int

	// Close releases resources.
	Close() error
}
