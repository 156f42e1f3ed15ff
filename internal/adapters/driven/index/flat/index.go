// Package flat provides a flat inner-product vector index persisted to
// local files.
package flat

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/secops-tools/socrag-cli/internal/core/domain"
	"github.com/secops-tools/socrag-cli/internal/core/ports/driven"
	"github.com/secops-tools/socrag-cli/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// normEps guards the L2 norm against division by zero.
const normEps = 1e-12

// File suffixes relative to the index base path.
const (
	vectorSuffix  = ".index"
	sidecarSuffix = ".meta.json"
)

// sidecar is the on-disk JSON side-table, positionally aligned with the
// vector file.
type sidecar struct {
	IDs       []string         `json:"ids"`
	Metadatas []map[string]any `json:"metadatas"`
	Documents []string         `json:"documents"`
	Dim       int              `json:"dim"`
}

// Index is an exhaustive inner-product index over L2-normalised
// vectors. Vectors live in a flat float32 slice; ids, metadata and raw
// documents live in a parallel side-table. Persisted as a binary vector
// file plus a JSON sidecar, both written atomically.
//
// Adds are single-writer; queries may run concurrently.
type Index struct {
	mu sync.RWMutex

	basePath  string
	dim       int
	vectors   []float32
	ids       []string
	metadatas []map[string]any
	documents []string
}

// Open loads the index at basePath, or starts an empty one when no
// files exist yet.
func Open(basePath string) (*Index, error) {
	ix := &Index{basePath: basePath}
	if err := ix.load(); err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	return ix, nil
}

func (ix *Index) load() error {
	sidecarBytes, err := os.ReadFile(ix.basePath + sidecarSuffix)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read sidecar: %w", err)
	}

	var side sidecar
	if err := json.Unmarshal(sidecarBytes, &side); err != nil {
		return fmt.Errorf("parse sidecar: %w", err)
	}

	vectorBytes, err := os.ReadFile(ix.basePath + vectorSuffix)
	if err != nil {
		return fmt.Errorf("read vector file: %w", err)
	}

	if len(vectorBytes)%4 != 0 {
		return fmt.Errorf("vector file length %d is not float32-aligned", len(vectorBytes))
	}
	floats := make([]float32, len(vectorBytes)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(vectorBytes[i*4:]))
	}

	if side.Dim > 0 && len(floats) != side.Dim*len(side.IDs) {
		return fmt.Errorf("vector file holds %d floats, sidecar expects %d", len(floats), side.Dim*len(side.IDs))
	}
	if len(side.IDs) != len(side.Metadatas) || len(side.IDs) != len(side.Documents) {
		return fmt.Errorf("sidecar slices misaligned: %d ids, %d metadatas, %d documents",
			len(side.IDs), len(side.Metadatas), len(side.Documents))
	}

	ix.dim = side.Dim
	ix.vectors = floats
	ix.ids = side.IDs
	ix.metadatas = side.Metadatas
	ix.documents = side.Documents

	logger.Debug("Loaded index %s: %d vectors, dim %d", ix.basePath, len(ix.ids), ix.dim)
	return nil
}

// Add appends a batch of vectors with their side-table entries. The
// first non-empty batch fixes the index dimension.
func (ix *Index) Add(_ context.Context, vectors [][]float32, ids []string, metadatas []map[string]any, documents []string) error {
	if len(vectors) == 0 {
		return nil
	}
	if len(vectors) != len(ids) || len(vectors) != len(metadatas) || len(vectors) != len(documents) {
		return fmt.Errorf("%w: %d vectors, %d ids, %d metadatas, %d documents",
			domain.ErrShape, len(vectors), len(ids), len(metadatas), len(documents))
	}

	width := len(vectors[0])
	if width == 0 {
		return fmt.Errorf("%w: zero-width vectors", domain.ErrShape)
	}
	for i, v := range vectors {
		if len(v) != width {
			return fmt.Errorf("%w: vector %d has width %d, expected %d", domain.ErrShape, i, len(v), width)
		}
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.dim == 0 {
		ix.dim = width
	} else if width != ix.dim {
		return fmt.Errorf("%w: batch width %d, index dimension %d", domain.ErrDimensionMismatch, width, ix.dim)
	}

	for i, v := range vectors {
		ix.vectors = append(ix.vectors, normalise(v)...)
		ix.ids = append(ix.ids, ids[i])
		ix.metadatas = append(ix.metadatas, metadatas[i])
		ix.documents = append(ix.documents, documents[i])
	}
	return nil
}

// Query returns the k nearest neighbours by inner product over the
// normalised vectors. Cosine similarity, given normalised inputs.
func (ix *Index) Query(_ context.Context, vector []float32, k int) (driven.QueryResult, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.ids) == 0 || len(vector) == 0 || k <= 0 {
		return driven.QueryResult{}, nil
	}
	if len(vector) != ix.dim {
		return driven.QueryResult{}, fmt.Errorf("%w: query width %d, index dimension %d",
			domain.ErrDimensionMismatch, len(vector), ix.dim)
	}

	q := normalise(vector)

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(ix.ids))
	for i := range ix.ids {
		row := ix.vectors[i*ix.dim : (i+1)*ix.dim]
		var dot float64
		for j, v := range row {
			dot += float64(v) * float64(q[j])
		}
		scores[i] = scored{idx: i, score: dot}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})
	if k > len(scores) {
		k = len(scores)
	}

	result := driven.QueryResult{
		IDs:       make([]string, k),
		Scores:    make([]float64, k),
		Documents: make([]string, k),
		Metadatas: make([]map[string]any, k),
	}
	for i := 0; i < k; i++ {
		s := scores[i]
		result.IDs[i] = ix.ids[s.idx]
		result.Scores[i] = s.score
		result.Documents[i] = ix.documents[s.idx]
		result.Metadatas[i] = ix.metadatas[s.idx]
	}
	return result, nil
}

// Persist writes the vector file and sidecar, each via a temp file
// renamed into place so readers never see a partial write.
func (ix *Index) Persist(_ context.Context) error {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if dir := filepath.Dir(ix.basePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create index directory: %w", err)
		}
	}

	vectorBytes := make([]byte, len(ix.vectors)*4)
	for i, f := range ix.vectors {
		binary.LittleEndian.PutUint32(vectorBytes[i*4:], math.Float32bits(f))
	}
	if err := writeAtomic(ix.basePath+vectorSuffix, vectorBytes); err != nil {
		return fmt.Errorf("write vector file: %w", err)
	}

	side := sidecar{
		IDs:       ix.ids,
		Metadatas: ix.metadatas,
		Documents: ix.documents,
		Dim:       ix.dim,
	}
	sidecarBytes, err := json.Marshal(side)
	if err != nil {
		return fmt.Errorf("marshal sidecar: %w", err)
	}
	if err := writeAtomic(ix.basePath+sidecarSuffix, sidecarBytes); err != nil {
		return fmt.Errorf("write sidecar: %w", err)
	}

	logger.Debug("Persisted index %s: %d vectors", ix.basePath, len(ix.ids))
	return nil
}

// Count returns the number of stored vectors.
func (ix *Index) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.ids)
}

// Dimension returns the fixed vector width, 0 when empty.
func (ix *Index) Dimension() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.dim
}

// Close releases resources.
func (ix *Index) Close() error {
	return nil
}

// normalise returns the vector scaled to unit L2 norm. A zero vector is
// returned unchanged rather than divided by zero.
func normalise(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm < normEps {
		out := make([]float32, len(v))
		copy(out, v)
		return out
	}

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
