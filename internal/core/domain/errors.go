package domain

import "errors"

// Domain errors represent contract violations and infrastructure
// failures the core distinguishes. Expected "not found" outcomes are
// (value, ok) returns, never errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingShape indicates the embedding backend returned
	// something other than a 1-D or 2-D float array.
	ErrEmbeddingShape = errors.New("unexpected embedding shape")

	// ErrModelUnavailable indicates the configured embedding model is
	// absent from the backend registry and could not be pulled.
	ErrModelUnavailable = errors.New("embedding model unavailable")

	// ErrEmbeddingUnavailable indicates the embedding backend could not
	// be reached. Retrieval fails whole rather than returning partial
	// results; an empty result is reserved for "matched nothing".
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrShape indicates an index add was given a non-2-D vector batch
	// or mismatched batch lengths.
	ErrShape = errors.New("invalid vector batch shape")

	// ErrDimensionMismatch indicates a batch's vector width differs from
	// the dimension fixed by the index's first batch. The whole batch is
	// rejected; prior batches remain committed.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrGeneratorUnavailable indicates the generation backend is not
	// configured or unreachable.
	ErrGeneratorUnavailable = errors.New("generator unavailable")
)
