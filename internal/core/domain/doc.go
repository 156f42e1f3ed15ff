// Package domain defines the core business entities for socrag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: A retrievable (text, metadata) unit produced by an external chunker
//   - IndexedDocument: A unit stored in the vector index
//   - RetrievalHit: A scored hit returned from the index
//   - RetrievalResult: The partitioned tracker/rulebook outcome of a query
//   - QueryClassification: Derived query intent
//   - RuleMapping: Learned rule-id to alert-name table
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
