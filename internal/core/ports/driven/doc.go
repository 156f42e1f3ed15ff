// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - EmbeddingService: Converts text batches to fixed-width vectors
//   - VectorIndex: Flat inner-product index with sidecar persistence
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RuleKeyStore: Rule-key artifact access. Without it, the resolver
//     operates with regex-only matching.
//   - Generator: Language-model generation. Without it, only raw
//     context retrieval is available.
//   - ChunkSource: Only needed by the index build path.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
