package mcp

import (
	"github.com/secops-tools/socrag-cli/internal/core/ports/driven"
	"github.com/secops-tools/socrag-cli/internal/core/ports/driving"
)

// Ports aggregates all port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retriever performs dual-source retrieval.
	Retriever driving.RetrieverService

	// Context renders retrieval results into a context block.
	Context driving.ContextService

	// Ask answers questions end to end. Optional; without it only raw
	// context retrieval is exposed.
	Ask driving.AskService

	// Mapping serves the learned rule mapping. Optional; backs the
	// rules resource.
	Mapping driven.RuleMappingProvider
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Retriever == nil {
		return ErrMissingRetrieverService
	}
	if p.Context == nil {
		return ErrMissingContextService
	}
	// Ask and Mapping are optional.
	return nil
}
