package services

import (
	"context"
	"fmt"

	"github.com/secops-tools/socrag-cli/internal/core/domain"
	"github.com/secops-tools/socrag-cli/internal/core/ports/driven"
	"github.com/secops-tools/socrag-cli/internal/core/ports/driving"
)

// Ensure Status implements the interface.
var _ driving.StatusService = (*Status)(nil)

// ruleSampleSize caps the rule ids included in a status report.
const ruleSampleSize = 5

// Status collects a health summary from the index and its backends.
type Status struct {
	index     driven.VectorIndex
	embedding driven.EmbeddingService
	ruleKeys  driven.RuleKeyStore
	generator driven.Generator
}

// NewStatus creates the status service. Rule-key store and generator
// are optional.
func NewStatus(
	index driven.VectorIndex,
	embedding driven.EmbeddingService,
	ruleKeys driven.RuleKeyStore,
	generator driven.Generator,
) *Status {
	return &Status{
		index:     index,
		embedding: embedding,
		ruleKeys:  ruleKeys,
		generator: generator,
	}
}

// Status gathers the current system state. An unreachable backend sets
// BackendReachable false rather than failing.
func (s *Status) Status(ctx context.Context) (domain.SystemStatus, error) {
	status := domain.SystemStatus{
		IndexCount: s.index.Count(),
		Dimension:  s.index.Dimension(),
		EmbedModel: s.embedding.ModelName(),
	}

	if s.generator != nil {
		status.GenerateModel = s.generator.ModelName()
	}

	if s.ruleKeys != nil {
		keys, err := s.ruleKeys.Load(ctx)
		if err != nil {
			return domain.SystemStatus{}, fmt.Errorf("load rule keys: %w", err)
		}
		status.RuleKeys = len(keys)

		mapping := domain.NewRuleMapping(keys)
		status.Rules = mapping.Rules()
		status.AlertPatterns = mapping.AlertPatterns()
		status.SampleRules = mapping.SampleRules(ruleSampleSize)
	}

	status.BackendReachable = s.embedding.Ping(ctx) == nil

	return status, nil
}
