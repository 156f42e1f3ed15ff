package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/secops-tools/socrag-cli/internal/core/domain"
	"github.com/secops-tools/socrag-cli/internal/core/ports/driven"
	"github.com/secops-tools/socrag-cli/internal/core/ports/driving"
	"github.com/secops-tools/socrag-cli/internal/logger"
)

// Ensure Ask implements the interface.
var _ driving.AskService = (*Ask)(nil)

// answerPromptFormat frames the context block for the generator. The
// generator's response format is its own business; this is the entire
// contract surface handed over.
const answerPromptFormat = `You are a SOC analyst assistant. Answer the question using only the context below.
If the context says "No matching context found.", say that no relevant incident or procedure data was found.

Context:
%s

Question: %s

Answer:`

// Ask answers a question end to end: retrieve, assemble context,
// generate.
type Ask struct {
	retriever driving.RetrieverService
	builder   driving.ContextService
	generator driven.Generator
}

// NewAsk creates the ask service. The generator is required; wiring a
// nil generator fails at Ask time with domain.ErrGeneratorUnavailable.
func NewAsk(retriever driving.RetrieverService, builder driving.ContextService, generator driven.Generator) *Ask {
	return &Ask{
		retriever: retriever,
		builder:   builder,
		generator: generator,
	}
}

// Ask runs the full question-answering pass.
func (a *Ask) Ask(ctx context.Context, query string, opts domain.RetrieveOptions) (domain.Answer, error) {
	logger.Section("Ask")

	if strings.TrimSpace(query) == "" {
		return domain.Answer{}, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if a.generator == nil {
		return domain.Answer{}, domain.ErrGeneratorUnavailable
	}

	result, err := a.retriever.Retrieve(ctx, query, opts)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("retrieve: %w", err)
	}

	contextBlock := a.builder.BuildContext(result, query)
	logger.Debug("Context block: %d chars", len(contextBlock))

	prompt := fmt.Sprintf(answerPromptFormat, contextBlock, query)
	text, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("generate: %w", err)
	}

	return domain.Answer{
		Query:   query,
		Context: contextBlock,
		Text:    strings.TrimSpace(text),
		Class:   result.Class,
	}, nil
}
