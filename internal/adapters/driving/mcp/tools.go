package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/secops-tools/socrag-cli/internal/core/domain"
)

// RetrieveInput is the input schema for the retrieve_context tool.
type RetrieveInput struct {
	Query     string `json:"query" jsonschema:"the question to retrieve SOC context for"`
	KTracker  int    `json:"k_tracker,omitempty" jsonschema:"maximum tracker rows to return (default 2)"`
	KRulebook int    `json:"k_rulebook,omitempty" jsonschema:"maximum rulebook procedures to return (default 5)"`
}

// RetrieveOutput is the output schema for the retrieve_context tool.
type RetrieveOutput struct {
	Context  string                     `json:"context"`
	Class    domain.QueryClassification `json:"class"`
	Tracker  []HitOutput                `json:"tracker"`
	Rulebook []HitOutput                `json:"rulebook"`
}

// HitOutput represents a single retrieval hit.
type HitOutput struct {
	ID     string  `json:"id"`
	Score  float64 `json:"score"`
	Source string  `json:"source,omitempty"`
	Text   string  `json:"text"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Query string `json:"query" jsonschema:"the question to answer from SOC data"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string                     `json:"answer"`
	Context string                     `json:"context"`
	Class   domain.QueryClassification `json:"class"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve_context",
		Description: "Retrieve incident tracker rows and rulebook procedures relevant to a question",
	}, s.handleRetrieve)

	if s.ports.Ask != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a question using the indexed tracker and rulebook data",
		}, s.handleAsk)
	}
}

// handleRetrieve handles the retrieve_context tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	opts := domain.RetrieveOptions{
		KTracker:  input.KTracker,
		KRulebook: input.KRulebook,
	}

	result, err := s.ports.Retriever.Retrieve(ctx, input.Query, opts)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Context:  s.ports.Context.BuildContext(result, input.Query),
		Class:    result.Class,
		Tracker:  toHitOutputs(result.Tracker),
		Rulebook: toHitOutputs(result.Rulebook),
	}
	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Ask == nil {
		return nil, AskOutput{}, errors.New("ask service not configured")
	}

	answer, err := s.ports.Ask.Ask(ctx, input.Query, domain.RetrieveOptions{})
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:  answer.Text,
		Context: answer.Context,
		Class:   answer.Class,
	}, nil
}

func toHitOutputs(hits []domain.RetrievalHit) []HitOutput {
	out := make([]HitOutput, len(hits))
	for i, h := range hits {
		source, _ := h.Metadata[domain.MetaSource].(string)
		out[i] = HitOutput{
			ID:     h.ID,
			Score:  h.Score,
			Source: source,
			Text:   h.Text,
		}
	}
	return out
}
