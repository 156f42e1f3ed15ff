package mcp

import (
	"context"

	"github.com/secops-tools/socrag-cli/internal/core/domain"
)

// mockRetrieverService is a mock implementation of driving.RetrieverService.
type mockRetrieverService struct {
	result domain.RetrievalResult
	err    error
}

func (m *mockRetrieverService) Retrieve(
	_ context.Context,
	_ string,
	_ domain.RetrieveOptions,
) (domain.RetrievalResult, error) {
	return m.result, m.err
}

// mockContextService is a mock implementation of driving.ContextService.
type mockContextService struct {
	block string
}

func (m *mockContextService) BuildContext(_ domain.RetrievalResult, _ string) string {
	return m.block
}

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	answer domain.Answer
	err    error
}

func (m *mockAskService) Ask(
	_ context.Context,
	_ string,
	_ domain.RetrieveOptions,
) (domain.Answer, error) {
	return m.answer, m.err
}
