package cli

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

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	answer domain.Answer
	err    error
	asked  []string
}

func (m *mockAskService) Ask(
	_ context.Context,
	query string,
	_ domain.RetrieveOptions,
) (domain.Answer, error) {
	if m.err != nil {
		return domain.Answer{}, m.err
	}
	m.asked = append(m.asked, query)
	return m.answer, nil
}

// mockIndexerService is a mock implementation of driving.IndexerService.
type mockIndexerService struct {
	stats domain.IndexStats
	err   error
}

func (m *mockIndexerService) Build(_ context.Context) (domain.IndexStats, error) {
	return m.stats, m.err
}

// mockStatusService is a mock implementation of driving.StatusService.
type mockStatusService struct {
	status domain.SystemStatus
	err    error
}

func (m *mockStatusService) Status(_ context.Context) (domain.SystemStatus, error) {
	return m.status, m.err
}

// setupTestServices wires mock services and returns a cleanup that
// restores the previous wiring.
func setupTestServices() func() {
	old := Services{
		Retriever: retrieverService,
		Context:   contextService,
		Ask:       askService,
		Indexer:   indexerService,
		Status:    statusService,
		Mapping:   mappingProvider,
	}

	Configure(Services{
		Retriever: &mockRetrieverService{result: domain.RetrievalResult{
			Tracker: []domain.RetrievalHit{{
				ID:       "t1",
				Score:    1.0,
				Text:     `{"status":"Open"}`,
				Metadata: map[string]any{"source": "tracker_sheet"},
			}},
			Rulebook: []domain.RetrievalHit{{
				ID:    "r1",
				Score: 0.8,
				Text:  "Rule#002: reset password",
			}},
			Class: domain.QueryClassification{AboutRule: true, RuleID: "002", Confidence: domain.ConfidenceHigh},
		}},
		Ask: &mockAskService{answer: domain.Answer{
			Text:    "Reset the password.",
			Context: "=== RULEBOOK PROCEDURES ===\nRule#002: reset password",
		}},
		Indexer: &mockIndexerService{stats: domain.IndexStats{
			Total: 10, Indexed: 10, RuleKeys: 3, ElapsedSec: 1.5, Count: 10,
		}},
		Status: &mockStatusService{status: domain.SystemStatus{
			IndexCount:       10,
			Dimension:        768,
			RuleKeys:         3,
			Rules:            2,
			AlertPatterns:    3,
			SampleRules:      []string{"002", "005"},
			EmbedModel:       "nomic-embed-text",
			GenerateModel:    "llama3.2",
			BackendReachable: true,
		}},
	})

	return func() { Configure(old) }
}
