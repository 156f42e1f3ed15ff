package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secops-tools/socrag-cli/internal/core/domain"
)

func TestServer_handleRetrieve(t *testing.T) {
	ctx := context.Background()

	t.Run("returns context and hits", func(t *testing.T) {
		mockRetriever := &mockRetrieverService{
			result: domain.RetrievalResult{
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
				Class: domain.QueryClassification{AboutRule: true, RuleID: "002"},
			},
		}

		ports := &Ports{
			Retriever: mockRetriever,
			Context:   &mockContextService{block: "=== TRACKER DATA ===\n..."},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := RetrieveInput{Query: "Rule 2"}
		_, output, err := server.handleRetrieve(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, "=== TRACKER DATA ===\n...", output.Context)
		assert.Equal(t, "002", output.Class.RuleID)
		require.Len(t, output.Tracker, 1)
		assert.Equal(t, "t1", output.Tracker[0].ID)
		assert.Equal(t, "tracker_sheet", output.Tracker[0].Source)
		require.Len(t, output.Rulebook, 1)
		assert.Equal(t, "Rule#002: reset password", output.Rulebook[0].Text)
		assert.Empty(t, output.Rulebook[0].Source)
	})

	t.Run("returns error on retrieval failure", func(t *testing.T) {
		ports := &Ports{
			Retriever: &mockRetrieverService{err: errors.New("embedding backend down")},
			Context:   &mockContextService{},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleRetrieve(ctx, nil, RetrieveInput{Query: "anything"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedding backend down")
	})
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer", func(t *testing.T) {
		ports := &Ports{
			Retriever: &mockRetrieverService{},
			Context:   &mockContextService{},
			Ask: &mockAskService{answer: domain.Answer{
				Text:    "Reset the password.",
				Context: "=== RULEBOOK PROCEDURES ===\n...",
				Class:   domain.QueryClassification{RuleID: "002"},
			}},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Query: "Rule 2"})

		require.NoError(t, err)
		assert.Equal(t, "Reset the password.", output.Answer)
		assert.Equal(t, "002", output.Class.RuleID)
	})

	t.Run("returns error on generation failure", func(t *testing.T) {
		ports := &Ports{
			Retriever: &mockRetrieverService{},
			Context:   &mockContextService{},
			Ask:       &mockAskService{err: errors.New("llm offline")},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Query: "Rule 2"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "llm offline")
	})
}
