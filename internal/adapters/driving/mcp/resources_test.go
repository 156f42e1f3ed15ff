package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secops-tools/socrag-cli/internal/core/domain"
	"github.com/secops-tools/socrag-cli/internal/core/ports/driven"
)

func readRulesResource(t *testing.T, server *Server) string {
	t.Helper()
	req := &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: uriScheme + "rules"},
	}
	result, err := server.handleRulesResource(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	return result.Contents[0].Text
}

func TestServer_handleRulesResource(t *testing.T) {
	mapping := driven.StaticMapping{M: domain.NewRuleMapping([]domain.RuleKey{
		{RuleID: "2", AlertName: "Failed Login Burst"},
		{RuleID: "5", AlertName: "Brute Force Source"},
	})}

	ports := &Ports{
		Retriever: &mockRetrieverService{},
		Context:   &mockContextService{},
		Mapping:   mapping,
	}
	server, err := NewServer(ports)
	require.NoError(t, err)

	text := readRulesResource(t, server)

	assert.Contains(t, text, `"rule_id": "002"`)
	assert.Contains(t, text, "Failed Login Burst")
	assert.Contains(t, text, `"rule_id": "005"`)
	assert.Less(t,
		strings.Index(text, `"rule_id": "002"`),
		strings.Index(text, `"rule_id": "005"`),
		"rules should be listed in id order")
}

func TestServer_handleRulesResource_NoMapping(t *testing.T) {
	ports := &Ports{
		Retriever: &mockRetrieverService{},
		Context:   &mockContextService{},
	}
	server, err := NewServer(ports)
	require.NoError(t, err)

	text := readRulesResource(t, server)
	assert.Equal(t, "[]", text)
}
