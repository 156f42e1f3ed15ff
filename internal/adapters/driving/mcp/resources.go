package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme is the custom URI scheme for socrag resources.
const uriScheme = "socrag://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource exposing the learned rule mapping.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "rules",
		Name:        "rules",
		Description: "Known detection rules and their alert names",
		MIMEType:    "application/json",
	}, s.handleRulesResource)
}

// handleRulesResource returns the rule-to-alerts table from the current
// mapping.
func (s *Server) handleRulesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type ruleInfo struct {
		RuleID string   `json:"rule_id"`
		Alerts []string `json:"alerts"`
	}

	var infos []ruleInfo
	if s.ports.Mapping != nil {
		if m := s.ports.Mapping.Mapping(); m != nil {
			for _, id := range m.RuleIDs() {
				infos = append(infos, ruleInfo{RuleID: id, Alerts: m.AlertNames(id)})
			}
		}
	}
	if infos == nil {
		infos = []ruleInfo{}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling rules: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
