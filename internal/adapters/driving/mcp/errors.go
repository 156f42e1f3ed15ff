// Package mcp provides an MCP (Model Context Protocol) server adapter
// for socrag. It lets AI assistants retrieve SOC incident context and
// rulebook procedures over JSON-RPC.
package mcp

import "errors"

// ErrMissingRetrieverService is returned when the retriever service is not provided.
var ErrMissingRetrieverService = errors.New("mcp: retriever service is required")

// ErrMissingContextService is returned when the context service is not provided.
var ErrMissingContextService = errors.New("mcp: context service is required")
