package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil retriever service returns error", func(t *testing.T) {
		ports := &Ports{Context: &mockContextService{}}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingRetrieverService)
	})

	t.Run("nil context service returns error", func(t *testing.T) {
		ports := &Ports{Retriever: &mockRetrieverService{}}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingContextService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		ports := &Ports{
			Retriever: &mockRetrieverService{},
			Context:   &mockContextService{},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("retriever and context only is valid", func(t *testing.T) {
		ports := &Ports{
			Retriever: &mockRetrieverService{},
			Context:   &mockContextService{},
		}
		assert.NoError(t, ports.Validate())
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Retriever: &mockRetrieverService{},
			Context:   &mockContextService{},
			Ask:       &mockAskService{},
		}
		assert.NoError(t, ports.Validate())
	})
}
