package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secops-tools/socrag-cli/internal/core/domain"
)

func TestStatusCmd_PrintsStatus(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"status"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "10 vectors (dim 768)")
	assert.Contains(t, buf.String(), "Rule keys:      3")
	assert.Contains(t, buf.String(), "Rules:          2 (3 alert patterns)")
	assert.Contains(t, buf.String(), "nomic-embed-text")
	assert.Contains(t, buf.String(), "reachable")
}

func TestStatusCmd_UnreachableBackend(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	statusService = &mockStatusService{status: domain.SystemStatus{
		EmbedModel: "nomic-embed-text",
	}}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"status"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "UNREACHABLE")
}

func TestStatusCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"status", "--json"})
	defer func() {
		rootCmd.SetArgs(nil)
		statusJSON = false // Reset flag
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"index_count": 10`)
	assert.Contains(t, buf.String(), `"backend_reachable": true`)
}

func TestStatusCmd_ServiceNotConfigured(t *testing.T) {
	oldService := statusService
	statusService = nil
	defer func() {
		statusService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"status"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
