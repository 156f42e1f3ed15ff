package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskCmd_Use(t *testing.T) {
	assert.Equal(t, "ask [question]", askCmd.Use)
}

func TestAskCmd_AnswersQuestion(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "What is Rule 2?"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Reset the password.")
	assert.NotContains(t, buf.String(), "RULEBOOK PROCEDURES", "context hidden by default")
}

func TestAskCmd_ShowContext(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "--show-context", "What is Rule 2?"})
	defer func() {
		rootCmd.SetArgs(nil)
		askShowContext = false // Reset flag
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "=== RULEBOOK PROCEDURES ===")
	assert.Contains(t, buf.String(), "Reset the password.")
}

func TestAskCmd_NoQuestionWithoutInteractive(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "interactive")
}

func TestAskCmd_InteractiveLoop(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mock := &mockAskService{}
	mock.answer.Text = "answer text"
	askService = mock

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetIn(strings.NewReader("What is Rule 2?\n\nexit\n"))
	rootCmd.SetArgs([]string{"ask", "--interactive"})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		askInteractive = false // Reset flag
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, []string{"What is Rule 2?"}, mock.asked, "blank lines skipped, exit ends loop")
	assert.Contains(t, buf.String(), "answer text")
}

func TestAskCmd_InteractiveSurvivesErrors(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	askService = &mockAskService{err: errors.New("llm offline")}

	out := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errBuf)
	rootCmd.SetIn(strings.NewReader("first question\nexit\n"))
	rootCmd.SetArgs([]string{"ask", "-i"})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		askInteractive = false // Reset flag
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, errBuf.String(), "llm offline")
}

func TestAskCmd_ServiceNotConfigured(t *testing.T) {
	oldService := askService
	askService = nil
	defer func() {
		askService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "test"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
