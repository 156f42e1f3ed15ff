package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	var gotReq generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write([]byte(`{"response":"Reset the password.","done":true}`))
	}))
	defer server.Close()

	gen := NewGenerator(Config{BaseURL: server.URL, Model: "test-llm"})

	text, err := gen.Generate(context.Background(), "What is Rule 2?")
	require.NoError(t, err)

	assert.Equal(t, "Reset the password.", text)
	assert.Equal(t, "test-llm", gotReq.Model)
	assert.Equal(t, "What is Rule 2?", gotReq.Prompt)
	assert.False(t, gotReq.Stream)
	assert.Nil(t, gotReq.Options, "no options without temperature")
}

func TestGenerate_Temperature(t *testing.T) {
	var gotReq generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write([]byte(`{"response":"ok","done":true}`))
	}))
	defer server.Close()

	gen := NewGenerator(Config{BaseURL: server.URL, Temperature: 0.2})

	_, err := gen.Generate(context.Background(), "hi")
	require.NoError(t, err)
	require.NotNil(t, gotReq.Options)
	assert.InDelta(t, 0.2, gotReq.Options.Temperature, 1e-9)
}

func TestGenerate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	gen := NewGenerator(Config{BaseURL: server.URL})

	_, err := gen.Generate(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Contains(t, err.Error(), "model not found")
}

func TestGenerate_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	gen := NewGenerator(Config{BaseURL: server.URL})

	_, err := gen.Generate(context.Background(), "hi")
	require.Error(t, err)
}

func TestModelName(t *testing.T) {
	assert.Equal(t, DefaultModel, NewGenerator(Config{}).ModelName())
	assert.Equal(t, "phi3", NewGenerator(Config{Model: "phi3"}).ModelName())
}
