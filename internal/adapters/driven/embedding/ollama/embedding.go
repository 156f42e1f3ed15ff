// Package ollama provides an embedding service adapter using Ollama.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/secops-tools/socrag-cli/internal/core/domain"
	"github.com/secops-tools/socrag-cli/internal/core/ports/driven"
	"github.com/secops-tools/socrag-cli/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "nomic-embed-text"
	DefaultTimeout = 60 * time.Second

	// DefaultRequestsPerSecond keeps batch embedding from saturating a
	// local Ollama instance that is also serving generation requests.
	DefaultRequestsPerSecond = 10.0
	DefaultBurstSize         = 5
)

// Config holds configuration for the Ollama embedding service.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the embedding model to use (default: nomic-embed-text).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// RequestsPerSecond is the sustained request rate limit.
	RequestsPerSecond float64

	// BurstSize is the maximum burst size.
	BurstSize int
}

// EmbeddingService generates embeddings using Ollama's batch /api/embed
// endpoint.
type EmbeddingService struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
	model   string
}

// embedRequest is the Ollama /api/embed request format.
type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embedResponse is the Ollama /api/embed response format.
type embedResponse struct {
	Embeddings json.RawMessage `json:"embeddings"`
}

// tagsResponse is the Ollama /api/tags response format.
type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// pullRequest is the Ollama /api/pull request format.
type pullRequest struct {
	Name   string `json:"name"`
	Stream bool   `json:"stream"`
}

// NewEmbeddingService creates a new Ollama embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.BurstSize == 0 {
		cfg.BurstSize = DefaultBurstSize
	}

	return &EmbeddingService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}
}

// EmbedBatch embeds the given texts in a single request. An empty input
// returns a zero-row matrix without touching the network.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqBody := embedRequest{
		Model: s.model,
		Input: texts,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/api/embed",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: status %d: failed to read response", domain.ErrEmbeddingUnavailable, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrEmbeddingUnavailable, resp.StatusCode, string(body))
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return shapeEmbeddings(embedResp.Embeddings, len(texts))
}

// shapeEmbeddings parses the embeddings payload as a 2-D matrix, or a
// bare 1-D vector when exactly one text was sent. Anything else is a
// shape error.
func shapeEmbeddings(raw json.RawMessage, want int) ([][]float32, error) {
	var matrix [][]float32
	if err := json.Unmarshal(raw, &matrix); err == nil {
		if len(matrix) != want {
			return nil, fmt.Errorf("%w: got %d rows for %d texts", domain.ErrEmbeddingShape, len(matrix), want)
		}
		width := len(matrix[0])
		for i, row := range matrix {
			if len(row) != width {
				return nil, fmt.Errorf("%w: row %d has width %d, expected %d", domain.ErrEmbeddingShape, i, len(row), width)
			}
		}
		return matrix, nil
	}

	var vector []float32
	if err := json.Unmarshal(raw, &vector); err == nil && want == 1 {
		return [][]float32{vector}, nil
	}

	return nil, fmt.Errorf("%w: embeddings payload is neither 1-D nor 2-D", domain.ErrEmbeddingShape)
}

// EnsureModel checks the local model registry and pulls the configured
// model when it is absent. Pulling blocks until the model is available.
func (s *EmbeddingService) EnsureModel(ctx context.Context) error {
	present, err := s.hasModel(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrModelUnavailable, err)
	}
	if present {
		return nil
	}

	logger.Info("Pulling embedding model %q", s.model)

	reqBody := pullRequest{Name: s.model, Stream: false}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal pull request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/api/pull",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return fmt.Errorf("create pull request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: pull failed: %v", domain.ErrModelUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: pull returned status %d: %s", domain.ErrModelUnavailable, resp.StatusCode, string(body))
	}

	// Drain the body; a non-streaming pull still writes progress lines.
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("read pull response: %w", err)
	}
	return nil
}

// hasModel reports whether the configured model is in /api/tags.
func (s *EmbeddingService) hasModel(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return false, fmt.Errorf("create tags request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("tags request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("tags returned status %d", resp.StatusCode)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return false, fmt.Errorf("decode tags response: %w", err)
	}

	for _, m := range tags.Models {
		if m.Name == s.model || m.Name == s.model+":latest" {
			return true, nil
		}
	}
	return false, nil
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by checking the /api/tags endpoint.
// This is a lightweight check that validates connectivity without running inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("ollama: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("ollama: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
