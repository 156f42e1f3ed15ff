// Package jsonl reads pre-chunked documents from a JSON Lines file.
package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/secops-tools/socrag-cli/internal/core/domain"
	"github.com/secops-tools/socrag-cli/internal/core/ports/driven"
	"github.com/secops-tools/socrag-cli/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.ChunkSource = (*Source)(nil)

// maxLineBytes bounds a single chunk line. Tracker exports with large
// embedded payloads still fit comfortably.
const maxLineBytes = 1 << 20

// line is the wire format of one chunk record.
type line struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

// Source reads chunks from a JSONL file, one {"text", "metadata"}
// object per line. Blank lines are skipped; a malformed line fails the
// whole read rather than silently dropping data.
type Source struct {
	path string
}

// NewSource creates a chunk source for the given file path.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// Read returns all chunks in file order.
func (s *Source) Read(_ context.Context) ([]domain.Chunk, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open chunks file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var chunks []domain.Chunk
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var rec line
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("parse %s line %d: %w", s.path, lineNo, err)
		}
		if rec.Text == "" {
			logger.Debug("Skipping empty chunk at %s line %d", s.path, lineNo)
			continue
		}

		chunks = append(chunks, domain.Chunk{Text: rec.Text, Metadata: rec.Metadata})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read chunks file: %w", err)
	}
	return chunks, nil
}

// Path returns the chunks file path.
func (s *Source) Path() string {
	return s.path
}
