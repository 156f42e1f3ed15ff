// Package file provides a JSON file-backed rule-key artifact store.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/secops-tools/socrag-cli/internal/core/domain"
	"github.com/secops-tools/socrag-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.RuleKeyStore = (*Store)(nil)

// wrapped is the enveloped artifact form.
type wrapped struct {
	RuleKeys []domain.RuleKey `json:"rule_keys"`
}

// Store reads and writes the rule-key artifact as a JSON file. Both a
// bare list and a {"rule_keys": [...]} envelope are accepted on read;
// writes always use the envelope.
type Store struct {
	path string
}

// NewStore creates a file store for the given artifact path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the artifact's records. A missing file yields an empty
// slice, not an error.
func (s *Store) Load(_ context.Context) ([]domain.RuleKey, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read rule keys: %w", err)
	}

	var env wrapped
	if err := json.Unmarshal(data, &env); err == nil && env.RuleKeys != nil {
		return env.RuleKeys, nil
	}

	var bare []domain.RuleKey
	if err := json.Unmarshal(data, &bare); err != nil {
		return nil, fmt.Errorf("parse rule keys %s: %w", s.path, err)
	}
	return bare, nil
}

// Replace overwrites the artifact file atomically.
func (s *Store) Replace(_ context.Context, keys []domain.RuleKey) error {
	if keys == nil {
		keys = []domain.RuleKey{}
	}
	data, err := json.MarshalIndent(wrapped{RuleKeys: keys}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal rule keys: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create artifact directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write rule keys: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename rule keys: %w", err)
	}
	return nil
}

// Path returns the artifact file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}
