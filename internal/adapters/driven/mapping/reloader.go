// Package mapping provides a rule-mapping provider that reloads the
// rule-key artifact when it changes on disk.
package mapping

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/secops-tools/socrag-cli/internal/core/domain"
	"github.com/secops-tools/socrag-cli/internal/core/ports/driven"
	"github.com/secops-tools/socrag-cli/internal/logger"
)

// Ensure Reloader implements the interface.
var _ driven.RuleMappingProvider = (*Reloader)(nil)

// Reloader serves the current RuleMapping and rebuilds it from the
// rule-key store whenever the artifact file changes. Each rebuild is a
// fresh RuleMapping swapped in atomically; readers never observe an
// in-place mutation.
type Reloader struct {
	store   driven.RuleKeyStore
	path    string
	current atomic.Pointer[domain.RuleMapping]
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewReloader loads the initial mapping from the store and starts
// watching the artifact path for changes. An absent artifact is fine;
// the mapping stays empty until the file appears.
func NewReloader(ctx context.Context, store driven.RuleKeyStore, path string) (*Reloader, error) {
	r := &Reloader{
		store: store,
		path:  path,
		done:  make(chan struct{}),
	}

	if err := r.reload(ctx); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory, not the file: atomic writers rename a temp
	// file into place, which drops a watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	r.watcher = watcher

	go r.loop()
	return r, nil
}

// NewStatic builds a provider without a watcher, loading the mapping
// once. Used by one-shot commands where a reload can never matter.
func NewStatic(ctx context.Context, store driven.RuleKeyStore) (*Reloader, error) {
	r := &Reloader{store: store}
	if err := r.reload(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// Mapping returns the current mapping. May be nil before the first
// successful load of a non-empty artifact.
func (r *Reloader) Mapping() *domain.RuleMapping {
	return r.current.Load()
}

func (r *Reloader) reload(ctx context.Context) error {
	keys, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load rule keys: %w", err)
	}
	if len(keys) == 0 {
		r.current.Store(nil)
		return nil
	}
	r.current.Store(domain.NewRuleMapping(keys))
	logger.Debug("Rule mapping loaded: %d records", len(keys))
	return nil
}

func (r *Reloader) loop() {
	base := filepath.Base(r.path)
	for {
		select {
		case <-r.done:
			return
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := r.reload(context.Background()); err != nil {
				logger.Warn("Rule mapping reload failed: %v", err)
				continue
			}
			logger.Info("Rule mapping reloaded after change to %s", event.Name)
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Rule mapping watcher error: %v", err)
		}
	}
}

// Close stops the watcher.
func (r *Reloader) Close() error {
	if r.watcher == nil {
		return nil
	}
	close(r.done)
	return r.watcher.Close()
}
