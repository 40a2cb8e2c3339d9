package file

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docqa/internal/logger"
)

// PromptWatcher reloads a PromptStore whenever a prompt file changes on disk.
type PromptWatcher struct {
	store   *PromptStore
	watcher *fsnotify.Watcher
}

// NewPromptWatcher starts watching the prompt directory of store.
// The directory is created if it does not exist yet.
func NewPromptWatcher(store *PromptStore) (*PromptWatcher, error) {
	if err := store.ensureSeeded(); err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create prompt watcher: %w", err)
	}
	if err := w.Add(store.Dir()); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", store.Dir(), err)
	}

	return &PromptWatcher{store: store, watcher: w}, nil
}

// Run processes events until ctx is cancelled or the watcher is closed.
func (w *PromptWatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.handleEvent(event) {
				logger.Info("prompt %s changed, reloading", filepath.Base(event.Name))
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("prompt watcher: %v", err)
		}
	}
}

// Close stops the underlying watcher.
func (w *PromptWatcher) Close() error {
	return w.watcher.Close()
}

// handleEvent reloads the store for changes to .txt files and reports
// whether it did.
func (w *PromptWatcher) handleEvent(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, promptExt) {
		return false
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	w.store.Reload()
	return true
}
