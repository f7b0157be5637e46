package file

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/brandlens/internal/logger"
)

// Watcher reloads a ConfigStore whenever its file is written, created or
// replaced, then calls onChange.
type Watcher struct {
	store    *ConfigStore
	watcher  *fsnotify.Watcher
	onChange func()
}

// NewWatcher creates a watcher for store. onChange may be nil.
func NewWatcher(store *ConfigStore, onChange func()) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		store:    store,
		watcher:  w,
		onChange: onChange,
	}, nil
}

// Start watches the config directory until ctx is done. The directory is
// watched rather than the file so that editors which replace the file via
// rename keep being observed.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.store.Path())
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	logger.Debug("Watching %s for configuration changes", dir)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(w.store.Path()) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				w.reload()
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Config watcher error: %v", err)
			}
		}
	}()

	return nil
}

func (w *Watcher) reload() {
	if err := w.store.Load(); err != nil {
		// Editors may expose a half written file; the next event retries.
		logger.Warn("Reloading %s failed, keeping previous values: %v", w.store.Path(), err)
		return
	}
	logger.Info("Configuration reloaded from %s", w.store.Path())
	if w.onChange != nil {
		w.onChange()
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
