// Package secret provides the Mandrill API key to the provider client.
//
// The key either comes from the environment (Static) or from a file that is
// re-read whenever it changes on disk (FileWatcher), which lets mounted
// secrets rotate without restarting the process.
package secret

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Source returns the current API key. An empty string means no key is available.
type Source interface {
	Key() string
}

// Static is a Source backed by a fixed value.
type Static string

// Key returns the fixed value.
func (s Static) Key() string { return strings.TrimSpace(string(s)) }

// FileWatcher is a Source backed by a file whose content is the key.
type FileWatcher struct {
	path    string
	key     atomic.Pointer[string]
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	done    chan struct{}
}

// NewFileWatcher reads the key from path and starts watching the file's
// directory for changes. The initial read must succeed.
func NewFileWatcher(path string, logger *slog.Logger) (*FileWatcher, error) {
	path = filepath.Clean(path)
	w := &FileWatcher{
		path:   path,
		logger: logger,
		done:   make(chan struct{}),
	}
	if err := w.reload(); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Watch the directory rather than the file so atomic renames and
	// symlink swaps of mounted secrets are observed.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}
	w.watcher = fw

	go w.run()
	return w, nil
}

// Key returns the most recently read key.
func (w *FileWatcher) Key() string {
	if k := w.key.Load(); k != nil {
		return *k
	}
	return ""
}

// Close stops watching the file.
func (w *FileWatcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *FileWatcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
				continue
			}
			if err := w.reload(); err != nil {
				// The file may be briefly absent during a rename; keep the old key.
				w.logger.Warn("api key reload failed", "path", w.path, "error", err)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("api key watcher error", "path", w.path, "error", err)
		}
	}
}

func (w *FileWatcher) reload() error {
	b, err := os.ReadFile(w.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("api key file %s does not exist: %w", w.path, err)
		}
		return fmt.Errorf("failed to read api key file: %w", err)
	}
	key := strings.TrimSpace(string(b))
	if prev := w.key.Swap(&key); prev != nil && *prev != key {
		w.logger.Info("api key reloaded", "path", w.path)
	}
	return nil
}
