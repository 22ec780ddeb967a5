package dataset

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mBrond/chat-medicamentos/internal/infrastructure/observability"
)

// DefaultDebounce collapses the burst of writes an editor or a copy produces
const DefaultDebounce = 250 * time.Millisecond

// FileWatcher calls onChange after a local dataset file is written, replaced
// or removed. The parent directory is watched so atomic renames are seen.
type FileWatcher struct {
	fw       *fsnotify.Watcher
	target   string
	debounce time.Duration
	done     chan struct{}

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewFileWatcher creates a watcher for one file
func NewFileWatcher(path string, debounce time.Duration) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &FileWatcher{
		fw:       fw,
		target:   abs,
		debounce: debounce,
		done:     make(chan struct{}),
	}, nil
}

// Watch starts monitoring. onChange runs on its own goroutine once per
// quiet period, never concurrently with itself.
func (w *FileWatcher) Watch(onChange func()) error {
	if err := w.fw.Add(filepath.Dir(w.target)); err != nil {
		return err
	}

	var fire sync.Mutex
	go func() {
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != w.target {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					w.schedule(func() {
						fire.Lock()
						defer fire.Unlock()
						onChange()
					})
				}

			case err, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				observability.GetLogger().Warn().Err(err).Str("path", w.target).Msg("dataset watcher error")

			case <-w.done:
				return
			}
		}
	}()
	return nil
}

func (w *FileWatcher) schedule(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, fn)
}

// Stop ends monitoring. Safe to call multiple times.
func (w *FileWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.done)
	return w.fw.Close()
}
