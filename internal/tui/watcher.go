package tui

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow batches the event burst an editor save produces into a
// single change notification.
const debounceWindow = 100 * time.Millisecond

// Watcher reports changes to the descriptor files in one directory. It
// feeds the picker's live refresh: each reported change means the item
// list should be reloaded.
type Watcher struct {
	fs *fsnotify.Watcher
}

// NewWatcher watches dir for descriptor file changes.
func NewWatcher(dir string) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fs.Add(dir); err != nil {
		_ = fs.Close()
		return nil, err
	}
	return &Watcher{fs: fs}, nil
}

// Close stops the watcher. Pending WaitForChange calls return false.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

// WaitForChange blocks until at least one descriptor file is created,
// written, removed, or renamed, then drains the rest of the burst. It
// returns false when the watcher is closed.
func (w *Watcher) WaitForChange() bool {
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return false
			}
			if !isDescriptorEvent(event) {
				continue
			}
			w.drain()
			return true

		case _, ok := <-w.fs.Errors:
			if !ok {
				return false
			}
			// Watch errors are not actionable here; the next poll of
			// the directory still reflects reality.
		}
	}
}

// drain consumes trailing events from the same save burst.
func (w *Watcher) drain() {
	timer := time.NewTimer(debounceWindow)
	defer timer.Stop()
	for {
		select {
		case _, ok := <-w.fs.Events:
			if !ok {
				return
			}
			timer.Reset(debounceWindow)
		case <-timer.C:
			return
		}
	}
}

// isDescriptorEvent reports whether the event touches a descriptor file.
func isDescriptorEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	ext := filepath.Ext(event.Name)
	return ext == ".yml" || ext == ".yaml"
}
