package data

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// ErrDatabaseChanged is reported once the mapped database file has been
// modified or replaced on disk. The running process keeps serving the
// original mapping; a restart is required to pick up the new file.
var ErrDatabaseChanged = errors.New("database file changed on disk, restart required")

const watchedOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// FileWatcher reports changes to a database file.
type FileWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onChange func()
	changed  atomic.Bool
	done     chan struct{}
}

// WatchFile starts watching path. The parent directory is watched so that
// atomic replacements (rename over the file) are noticed too. onChange, if
// not nil, is called once on the first change.
func WatchFile(path string, onChange func()) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	fw := &FileWatcher{
		path:     abs,
		watcher:  w,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	go fw.run()

	return fw, nil
}

func (fw *FileWatcher) run() {
	defer close(fw.done)

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fw.path || !event.Has(watchedOps) {
				continue
			}
			if fw.changed.CompareAndSwap(false, true) {
				slog.Warn("database file changed on disk", "path", fw.path, "op", event.Op.String())
				if fw.onChange != nil {
					fw.onChange()
				}
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("database watcher error", "path", fw.path, "error", err)
		}
	}
}

// Changed reports whether the file has changed since the watch started.
func (fw *FileWatcher) Changed() bool {
	return fw.changed.Load()
}

// Ready returns ErrDatabaseChanged once the file has changed.
func (fw *FileWatcher) Ready() error {
	if fw.Changed() {
		return ErrDatabaseChanged
	}
	return nil
}

// Close stops the watcher.
func (fw *FileWatcher) Close() error {
	err := fw.watcher.Close()
	<-fw.done
	return err
}
