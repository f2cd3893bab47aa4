// Package watcher watches indexed roots and the on-disk database for
// changes and reports them to a coordinator, which is responsible for
// debouncing and deciding what to invalidate.
package watcher

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// RootWatcher recursively watches one indexed root with fsnotify. fsnotify
// does not watch subtrees on its own, so newly created directories are
// added to the watch set as they appear.
type RootWatcher struct {
	root    string
	watcher *fsnotify.Watcher

	mu     sync.Mutex
	closed bool
}

// NewRootWatcher creates (but does not start) a recursive watcher rooted
// at root.
func NewRootWatcher(root string) (*RootWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher for %s: %w", root, err)
	}

	rw := &RootWatcher{root: root, watcher: w}
	if err := rw.addTree(root); err != nil {
		w.Close()
		return nil, err
	}
	return rw, nil
}

// Root returns the watched root path.
func (rw *RootWatcher) Root() string { return rw.root }

// Start runs the watch loop until Close is called. onEvent is invoked for
// every filesystem event under the root; onError for every watcher error
// (watcher errors are treated as a safety-net signal to
// invalidate, not dropped).
func (rw *RootWatcher) Start(onEvent func(), onError func(error)) {
	for {
		select {
		case ev, ok := <-rw.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create) != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := rw.addTree(ev.Name); err != nil {
						log.Printf("watcher: add subtree %s: %v", ev.Name, err)
					}
				}
			}
			onEvent()
		case err, ok := <-rw.watcher.Errors:
			if !ok {
				return
			}
			onError(err)
		}
	}
}

// Close stops the watcher. Safe to call more than once.
func (rw *RootWatcher) Close() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if rw.closed {
		return nil
	}
	rw.closed = true
	return rw.watcher.Close()
}

func (rw *RootWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := rw.watcher.Add(path); err != nil {
			// A directory removed between WalkDir's readdir and Add is not
			// fatal to the whole tree add.
			if os.IsNotExist(err) {
				return nil
			}
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
