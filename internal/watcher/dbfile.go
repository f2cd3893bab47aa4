package watcher

import (
	"context"
	"os"
	"time"
)

// DBWatcher watches the database file and its WAL sidecar for mtime
// increases written by another process (the background indexer). Plain polling rather than fsnotify is used deliberately:
// a rename-based WAL checkpoint can replace the underlying inode, which
// some platforms' fsnotify backends miss, while a 100ms mtime poll never
// does.
type DBWatcher struct {
	dbPath  string
	walPath string
	every   time.Duration

	lastDB  int64
	lastWAL int64
}

// NewDBWatcher creates a watcher for dbPath and its "-wal" sidecar, polling
// every interval.
func NewDBWatcher(dbPath string, interval time.Duration) *DBWatcher {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	w := &DBWatcher{dbPath: dbPath, walPath: dbPath + "-wal", every: interval}
	w.lastDB = mtimeOf(dbPath)
	w.lastWAL = mtimeOf(w.walPath)
	return w
}

// Run polls until ctx is cancelled, calling onChange whenever the database
// file or its WAL sidecar's mtime has increased since the last poll.
func (w *DBWatcher) Run(ctx context.Context, onChange func()) {
	ticker := time.NewTicker(w.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			db := mtimeOf(w.dbPath)
			wal := mtimeOf(w.walPath)
			if db > w.lastDB || wal > w.lastWAL {
				w.lastDB = db
				w.lastWAL = wal
				onChange()
			}
		}
	}
}

func mtimeOf(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.ModTime().UnixNano()
}
