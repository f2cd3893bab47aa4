package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRootWatcherFiresOnFileWrite(t *testing.T) {
	dir := t.TempDir()
	rw, err := NewRootWatcher(dir)
	require.NoError(t, err)
	defer rw.Close()

	var events int32
	go rw.Start(func() { atomic.AddInt32(&events, 1) }, func(error) {})

	// Give fsnotify time to register the watch before writing.
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0644))

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&events) > 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRootWatcherWatchesNewSubdirectories(t *testing.T) {
	dir := t.TempDir()
	rw, err := NewRootWatcher(dir)
	require.NoError(t, err)
	defer rw.Close()

	var events int32
	go rw.Start(func() { atomic.AddInt32(&events, 1) }, func(error) {})

	time.Sleep(50 * time.Millisecond)

	sub := filepath.Join(dir, "newdir")
	require.NoError(t, os.Mkdir(sub, 0755))

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&events) > 0
	}, 2*time.Second, 10*time.Millisecond)

	atomic.StoreInt32(&events, 0)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "b.txt"), []byte("x"), 0644))

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&events) > 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRootWatcherCloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	rw, err := NewRootWatcher(dir)
	require.NoError(t, err)

	require.NoError(t, rw.Close())
	require.NoError(t, rw.Close())
}
