package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCoordinatorDebouncesBurstsToOneInvalidation(t *testing.T) {
	dir := t.TempDir()
	rw, err := NewRootWatcher(dir)
	require.NoError(t, err)

	var invalidations int32
	coord := NewCoordinator([]*RootWatcher{rw}, nil, func() {
		atomic.AddInt32(&invalidations, 1)
	})
	coord.Start()
	defer coord.Close()

	time.Sleep(50 * time.Millisecond)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "f.txt"), []byte{byte(i)}, 0644))
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&invalidations) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// No further invalidation should arrive once the burst has settled.
	time.Sleep(200 * time.Millisecond)
	require.Equal(t, int32(1), atomic.LoadInt32(&invalidations))
}

func TestCoordinatorCloseStopsWatchers(t *testing.T) {
	dir := t.TempDir()
	rw, err := NewRootWatcher(dir)
	require.NoError(t, err)

	coord := NewCoordinator([]*RootWatcher{rw}, nil, func() {})
	coord.Start()
	require.NoError(t, coord.Close())
}
