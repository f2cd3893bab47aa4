package daemon

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galligan/pickme/internal/cache"
	"github.com/galligan/pickme/internal/config"
	"github.com/galligan/pickme/internal/daemonproto"
	"github.com/galligan/pickme/internal/git"
	"github.com/galligan/pickme/internal/lifecycle"
	"github.com/galligan/pickme/internal/query"
	"github.com/galligan/pickme/internal/storage"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *atomic.Int32) {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "index.db"), storage.OpenOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.UpsertFiles(db, []storage.FileEntry{
		{Path: "/p/button.ts", Filename: "button.ts", DirComponents: "", Root: "/p", RelativePath: "button.ts", MtimeMs: 1},
		{Path: "/p/src/label.ts", Filename: "label.ts", DirComponents: "src", Root: "/p", RelativePath: "src/label.ts", MtimeMs: 2},
	}))

	ttl, err := cache.NewTTLCache[[]query.Result](0)
	require.NoError(t, err)
	t.Cleanup(ttl.Close)

	gitOps := git.NewMockGitOps()
	gitOps.WorktreeRoot = "/p"

	var shutdowns atomic.Int32
	d := &Dispatcher{
		DB:              db,
		Cfg:             config.Default(),
		State:           NewState(),
		TTL:             ttl,
		Prefix:          cache.NewPrefixCache[query.Result](),
		Circuit:         lifecycle.NewCircuit(),
		Git:             gitOps,
		RequestShutdown: func() { shutdowns.Add(1) },
	}
	return d, &shutdowns
}

func searchReq(id, q string) daemonproto.SearchRequest {
	return daemonproto.SearchRequest{ID: id, Query: q, Cwd: "/p", Limit: 20}
}

func TestSearchMissThenHit(t *testing.T) {
	d, _ := newTestDispatcher(t)
	ctx := context.Background()

	first := d.Handle(ctx, searchReq("r1", "button"))
	require.True(t, first.OK, first.Error)
	require.NotNil(t, first.Cached)
	assert.False(t, *first.Cached)
	require.Len(t, first.Results, 1)
	assert.Equal(t, "/p/button.ts", first.Results[0].Path)

	second := d.Handle(ctx, searchReq("r2", "button"))
	require.True(t, second.OK, second.Error)
	require.NotNil(t, second.Cached)
	assert.True(t, *second.Cached)
	assert.Equal(t, first.Results, second.Results)
}

func TestSearchRetypeServedFromPrefixCache(t *testing.T) {
	d, _ := newTestDispatcher(t)
	ctx := context.Background()

	first := d.Handle(ctx, searchReq("r1", "but"))
	require.True(t, first.OK, first.Error)

	second := d.Handle(ctx, searchReq("r2", "butt"))
	require.True(t, second.OK, second.Error)
	require.NotNil(t, second.Cached)
	assert.True(t, *second.Cached, "retyping a longer query must hit the prefix cache")

	// Subset property: nothing in the second result set that the first
	// did not contain.
	firstPaths := map[string]bool{}
	for _, r := range first.Results {
		firstPaths[r.Path] = true
	}
	for _, r := range second.Results {
		assert.True(t, firstPaths[r.Path], "unexpected new path %s", r.Path)
	}
}

func TestInvalidateForcesCacheMiss(t *testing.T) {
	d, _ := newTestDispatcher(t)
	ctx := context.Background()

	d.Handle(ctx, searchReq("r1", "button"))
	gen := d.State.Generation()

	inv := d.Handle(ctx, daemonproto.InvalidateRequest{ID: "r2"})
	require.True(t, inv.OK)
	assert.Equal(t, gen+1, d.State.Generation())

	after := d.Handle(ctx, searchReq("r3", "button"))
	require.True(t, after.OK, after.Error)
	require.NotNil(t, after.Cached)
	assert.False(t, *after.Cached, "invalidate must force the next search to miss")
}

func TestInvalidateIsIdempotentPerCall(t *testing.T) {
	d, _ := newTestDispatcher(t)
	ctx := context.Background()

	before := d.State.Generation()
	for i := 0; i < 3; i++ {
		d.Handle(ctx, daemonproto.InvalidateRequest{ID: "r"})
	}
	assert.Equal(t, before+3, d.State.Generation())
}

func TestSearchInactiveConfigReturnsEmpty(t *testing.T) {
	d, _ := newTestDispatcher(t)
	d.Cfg.Active = false

	resp := d.Handle(context.Background(), searchReq("r1", "button"))
	require.True(t, resp.OK)
	assert.Empty(t, resp.Results)
}

func TestStopRequestsShutdown(t *testing.T) {
	d, shutdowns := newTestDispatcher(t)

	resp := d.Handle(context.Background(), daemonproto.StopRequest{ID: "r1"})
	require.True(t, resp.OK)

	require.Eventually(t, func() bool { return shutdowns.Load() == 1 },
		time.Second, 5*time.Millisecond)
}

func TestHealthReportsState(t *testing.T) {
	d, _ := newTestDispatcher(t)
	d.State.SetRootsLoaded([]string{"/p"})
	d.State.SetActiveWatchers(1)

	resp := d.Handle(context.Background(), daemonproto.HealthRequest{ID: "r1"})
	require.True(t, resp.OK)
	require.NotNil(t, resp.Health)
	assert.Equal(t, []string{"/p"}, resp.Health.RootsLoaded)
	assert.Equal(t, 1, resp.Health.ActiveWatchers)
	assert.Greater(t, resp.Health.RSSBytes, uint64(0))
}

func TestWithTimeoutAbandonsSlowHandler(t *testing.T) {
	started := make(chan struct{})
	resp := withTimeout(context.Background(), 20*time.Millisecond, "slow", func(context.Context) daemonproto.Response {
		close(started)
		time.Sleep(500 * time.Millisecond)
		return daemonproto.NewAckResponse("slow")
	})

	<-started
	assert.False(t, resp.OK)
	assert.Equal(t, "Request timeout", resp.Error)
	assert.Equal(t, "slow", resp.ID)
}
