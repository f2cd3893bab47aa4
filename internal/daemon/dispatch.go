package daemon

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/galligan/pickme/internal/cache"
	"github.com/galligan/pickme/internal/config"
	"github.com/galligan/pickme/internal/daemonproto"
	"github.com/galligan/pickme/internal/git"
	"github.com/galligan/pickme/internal/lifecycle"
	"github.com/galligan/pickme/internal/query"
	"github.com/galligan/pickme/internal/storage"
)

// RequestTimeout bounds each handler. On expiry the client gets an error
// response; the underlying work is not cancelled, its result is discarded.
const RequestTimeout = 5 * time.Second

// Dispatcher routes decoded requests to their handlers. It owns the
// per-request view of shared daemon state: generation, caches, circuit
// breaker, and the storage handle.
type Dispatcher struct {
	DB      *sql.DB
	Cfg     *config.Config
	State   *State
	TTL     *cache.TTLCache[[]query.Result]
	Prefix  *cache.PrefixCache[query.Result]
	Circuit *lifecycle.Circuit

	// Git widens a request's cwd to the enclosing worktree root, so a
	// search from a subdirectory still covers the whole project. Nil
	// leaves cwd as-is.
	Git git.Operations

	// RequestShutdown asks the lifecycle manager to shut the daemon down.
	// Called asynchronously so the response for the triggering request is
	// still written first.
	RequestShutdown func()
}

// Handle processes one request inside the request timeout and always
// produces exactly one response.
func (d *Dispatcher) Handle(ctx context.Context, req daemonproto.Request) daemonproto.Response {
	d.State.Touch()

	return withTimeout(ctx, RequestTimeout, req.RequestID(), func(ctx context.Context) daemonproto.Response {
		switch r := req.(type) {
		case daemonproto.SearchRequest:
			return d.handleSearch(ctx, r)
		case daemonproto.HealthRequest:
			return d.handleHealth(r)
		case daemonproto.InvalidateRequest:
			return d.handleInvalidate(r)
		case daemonproto.StopRequest:
			return d.handleStop(r)
		default:
			return daemonproto.NewErrorResponse(req.RequestID(), errors.New("unhandled request kind"))
		}
	})
}

// withTimeout runs handle on its own goroutine and abandons it if it
// exceeds d. The goroutine keeps running to completion; only the result
// is discarded.
func withTimeout(ctx context.Context, d time.Duration, id string, handle func(context.Context) daemonproto.Response) daemonproto.Response {
	ch := make(chan daemonproto.Response, 1)
	go func() {
		ch <- handle(ctx)
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case resp := <-ch:
		return resp
	case <-timer.C:
		return daemonproto.NewErrorResponse(id, errors.New("Request timeout"))
	}
}

func (d *Dispatcher) handleSearch(ctx context.Context, req daemonproto.SearchRequest) daemonproto.Response {
	start := time.Now()

	if d.Circuit.MaybeCheckRSS(start) == lifecycle.RSSExceeded {
		go d.RequestShutdown()
	}

	if !d.Cfg.Active {
		return daemonproto.NewSearchResponse(req.ID, []daemonproto.ResultItem{}, false, msSince(start))
	}

	limit := query.EffectiveLimit(len(req.Query), req.Limit, 0)
	key := cache.Key{
		Generation: d.State.Generation(),
		Cwd:        req.Cwd,
		Query:      req.Query,
		Limit:      limit,
	}

	if results, ok := d.TTL.Get(key); ok {
		return daemonproto.NewSearchResponse(req.ID, toItems(results), true, msSince(start))
	}

	if results, ok := d.Prefix.Lookup(req.Query, req.Cwd, prefixMatcher(req.Query)); ok {
		if len(results) > limit {
			results = results[:limit]
		}
		d.TTL.Set(key, results, len(results) == 0)
		return daemonproto.NewSearchResponse(req.ID, toItems(results), true, msSince(start))
	}

	projectRoot := req.Cwd
	if projectRoot != "" && d.Git != nil {
		projectRoot = d.Git.GetWorktreeRoot(projectRoot)
	}

	results, err := query.Search(d.DB, query.Request{
		Query:       req.Query,
		ProjectRoot: projectRoot,
		Limit:       limit,
		Namespaces:  d.Cfg.Namespaces,
		Weights: storage.Weights{
			Recency:   d.Cfg.Weights.GitRecency,
			Frequency: d.Cfg.Weights.GitFrequency,
			Status:    d.Cfg.Weights.GitStatus,
		},
	})
	if err != nil {
		if d.Circuit.RecordDBError() == lifecycle.DBExit {
			go d.RequestShutdown()
		}
		resp := daemonproto.NewErrorResponse(req.ID, err)
		resp.DurationMs = msSince(start)
		return resp
	}
	d.Circuit.RecordDBSuccess()

	d.TTL.Set(key, results, len(results) == 0)
	d.Prefix.Store(req.Query, req.Cwd, results)

	return daemonproto.NewSearchResponse(req.ID, toItems(results), false, msSince(start))
}

func (d *Dispatcher) handleHealth(req daemonproto.HealthRequest) daemonproto.Response {
	return daemonproto.NewHealthResponse(req.ID, daemonproto.HealthInfo{
		UptimeMs:       d.State.Uptime().Milliseconds(),
		RSSBytes:       lifecycle.CurrentRSS(),
		Generation:     d.State.Generation(),
		CacheHitRate:   d.TTL.HitRate(),
		ActiveWatchers: d.State.ActiveWatchers(),
		RootsLoaded:    d.State.RootsLoaded(),
	})
}

func (d *Dispatcher) handleInvalidate(req daemonproto.InvalidateRequest) daemonproto.Response {
	d.State.BumpGeneration()
	d.Prefix.Clear()
	return daemonproto.NewAckResponse(req.ID)
}

func (d *Dispatcher) handleStop(req daemonproto.StopRequest) daemonproto.Response {
	go d.RequestShutdown()
	return daemonproto.NewAckResponse(req.ID)
}

// prefixMatcher narrows a prefix-cached result set to the longer query: a
// stored result survives if its path contains the trailing token of the
// new query, case-insensitively.
func prefixMatcher(rawQuery string) func(query.Result) bool {
	token := strings.ToLower(lastToken(rawQuery))
	if token == "" {
		return nil
	}
	return func(r query.Result) bool {
		return strings.Contains(strings.ToLower(r.Path), token)
	}
}

func lastToken(q string) string {
	fields := strings.FieldsFunc(q, func(r rune) bool {
		return r == ' ' || r == '/' || r == ':'
	})
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

func toItems(results []query.Result) []daemonproto.ResultItem {
	items := make([]daemonproto.ResultItem, len(results))
	for i, r := range results {
		items[i] = daemonproto.ResultItem{Path: r.Path, Score: r.Score, Root: r.Root}
	}
	return items
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
