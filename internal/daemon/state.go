package daemon

import (
	"sync"
	"sync/atomic"
	"time"
)

// State is the daemon's shared mutable state: the invalidation generation
// counter, last-activity timestamp, and the set of currently loaded roots
// and watchers reported by the health handler. Every field
// here is touched only from handler code or guarded explicitly, never both.
type State struct {
	startedAt      time.Time
	generation     int64
	lastActivityMs int64

	mu             sync.Mutex
	rootsLoaded    []string
	activeWatchers int
}

// NewState returns a fresh State with generation 0 and activity stamped to
// now.
func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.Touch()
	return s
}

// Generation returns the current invalidation generation.
func (s *State) Generation() int64 {
	return atomic.LoadInt64(&s.generation)
}

// BumpGeneration increments the generation counter (invalidate request or a
// debounced file-change event) and returns the new value.
func (s *State) BumpGeneration() int64 {
	return atomic.AddInt64(&s.generation, 1)
}

// Touch records that a request was just handled.
func (s *State) Touch() {
	atomic.StoreInt64(&s.lastActivityMs, time.Now().UnixMilli())
}

// IdleFor returns how long it has been since the last handled request.
func (s *State) IdleFor() time.Duration {
	last := atomic.LoadInt64(&s.lastActivityMs)
	return time.Since(time.UnixMilli(last))
}

// Uptime returns how long the daemon has been running.
func (s *State) Uptime() time.Duration {
	return time.Since(s.startedAt)
}

// SetRootsLoaded records the set of roots currently backing the index.
func (s *State) SetRootsLoaded(roots []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rootsLoaded = append([]string(nil), roots...)
}

// RootsLoaded returns a copy of the currently loaded roots.
func (s *State) RootsLoaded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.rootsLoaded...)
}

// SetActiveWatchers records how many root watchers are currently running.
func (s *State) SetActiveWatchers(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeWatchers = n
}

// ActiveWatchers returns the currently recorded watcher count.
func (s *State) ActiveWatchers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeWatchers
}
