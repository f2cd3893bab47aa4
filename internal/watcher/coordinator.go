package watcher

import (
	"context"
	"log"
	"sync"
	"time"
)

// DebounceWindow is the shared debounce window all root watchers and the
// database watcher fall under.
const DebounceWindow = 100 * time.Millisecond

// Coordinator owns one RootWatcher per indexed root plus the database
// watcher, and debounces all of their events behind a single shared
// timer. When the timer fires it calls OnInvalidate exactly once,
// regardless of how many events coalesced into that window.
type Coordinator struct {
	roots []*RootWatcher
	db    *DBWatcher

	onInvalidate func()

	mu    sync.Mutex
	timer *time.Timer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCoordinator creates a coordinator over roots (already-constructed
// RootWatchers) and an optional db watcher (nil disables db-file
// watching, e.g. in tests). onInvalidate is called at most once per
// DebounceWindow of activity.
func NewCoordinator(roots []*RootWatcher, db *DBWatcher, onInvalidate func()) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		roots:        roots,
		db:           db,
		onInvalidate: onInvalidate,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start launches the watch loops. Non-blocking; returns immediately.
func (c *Coordinator) Start() {
	for _, rw := range c.roots {
		rw := rw
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			rw.Start(c.notify, func(err error) {
				log.Printf("watcher: error on root %s: %v", rw.Root(), err)
				// Watcher errors bump the generation too, as a safety
				// measure: we can no longer trust the watch is complete.
				c.notify()
			})
		}()
	}

	if c.db != nil {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.db.Run(c.ctx, c.notify)
		}()
	}
}

// notify resets the shared debounce timer; the timer's own callback is
// what actually invokes onInvalidate.
func (c *Coordinator) notify() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(DebounceWindow, c.fire)
}

func (c *Coordinator) fire() {
	c.onInvalidate()
}

// Close stops every watcher, cancels the shared debounce timer, and waits
// for background goroutines to exit.
func (c *Coordinator) Close() error {
	c.cancel()

	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.mu.Unlock()

	var firstErr error
	for _, rw := range c.roots {
		if err := rw.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.wg.Wait()
	return firstErr
}
