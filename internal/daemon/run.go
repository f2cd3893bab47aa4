package daemon

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/galligan/pickme/internal/cache"
	"github.com/galligan/pickme/internal/config"
	"github.com/galligan/pickme/internal/git"
	"github.com/galligan/pickme/internal/lifecycle"
	"github.com/galligan/pickme/internal/query"
	"github.com/galligan/pickme/internal/storage"
	"github.com/galligan/pickme/internal/watcher"
)

// RunOptions parameterizes one daemon process.
type RunOptions struct {
	Cfg         *config.Config
	SocketPath  string        // empty uses DefaultSocketPath
	DBPath      string        // empty uses DefaultDBPath
	IdleTimeout time.Duration // zero uses lifecycle.DefaultIdleTimeout
}

// Run starts the daemon and blocks until shutdown completes. It returns
// nil on any clean shutdown (idle timeout, stop request, signal, losing
// the singleton race); the entry point exits 0 either way.
func Run(opts RunOptions) error {
	socketPath := opts.SocketPath
	if socketPath == "" {
		if opts.Cfg.Daemon.SocketPath != "" {
			socketPath = opts.Cfg.Daemon.SocketPath
		} else {
			socketPath = DefaultSocketPath()
		}
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = DefaultDBPath()
	}

	if err := EnsureDir0700(filepath.Dir(socketPath)); err != nil {
		return fmt.Errorf("socket directory: %w", err)
	}

	singleton := NewSingletonDaemon("pickme", socketPath)
	won, err := singleton.EnforceSingleton()
	if err != nil {
		return fmt.Errorf("singleton check: %w", err)
	}
	if !won {
		log.Printf("daemon: another instance is already serving %s", socketPath)
		return nil
	}

	listener, err := singleton.BindSocket()
	if err != nil {
		singleton.Release()
		return fmt.Errorf("bind socket: %w", err)
	}

	db, err := openIndex(dbPath)
	if err != nil {
		listener.Close()
		singleton.Release()
		return err
	}

	state := NewState()
	state.SetRootsLoaded(opts.Cfg.Index.Roots)

	ttl, err := cache.NewTTLCache[[]query.Result](0)
	if err != nil {
		db.Close()
		listener.Close()
		singleton.Release()
		return err
	}
	prefix := cache.NewPrefixCache[query.Result]()
	circuit := lifecycle.NewCircuit()

	var rootWatchers []*watcher.RootWatcher
	for _, root := range opts.Cfg.Index.Roots {
		rw, err := watcher.NewRootWatcher(root)
		if err != nil {
			log.Printf("daemon: cannot watch %s: %v", root, err)
			continue
		}
		rootWatchers = append(rootWatchers, rw)
	}
	state.SetActiveWatchers(len(rootWatchers))

	dbw := watcher.NewDBWatcher(dbPath, 0)
	coordinator := watcher.NewCoordinator(rootWatchers, dbw, func() {
		state.BumpGeneration()
		prefix.Clear()
	})

	manager := lifecycle.NewManager(opts.IdleTimeout, state.IdleFor)

	dispatcher := &Dispatcher{
		DB:              db,
		Cfg:             opts.Cfg,
		State:           state,
		TTL:             ttl,
		Prefix:          prefix,
		Circuit:         circuit,
		Git:             git.NewOperations(),
		RequestShutdown: manager.Shutdown,
	}
	server := NewServer(listener, dispatcher.Handle)

	manager.OnShutdown(func() { server.Close() })
	manager.OnShutdown(func() { coordinator.Close() })
	manager.OnShutdown(ttl.Close)
	manager.OnShutdown(func() { db.Close() })
	manager.OnShutdown(func() { os.Remove(socketPath) })
	manager.OnShutdown(func() { singleton.Release() })

	coordinator.Start()
	manager.Start()

	go func() {
		if err := server.Serve(); err != nil {
			log.Printf("daemon: serve: %v", err)
			manager.Shutdown()
		}
	}()

	log.Printf("daemon: serving on %s", socketPath)
	<-manager.Done()
	return nil
}

// openIndex opens the index database. An existing database is opened
// read-only (the background indexer process is its writer); a missing one
// is created writable so the schema exists before the first refresh.
func openIndex(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("data directory: %w", err)
	}

	if _, err := os.Stat(dbPath); err == nil {
		db, err := storage.Open(dbPath, storage.OpenOptions{ReadOnly: true})
		if err != nil {
			return nil, fmt.Errorf("open index read-only: %w", err)
		}
		return db, nil
	}

	db, err := storage.Open(dbPath, storage.OpenOptions{})
	if err != nil {
		return nil, fmt.Errorf("initialize index: %w", err)
	}
	return db, nil
}
