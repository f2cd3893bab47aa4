// Package daemon provides the search daemon's lifecycle management
// components: client-side auto-start, daemon-side singleton enforcement,
// and connection error classification.
//
// # Core Components
//
// 1. Client-Side Auto-Start (EnsureDaemon)
//   - Ensures the daemon is running before a client's first request
//   - NO client-side locking (multiple spawns allowed)
//   - Daemon-side singleton enforcement prevents duplicates
//   - Safe to call concurrently from multiple clients
//
// 2. Daemon-Side Singleton Enforcement (SingletonDaemon)
//   - Prevents multiple daemon processes using a file lock + socket dial probe
//   - Losing daemons exit gracefully (code 0)
//   - File lock prevents race conditions during startup
//
// 3. Connection Error Detection (IsConnectionError)
//   - Identifies daemon connection failures so a client can resurrect it
//
// # Usage Pattern: Client Auto-Start
//
//	func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
//	    cfg, err := daemon.NewDaemonConfig(
//	        "pickme",
//	        daemon.DefaultSocketPath(),
//	        []string{"pickme", "daemon", "start"},
//	        30 * time.Second,
//	    )
//	    if err != nil {
//	        return nil, fmt.Errorf("invalid daemon config: %w", err)
//	    }
//
//	    if err := daemon.EnsureDaemon(ctx, cfg); err != nil {
//	        return nil, fmt.Errorf("failed to ensure daemon: %w", err)
//	    }
//
//	    return c.search(ctx, query)
//	}
//
// # Usage Pattern: Daemon Singleton Enforcement
//
//	func main() {
//	    singleton := daemon.NewSingletonDaemon("pickme", daemon.DefaultSocketPath())
//
//	    won, err := singleton.EnforceSingleton()
//	    if err != nil {
//	        log.Fatalf("Singleton check failed: %v", err)
//	    }
//	    if !won {
//	        fmt.Println("pickme daemon already running")
//	        os.Exit(0)
//	    }
//	    defer singleton.Release()
//
//	    listener, _ := singleton.BindSocket()
//	    serve(listener)
//	}
//
// # Concurrent Client Spawns
//
// Multiple clients can call EnsureDaemon simultaneously. All spawn daemons,
// but daemon-side singleton enforcement ensures only one survives:
//
//	Scenario: 10 clients call EnsureDaemon() simultaneously, daemon not running
//
//	Flow:
//	  1. All 10 clients see socket dial fail (daemon not running)
//	  2. All 10 clients spawn "pickme daemon start" (no client locks)
//	  3. 10 daemon processes start simultaneously
//	  4. All 10 daemons call EnforceSingleton()
//	  5. ONE daemon wins (file lock acquired, no live daemon answers on the socket)
//	  6. 9 daemons lose (file lock already held) → exit code 0
//	  7. All 10 clients wait for socket to be dialable → all succeed (connect to winner)
//
//	Result: Only one daemon survives, all clients succeed
//
// # Key Design Principles
//
// 1. NO CLIENT-SIDE LOCKING
//   - Clients never acquire locks
//   - Multiple daemon spawns are expected and OK
//
// 2. DAEMON-SIDE SINGLETON ENFORCEMENT
//   - Daemons take a file lock, then dial the socket to detect a live daemon
//   - File lock prevents race conditions during startup
//   - Losing daemons exit gracefully (not an error)
//
// 3. GRACEFUL DEGRADATION
//   - Missing config files → use defaults
//   - Connection failures → auto-resurrect
//   - Stale sockets → auto-cleanup
package daemon

import (
	"context"
	"fmt"
	"os/exec"
)

// EnsureDaemon ensures daemon is running, starting it if needed.
// Safe to call concurrently from multiple clients.
// If multiple clients spawn multiple daemons, daemon-side singleton
// enforcement ensures only one daemon wins. Losing daemons exit gracefully.
// Returns nil if daemon is healthy (already running or successfully started).
//
// Flow:
//  1. Fast path: Check if socket is dialable → return immediately
//  2. Spawn daemon in detached process group
//  3. Wait for socket to become dialable (with timeout)
//
// Note: Multiple clients may spawn multiple daemon processes simultaneously.
// Daemon-side singleton enforcement (file lock + socket dial probe) ensures only
// one daemon wins. Losing daemons detect they lost and exit gracefully (code 0).
//
// Example usage:
//
//	cfg, _ := daemon.NewDaemonConfig(
//	    "pickme",
//	    daemon.DefaultSocketPath(),
//	    []string{"pickme", "daemon", "start"},
//	    30 * time.Second,
//	)
//	err := daemon.EnsureDaemon(ctx, cfg)
func EnsureDaemon(ctx context.Context, cfg *DaemonConfig) error {
	// 1. Fast path: check if socket is dialable
	if canDial(cfg.SocketPath) {
		return nil
	}

	// 2. Spawn daemon (detached)
	// Multiple clients may spawn multiple daemons - that's OK
	// Daemon-side singleton enforcement ensures only one wins
	cmd := exec.Command(cfg.StartCommand[0], cfg.StartCommand[1:]...)
	cmd.SysProcAttr = getSysProcAttr()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	// 3. Wait for socket to become dialable
	// If multiple daemons spawned, only one passes EnforceSingleton
	// Others exit gracefully, this client just waits for the winner
	return waitForHealthy(ctx, cfg)
}
