package daemon

import (
	"fmt"
	"net"
	"os"

	"github.com/gofrs/flock"
)

// SingletonDaemon manages daemon singleton enforcement.
// It ensures only one instance of a daemon runs at a time using a file
// lock plus a socket liveness probe.
type SingletonDaemon struct {
	name       string
	socketPath string
	lock       *flock.Flock
}

// NewSingletonDaemon creates a new singleton daemon manager.
// name is used to identify the daemon and derive the lock file path.
// socketPath is the Unix domain socket path for the daemon.
func NewSingletonDaemon(name, socketPath string) *SingletonDaemon {
	return &SingletonDaemon{
		name:       name,
		socketPath: socketPath,
	}
}

// EnforceSingleton attempts to become the singleton instance.
// Returns (true, nil) if this process won and should continue serving.
// Returns (false, nil) if another instance is running (this process should exit 0).
// Returns (false, err) on actual errors.
//
// The file lock is taken first so two starting daemons cannot race past
// each other; the socket probe then distinguishes a live daemon (dialable)
// from a stale socket file left by a crashed one, which the winner may
// safely unlink in BindSocket.
func (s *SingletonDaemon) EnforceSingleton() (bool, error) {
	lockPath := getLockPath(s.name)
	s.lock = flock.New(lockPath)

	locked, err := s.lock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		// Another process has the lock
		return false, nil
	}

	if canDial(s.socketPath) {
		// A daemon is serving without holding the lock (older build, or
		// the lock file was deleted underneath it). Defer to it.
		s.lock.Unlock()
		s.lock = nil
		return false, nil
	}

	// This process won
	return true, nil
}

// BindSocket creates the Unix socket listener, clearing any stale socket
// file first. Caller must have already won via EnforceSingleton().
func (s *SingletonDaemon) BindSocket() (net.Listener, error) {
	// A leftover socket file makes bind fail with EADDRINUSE even when
	// nothing is listening; the lock guarantees it is ours to remove.
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		if isAddrInUse(err) {
			return nil, fmt.Errorf("socket %s claimed by another process: %w", s.socketPath, err)
		}
		return nil, fmt.Errorf("failed to bind socket: %w", err)
	}
	return listener, nil
}

// Release releases the file lock (called on shutdown).
func (s *SingletonDaemon) Release() error {
	if s.lock != nil {
		return s.lock.Unlock()
	}
	return nil
}
