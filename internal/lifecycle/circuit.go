package lifecycle

import (
	"bufio"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Resident-memory thresholds: crossing RSSWarnBytes logs a warning,
// crossing RSSLimitBytes shuts the daemon down.
const (
	RSSWarnBytes  = 256 << 20
	RSSLimitBytes = 512 << 20

	// RSSCheckInterval rate-limits MaybeCheckRSS: the request path calls
	// it on every search but a sample is taken at most this often.
	RSSCheckInterval = 30 * time.Second
)

// RSSVerdict is the outcome of an RSS sample.
type RSSVerdict int

const (
	RSSOk RSSVerdict = iota
	RSSWarn
	RSSExceeded
)

// DBAction tells the request path what to do after a database error.
type DBAction int

const (
	// DBRetry: first consecutive failure, surface the error and let the
	// client retry.
	DBRetry DBAction = iota
	// DBExit: second consecutive failure, the caller should initiate
	// shutdown.
	DBExit
)

// Circuit tracks resident memory and consecutive database errors for the
// daemon's two circuit breakers.
type Circuit struct {
	mu           sync.Mutex
	lastRSSCheck time.Time
	dbErrors     int

	// readRSS is swappable in tests.
	readRSS func() uint64
}

// NewCircuit returns a circuit breaker sampling real process RSS.
func NewCircuit() *Circuit {
	return &Circuit{readRSS: CurrentRSS}
}

// MaybeCheckRSS samples resident memory if RSSCheckInterval has elapsed
// since the previous sample, logging a warning above RSSWarnBytes. The
// caller initiates shutdown on RSSExceeded.
func (c *Circuit) MaybeCheckRSS(now time.Time) RSSVerdict {
	c.mu.Lock()
	if now.Sub(c.lastRSSCheck) < RSSCheckInterval {
		c.mu.Unlock()
		return RSSOk
	}
	c.lastRSSCheck = now
	c.mu.Unlock()

	rss := c.readRSS()
	switch {
	case rss >= RSSLimitBytes:
		log.Printf("circuit: rss %d MiB over hard limit, shutting down", rss>>20)
		return RSSExceeded
	case rss >= RSSWarnBytes:
		log.Printf("circuit: rss %d MiB over soft limit", rss>>20)
		return RSSWarn
	default:
		return RSSOk
	}
}

// RecordDBError counts a database failure and returns what the caller
// should do: retry on the first consecutive failure, exit on the second.
func (c *Circuit) RecordDBError() DBAction {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dbErrors++
	if c.dbErrors >= 2 {
		return DBExit
	}
	return DBRetry
}

// RecordDBSuccess resets the consecutive-error counter.
func (c *Circuit) RecordDBSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dbErrors = 0
}

// CurrentRSS returns the process's resident set size in bytes. On Linux it
// reads /proc/self/statm; elsewhere it falls back to the Go runtime's view
// of memory obtained from the OS, which overstates RSS but is the right
// shape for a kill-switch threshold.
func CurrentRSS() uint64 {
	if rss, ok := statmRSS(); ok {
		return rss
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.Sys
}

func statmRSS() (uint64, bool) {
	f, err := os.Open("/proc/self/statm")
	if err != nil {
		return 0, false
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return 0, false
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, false
	}
	pages, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return pages * uint64(os.Getpagesize()), true
}
