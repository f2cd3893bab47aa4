package indexer

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// DefaultMaxResults bounds the recent-files query when the caller does not
// override it.
const DefaultMaxResults = 100

// ParseWindow parses a duration string of the form "24h", "1d", "30m", or
// "2w" into a time.Duration. Go's time.ParseDuration already understands
// "h"/"m"/"s"; "d" (days) and "w" (weeks) are handled here.
func ParseWindow(window string) (time.Duration, error) {
	if window == "" {
		return 0, fmt.Errorf("empty duration window")
	}

	unit := window[len(window)-1]
	switch unit {
	case 'd', 'w':
		numPart := window[:len(window)-1]
		n, err := strconv.ParseFloat(numPart, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", window, err)
		}
		days := n
		if unit == 'w' {
			days *= 7
		}
		return time.Duration(days * 24 * float64(time.Hour)), nil
	default:
		d, err := time.ParseDuration(window)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", window, err)
		}
		return d, nil
	}
}

// RecentFiles answers "files changed within the last `window`" for root,
// using the external finder's --changed-within flag when available, else
// walking and mtime-filtering. Results are capped at maxResults (0 means
// DefaultMaxResults).
func RecentFiles(root, window string, maxResults int, exclude []string) ([]string, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	if HasExternalFinder() {
		return fdRecent(root, window, maxResults, exclude)
	}

	dur, err := ParseWindow(window)
	if err != nil {
		return nil, err
	}
	cutoff := time.Now().Add(-dur)

	excludes, err := compileExcludes(exclude)
	if err != nil {
		return nil, err
	}

	var out []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == root || d.IsDir() {
			return nil
		}
		if matchesAnyExclude(d.Name(), excludes) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			return nil
		}
		out = append(out, path)
		if len(out) >= maxResults {
			return errMaxFilesReached
		}
		return nil
	})
	if err == errMaxFilesReached {
		err = nil
	}
	return out, err
}
