// Package indexer discovers files under configured roots, resolves
// symlinks against the root set, and batches metadata through storage.
package indexer

import "time"

// Options controls one call to IndexDirectory.
type Options struct {
	MaxDepth          int
	IncludeHidden     bool
	IncludeGitignored bool
	Exclude           []string
	Disabled          []string
	MaxFiles          int
	Incremental       bool
	LastIndexedMs     int64
}

// DefaultOptions returns the built-in traversal defaults.
func DefaultOptions() Options {
	return Options{
		MaxDepth:          10,
		IncludeHidden:     false,
		IncludeGitignored: false,
	}
}

// Stats summarizes one IndexDirectory or Refresh call. Duration covers
// the whole per-root pass (discovery, upserts, prune) and is populated by
// Refresh.
type Stats struct {
	FilesIndexed int
	FilesSkipped int
	Duration     time.Duration
	Errors       []error
}

// RefreshResult is the per-root outcome of a full Refresh pass.
type RefreshResult struct {
	Root     string
	Stats    Stats
	ErrMsg   string
}
