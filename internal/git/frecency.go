package git

import (
	"os/exec"
	"path/filepath"
	"time"

	"github.com/galligan/pickme/internal/storage"
)

// DefaultSince and DefaultLogCap bound the `git log` window the frecency
// builder scans.
const (
	DefaultSince  = "90 days ago"
	DefaultLogCap = 5000
)

// IsRepo reports whether dir is inside a git work tree. Best-effort: any
// exec failure (git missing, not a repo) returns false.
func IsRepo(dir string) bool {
	cmd := exec.Command("git", "-C", dir, "rev-parse", "--is-inside-work-tree")
	output, err := cmd.Output()
	if err != nil {
		return false
	}
	return string(output) == "true\n" || string(output) == "true"
}

// BuildFrecency combines git log and git status into the set of frecency
// records for root: a record is produced for every path seen in either the
// log map or the status map, stamped with last_seen_ms = now. Git reports
// repo-relative paths; records carry the canonical absolute form the file
// table keys on. Callers pass the result to storage.UpsertFrecency;
// pre-existing records for paths absent from this run are left untouched by
// that function's ON CONFLICT semantics.
func BuildFrecency(root string, now time.Time) ([]storage.FrecencyRecord, error) {
	if !IsRepo(root) {
		return nil, nil
	}

	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	logStats, err := ParseLog(root, DefaultSince, DefaultLogCap)
	if err != nil {
		return nil, err
	}
	statusBoosts, err := ParseStatus(root)
	if err != nil {
		return nil, err
	}

	nowMs := now.UnixMilli()
	seen := map[string]*storage.FrecencyRecord{}

	for path, stat := range logStats {
		abs := filepath.Join(root, path)
		seen[abs] = &storage.FrecencyRecord{
			Path:         abs,
			GitRecency:   RecencyScore(stat.LastCommitMs, now),
			GitFrequency: stat.Frequency,
			LastSeenMs:   nowMs,
		}
	}

	for path, boost := range statusBoosts {
		abs := filepath.Join(root, path)
		if r, ok := seen[abs]; ok {
			r.GitStatusBoost = boost
			continue
		}
		seen[abs] = &storage.FrecencyRecord{
			Path:           abs,
			GitStatusBoost: boost,
			LastSeenMs:     nowMs,
		}
	}

	records := make([]storage.FrecencyRecord, 0, len(seen))
	for _, r := range seen {
		records = append(records, *r)
	}
	return records, nil
}
