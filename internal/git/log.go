package git

import (
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// LogStat is the rolling per-path state accumulated while walking `git log`
// output: the most recent commit timestamp seen for the path and how many
// commits touched it within the window.
type LogStat struct {
	LastCommitMs int64
	Frequency    int
}

// ParseLog runs `git log --name-only --format=%at -z --since=<window> -n
// <cap>` in projectPath and returns a path -> LogStat map
// `git log` walks newest-first, so the first timestamp seen for a path is
// its most recent commit; every later appearance only increments frequency.
// Best-effort: any failure returns an empty map and nil error.
func ParseLog(projectPath, since string, cap int) (map[string]*LogStat, error) {
	cmd := exec.Command("git", "log",
		"--name-only",
		"--format=%at",
		"-z",
		fmt.Sprintf("--since=%s", since),
		"-n", strconv.Itoa(cap),
	)
	cmd.Dir = projectPath
	output, err := cmd.Output()
	if err != nil {
		return map[string]*LogStat{}, nil
	}

	entries := strings.Split(strings.TrimRight(string(output), "\x00"), "\x00")
	stats := map[string]*LogStat{}

	var currentTs int64
	for _, entry := range entries {
		if entry == "" {
			continue
		}
		if ts, err := strconv.ParseInt(entry, 10, 64); err == nil && len(entry) == 10 {
			currentTs = ts * 1000
			continue
		}

		// git separates a commit's timestamp from its first file name with
		// a newline as well as the NUL.
		path := strings.TrimLeft(entry, "\n")
		if path == "" {
			continue
		}
		if s, ok := stats[path]; ok {
			s.Frequency++
			continue
		}
		stats[path] = &LogStat{LastCommitMs: currentTs, Frequency: 1}
	}

	return stats, nil
}

// RecencyScore is an exponential decay over last-commit age:
// exp(-days_since_last_commit / 14).
func RecencyScore(lastCommitMs int64, now time.Time) float64 {
	days := now.Sub(time.UnixMilli(lastCommitMs)).Hours() / 24
	if days < 0 {
		days = 0
	}
	return math.Exp(-days / 14)
}
