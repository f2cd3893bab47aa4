package git

import (
	"os/exec"
	"strings"
)

// StatusBoost maps a path to the status boost derived from `git status
// --porcelain -z`
type StatusBoost map[string]float64

// ParseStatus runs `git status --porcelain -z` in projectPath and returns a
// map of path to status boost. Rename/copy entries (leading 'R' or 'C')
// consume the following NUL-delimited entry as the destination filename and
// boost that path instead of the source. Any '?' in the two-character
// status code yields a boost of 3.0 (untracked); every other status code
// yields 5.0. Best-effort: any failure (git missing, not a repo) returns an
// empty map and nil error.
func ParseStatus(projectPath string) (StatusBoost, error) {
	cmd := exec.Command("git", "status", "--porcelain", "-z")
	cmd.Dir = projectPath
	output, err := cmd.Output()
	if err != nil {
		return StatusBoost{}, nil
	}

	entries := strings.Split(strings.TrimRight(string(output), "\x00"), "\x00")
	boosts := StatusBoost{}

	for i := 0; i < len(entries); i++ {
		entry := entries[i]
		if len(entry) < 3 {
			continue
		}
		code := entry[:2]
		path := entry[3:]

		boost := 5.0
		if strings.ContainsRune(code, '?') {
			boost = 3.0
		}

		if code[0] == 'R' || code[0] == 'C' {
			// Renames/copies are recorded as "old -> new" in porcelain v1
			// text mode, but -z emits them as two consecutive NUL-delimited
			// entries: the status+old path, then the destination path alone.
			if i+1 < len(entries) {
				i++
				boosts[entries[i]] = boost
				continue
			}
		}
		boosts[path] = boost
	}

	return boosts, nil
}
