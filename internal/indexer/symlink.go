package indexer

import (
	"os"
	"path/filepath"
	"strings"
)

// resolveSymlinks canonicalizes each discovered path, drops broken
// symlinks silently, rejects any canonical path that escapes every
// indexed root, and deduplicates by canonical path.
func resolveSymlinks(paths []string, roots []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))

	for _, p := range paths {
		canonical, err := filepath.EvalSymlinks(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			continue
		}

		if !underAnyRoot(canonical, roots) {
			continue
		}

		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		out = append(out, canonical)
	}

	return out
}

func underAnyRoot(path string, roots []string) bool {
	for _, root := range roots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
