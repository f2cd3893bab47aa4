package indexer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// walkDiscover is the fallback discovery path used when no external file
// finder is available: a recursive filepath.WalkDir confined to
// opts.MaxDepth (direct entries of the root are depth 1; a depth of 0
// discovers nothing), honoring hidden-file and exclude-pattern options.
// Returned paths are absolute, not yet symlink-resolved.
func walkDiscover(root string, opts Options) ([]string, error) {
	if opts.MaxDepth <= 0 {
		return nil, nil
	}

	excludes, err := compileExcludes(opts.Exclude)
	if err != nil {
		return nil, err
	}

	var ignores []glob.Glob
	if !opts.IncludeGitignored {
		ignores = loadGitignore(root)
	}

	var out []string
	rootDepth := strings.Count(filepath.Clean(root), string(filepath.Separator))

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == root {
			return nil
		}

		if isDisabled(path, opts.Disabled) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		if !opts.IncludeHidden && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Direct entries of the root are depth 1.
		depth := strings.Count(filepath.Clean(path), string(filepath.Separator)) - rootDepth
		if depth > opts.MaxDepth {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if matchesGitignore(root, path, name, ignores) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if matchesAnyExclude(name, excludes) {
			return nil
		}

		out = append(out, path)
		if opts.MaxFiles > 0 && len(out) >= opts.MaxFiles {
			return errMaxFilesReached
		}
		return nil
	})
	if err == errMaxFilesReached {
		err = nil
	}
	return out, err
}

var errMaxFilesReached = walkSentinel("max files reached")

type walkSentinel string

func (s walkSentinel) Error() string { return string(s) }

// compileExcludes compiles the exclude patterns for the fallback
// walker semantics: exact name match, "*.ext" suffix match, or
// "prefix*" prefix match. gobwas/glob's basename-anchored compilation
// (no '/' separator) reduces to exactly those three shapes when the
// pattern carries zero or one '*'.
func compileExcludes(patterns []string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, g)
	}
	return compiled, nil
}

func matchesAnyExclude(name string, excludes []glob.Glob) bool {
	for _, g := range excludes {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// loadGitignore reads the root-level .gitignore into glob patterns. Like
// the exclude handling above, the walker applies simplified semantics:
// only the root's ignore file is consulted, and negations are not
// supported. The external finder path delegates to fd's full gitignore
// engine instead.
func loadGitignore(root string) []glob.Glob {
	data, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}

	var globs []glob.Glob
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		line = strings.TrimPrefix(strings.TrimSuffix(line, "/"), "/")
		if g, err := glob.Compile(line); err == nil {
			globs = append(globs, g)
		}
	}
	return globs
}

// matchesGitignore checks an entry's basename and root-relative path
// against the loaded ignore patterns.
func matchesGitignore(root, path, name string, ignores []glob.Glob) bool {
	if len(ignores) == 0 {
		return false
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = name
	}
	rel = filepath.ToSlash(rel)

	for _, g := range ignores {
		if g.Match(name) || g.Match(rel) {
			return true
		}
	}
	return false
}

// isDisabled reports whether path is, or is contained in, any of the
// disabled absolute paths.
func isDisabled(path string, disabled []string) bool {
	for _, d := range disabled {
		if path == d || strings.HasPrefix(path, d+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
