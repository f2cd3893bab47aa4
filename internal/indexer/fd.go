package indexer

import (
	"os/exec"
	"strconv"
	"strings"
)

// fdBinary is the external fast file finder preferred when
// present. Resolved once per process.
var fdBinary = resolveFdBinary()

func resolveFdBinary() string {
	for _, name := range []string{"fd", "fdfind"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// HasExternalFinder reports whether an `fd`-style binary is available on
// PATH. Indexer.Discover consults this to choose the discovery strategy.
func HasExternalFinder() bool {
	return fdBinary != ""
}

// fdDiscover shells out to `fd` to enumerate files under root, passing
// through excludes as fd's native --exclude flag rather than re-deriving
// the simplified walker semantics. Disabled paths are absolute, while fd
// matches its exclude globs against root-relative paths, so they are
// filtered out of fd's absolute-path output instead.
func fdDiscover(root string, opts Options) ([]string, error) {
	args := []string{
		"--type", "f",
		"--absolute-path",
		"--max-depth", strconv.Itoa(opts.MaxDepth),
	}
	if opts.IncludeHidden {
		args = append(args, "--hidden")
	}
	if opts.IncludeGitignored {
		// fd respects ignore files by default; only opt out.
		args = append(args, "--no-ignore")
	}
	for _, pattern := range opts.Exclude {
		args = append(args, "--exclude", pattern)
	}
	args = append(args, ".")

	cmd := exec.Command(fdBinary, args...)
	cmd.Dir = root
	output, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.TrimRight(string(output), "\n"), "\n")
	var out []string
	for _, l := range lines {
		if l == "" {
			continue
		}
		if isDisabled(l, opts.Disabled) {
			continue
		}
		out = append(out, l)
		if opts.MaxFiles > 0 && len(out) >= opts.MaxFiles {
			break
		}
	}
	return out, nil
}

// fdRecent shells out to `fd`'s --changed-within flag for the
// recent-files query.
func fdRecent(root, window string, maxResults int, exclude []string) ([]string, error) {
	args := []string{
		"--type", "f",
		"--absolute-path",
		"--changed-within", window,
	}
	for _, pattern := range exclude {
		args = append(args, "--exclude", pattern)
	}
	args = append(args, ".")

	cmd := exec.Command(fdBinary, args...)
	cmd.Dir = root
	output, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.TrimRight(string(output), "\n"), "\n")
	var out []string
	for _, l := range lines {
		if l == "" {
			continue
		}
		out = append(out, l)
		if maxResults > 0 && len(out) >= maxResults {
			break
		}
	}
	return out, nil
}
