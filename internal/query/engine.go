package query

import (
	"database/sql"
	"strings"

	"github.com/gobwas/glob"

	"github.com/galligan/pickme/internal/config"
	"github.com/galligan/pickme/internal/storage"
)

// Request is one call to Search.
type Request struct {
	Query          string
	ProjectRoot    string
	AdditionalDirs []string
	Limit          int
	Namespaces     map[string]config.Namespace
	Weights        storage.Weights
}

// Search runs the full query pipeline: parse the prefix,
// special-case an empty-search-text glob into an extension listing,
// resolve the prefix into path-prefix or pattern filters, run the FTS
// query, and apply any pattern filters in memory before truncating to the
// requested limit. An empty query short-circuits to an empty result set
// without touching storage.
func Search(db *sql.DB, req Request) ([]Result, error) {
	if req.Query == "" {
		return nil, nil
	}

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	prefix, searchText := ParseQuery(req.Query, req.Namespaces)

	if prefix.Kind == KindGlob && searchText == "" {
		ext := extensionFromGlobPattern(prefix.Pattern)
		candidates, err := storage.SearchExtension(db, ext, req.ProjectRoot, req.Weights, limit)
		if err != nil {
			return nil, err
		}
		return toResults(candidates), nil
	}

	resolved, err := ResolvePrefix(prefix, req.ProjectRoot, req.Namespaces)
	if err != nil {
		return nil, err
	}

	pathPrefixes := resolved.PathPrefixes
	if prefix.Kind == KindNone && len(pathPrefixes) == 0 && req.ProjectRoot != "" {
		pathPrefixes = []string{req.ProjectRoot}
	}
	pathPrefixes = append(pathPrefixes, req.AdditionalDirs...)

	if searchText == "" {
		// Prefix-only query ("@/components:", "@docs:"): nothing for FTS
		// to match, so list by frecency score instead. Pattern filters
		// apply in memory, so scan well past the limit before truncating.
		scanLimit := limit
		if len(resolved.Patterns) > 0 {
			scanLimit = patternScanLimit
		}
		candidates, err := storage.ListCandidates(db, pathPrefixes, req.Weights, scanLimit)
		if err != nil {
			return nil, err
		}
		if len(resolved.Patterns) > 0 {
			candidates = filterByPatterns(candidates, resolved.Patterns)
		}
		if len(candidates) > limit {
			candidates = candidates[:limit]
		}
		return toResults(candidates), nil
	}

	escaped := storage.EscapeFTSQuery(searchText)
	ftsLimit := limit
	if len(resolved.Patterns) > 0 {
		ftsLimit = patternScanLimit
	}
	candidates, err := storage.SearchFTS(db, escaped, pathPrefixes, req.Weights, ftsLimit)
	if err != nil {
		return nil, err
	}

	if len(resolved.Patterns) > 0 {
		candidates = filterByPatterns(candidates, resolved.Patterns)
		if len(candidates) > limit {
			candidates = candidates[:limit]
		}
	}

	return toResults(candidates), nil
}

// patternScanLimit bounds how many candidates a query with pattern filters
// fetches before in-memory pattern filtering: a folder
// pattern can reject most of the scanned rows, so scanning only `limit`
// rows would starve the result set.
const patternScanLimit = 1000

// extensionFromGlobPattern derives the path-suffix extension for a glob
// pattern such as "*.md" by stripping its leading "*." and prefixing "."
// ("*.md" becomes ".md").
func extensionFromGlobPattern(pattern string) string {
	if strings.HasPrefix(pattern, "*") {
		return "." + strings.TrimPrefix(pattern, "*.")
	}
	return pattern
}

func filterByPatterns(candidates []storage.Candidate, patterns []glob.Glob) []storage.Candidate {
	out := candidates[:0:0]
	for _, c := range candidates {
		for _, g := range patterns {
			if g.Match(c.Path) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
