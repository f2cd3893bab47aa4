package query

import (
	"fmt"
	"os"
	"strings"

	"github.com/gobwas/glob"

	"github.com/galligan/pickme/internal/config"
)

// ResolvedFilter is what a parsed Prefix turns into once it has been
// checked against the project root and the config's namespace table:
// either a set of absolute path prefixes the FTS query is confined to, or
// a set of glob patterns applied to candidates after the FTS query runs.
type ResolvedFilter struct {
	PathPrefixes []string
	Patterns     []glob.Glob
}

// ResolvePrefix turns a parsed Prefix into its search constraints.
func ResolvePrefix(p Prefix, projectRoot string, namespaces map[string]config.Namespace) (ResolvedFilter, error) {
	switch p.Kind {
	case KindFolder:
		return resolveFolder(p.Name)
	case KindNamespace:
		return resolveNamespace(p.Name, namespaces)
	case KindGlob:
		g, err := compilePattern("**/" + p.Pattern)
		if err != nil {
			return ResolvedFilter{}, err
		}
		return ResolvedFilter{Patterns: []glob.Glob{g}}, nil
	default:
		if projectRoot != "" {
			return ResolvedFilter{PathPrefixes: []string{projectRoot}}, nil
		}
		return ResolvedFilter{}, nil
	}
}

// resolveFolder turns Folder{name} into the glob patterns **/name/* and
// **/.name/* (just **/name/* if name already starts with '.'). Compiled
// without a separator, the trailing '*' spans '/', so each pattern matches
// files directly in the folder and at any depth below it.
func resolveFolder(name string) (ResolvedFilter, error) {
	var raw []string
	if strings.HasPrefix(name, ".") {
		raw = []string{fmt.Sprintf("**/%s/*", name)}
	} else {
		raw = []string{
			fmt.Sprintf("**/%s/*", name),
			fmt.Sprintf("**/.%s/*", name),
		}
	}

	patterns := make([]glob.Glob, 0, len(raw))
	for _, r := range raw {
		g, err := compilePattern(r)
		if err != nil {
			return ResolvedFilter{}, err
		}
		patterns = append(patterns, g)
	}
	return ResolvedFilter{Patterns: patterns}, nil
}

// resolveNamespace implements "Namespace{name} with a string path value ->
// substitute search roots with the expanded absolute path (home-tilde
// expanded)" and "... with a pattern list -> patterns used as-is".
// Unknown namespaces (the parser's quoted-text rule classifies
// `@name:"..."` as KindNamespace without consulting the table) resolve to
// no filter at all.
func resolveNamespace(name string, namespaces map[string]config.Namespace) (ResolvedFilter, error) {
	ns, ok := namespaces[name]
	if !ok {
		return ResolvedFilter{}, nil
	}

	if ns.IsPath() {
		return ResolvedFilter{PathPrefixes: []string{expandHome(ns.Path)}}, nil
	}

	patterns := make([]glob.Glob, 0, len(ns.Patterns))
	for _, raw := range ns.Patterns {
		g, err := compilePattern(raw)
		if err != nil {
			return ResolvedFilter{}, err
		}
		patterns = append(patterns, g)
	}
	return ResolvedFilter{Patterns: patterns}, nil
}

// compilePattern compiles pattern without a path-separator argument, so
// '*' (and therefore '**') matches across '/' freely -- this is what lets
// the "**/foo/*" folder patterns match at any depth.
func compilePattern(pattern string) (glob.Glob, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	return g, nil
}

func expandHome(path string) string {
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return home + path[1:]
		}
	}
	return path
}
