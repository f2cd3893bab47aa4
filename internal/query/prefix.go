// Package query implements the prefix parser and ranked search pipeline
// that sits between the daemon protocol and storage.
package query

import (
	"strings"

	"github.com/galligan/pickme/internal/config"
)

// Kind discriminates the parsed prefix.
type Kind int

const (
	KindNone Kind = iota
	KindNamespace
	KindFolder
	KindGlob
)

// Prefix is a tagged union: Name is populated for
// Namespace/Folder, Pattern for Glob.
type Prefix struct {
	Kind    Kind
	Name    string
	Pattern string
}

// ParseQuery tokenizes a raw query string into a (prefix, search text)
// pair. Eight rules are tried in priority order, first match wins.
// namespaces is the config's namespace table, consulted by rules 4 and 5.
func ParseQuery(raw string, namespaces map[string]config.Namespace) (Prefix, string) {
	// Rule 1: @@... -> literal search with one leading @ restored.
	if strings.HasPrefix(raw, "@@") {
		return Prefix{Kind: KindNone}, "@" + raw[2:]
	}

	// Rule 2: quoted search text, optionally after a namespace or folder
	// prefix colon.
	if kind, name, rest, ok := splitColonPrefix(raw); ok {
		if _, inner, ok := stripQuotes(rest); ok {
			if kind == "folder" {
				return Prefix{Kind: KindFolder, Name: name}, inner
			}
			return Prefix{Kind: KindNamespace, Name: name}, inner
		}
	} else if inner, ok := stripBarePrefixQuotes(raw); ok {
		return Prefix{Kind: KindNone}, inner
	}

	// Rule 3: @/NAME:REST, NAME non-empty and slash-free.
	if strings.HasPrefix(raw, "@/") {
		after := raw[2:]
		if idx := strings.IndexByte(after, ':'); idx > 0 {
			name := after[:idx]
			if !strings.Contains(name, "/") {
				return Prefix{Kind: KindFolder, Name: name}, after[idx+1:]
			}
		}
	}

	// Rule 4: NAME:REST, no leading @, NAME a known namespace.
	if !strings.HasPrefix(raw, "@") {
		if idx := strings.IndexByte(raw, ':'); idx > 0 {
			name := raw[:idx]
			if _, known := namespaces[name]; known {
				return Prefix{Kind: KindNamespace, Name: name}, raw[idx+1:]
			}
		}
	}

	// Rule 5: @NAME:REST, NAME non-empty, not "/"-prefixed, known namespace.
	if strings.HasPrefix(raw, "@") && !strings.HasPrefix(raw, "@/") {
		after := raw[1:]
		if idx := strings.IndexByte(after, ':'); idx > 0 {
			name := after[:idx]
			if _, known := namespaces[name]; known {
				return Prefix{Kind: KindNamespace, Name: name}, after[idx+1:]
			}
		}
	}

	// Rule 6: @*.EXT... -> Glob{"*.EXT..."}, search always empty.
	if strings.HasPrefix(raw, "@*.") {
		pattern := raw[1:]
		if len(pattern) > 2 {
			return Prefix{Kind: KindGlob, Pattern: pattern}, ""
		}
	}

	// Rule 7: @FOLDER/REST shorthand.
	if strings.HasPrefix(raw, "@") {
		after := raw[1:]
		if idx := strings.IndexByte(after, '/'); idx > 0 {
			return Prefix{Kind: KindFolder, Name: after[:idx]}, after[idx+1:]
		}
	}

	// Rule 8: no recognized prefix.
	return Prefix{Kind: KindNone}, raw
}

// FormatPrefix is ParseQuery's inverse: ParseQuery(FormatPrefix(p, q)) ==
// (p, q) for any query q that does not itself begin with a prefix trigger.
func FormatPrefix(p Prefix, searchText string) string {
	switch p.Kind {
	case KindNamespace:
		return "@" + p.Name + ":" + searchText
	case KindFolder:
		return "@" + p.Name + "/" + searchText
	case KindGlob:
		return "@" + p.Pattern
	default:
		return searchText
	}
}

func splitColonPrefix(raw string) (kind, name, rest string, ok bool) {
	if strings.HasPrefix(raw, "@/") {
		after := raw[2:]
		if idx := strings.IndexByte(after, ':'); idx > 0 {
			n := after[:idx]
			if !strings.Contains(n, "/") {
				return "folder", n, after[idx+1:], true
			}
		}
		return "", "", "", false
	}
	if strings.HasPrefix(raw, "@") {
		after := raw[1:]
		if idx := strings.IndexByte(after, ':'); idx > 0 {
			n := after[:idx]
			if n != "" && !strings.HasPrefix(n, "/") {
				return "namespace", n, after[idx+1:], true
			}
		}
	}
	return "", "", "", false
}

func stripBarePrefixQuotes(raw string) (string, bool) {
	if !strings.HasPrefix(raw, `@"`) && !strings.HasPrefix(raw, "@'") {
		return "", false
	}
	if _, inner, ok := stripQuotes(raw[1:]); ok {
		return inner, true
	}
	return "", false
}

func stripQuotes(s string) (quote byte, inner string, ok bool) {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[0], s[1 : len(s)-1], true
	}
	return 0, "", false
}
