package storage

import "strings"

// stripChars are removed from every token before it is quoted and sent to
// FTS5: the core must never forward raw user text to the FTS engine.
const stripChars = `"()*:+-`

// EscapeFTSQuery tokenizes a raw user string on path separators and ASCII
// whitespace, strips the characters in stripChars from each token, discards
// tokens that become empty, quotes every surviving token, and appends a
// trailing '*' to the last token for prefix matching. An input with no
// surviving tokens returns "".
func EscapeFTSQuery(raw string) string {
	tokens := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '/' || r == '\\' || isASCIISpace(r)
	})

	var cleaned []string
	for _, tok := range tokens {
		tok = stripAny(tok, stripChars)
		if tok == "" {
			continue
		}
		cleaned = append(cleaned, tok)
	}

	if len(cleaned) == 0 {
		return ""
	}

	last := len(cleaned) - 1
	var b strings.Builder
	for i, tok := range cleaned {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte('"')
		b.WriteString(tok)
		b.WriteByte('"')
		if i == last {
			b.WriteByte('*')
		}
	}
	return b.String()
}

func isASCIISpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

func stripAny(s, chars string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(chars, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
