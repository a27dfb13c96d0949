// Package settings keeps derived per-profile configuration in sync
// with store contents.
//
// Configuration lives in a single multi-profile options tree. Writes
// against it are declarative targets addressing a path such as
//
//	profiles[0].options.general.mainDictionary
//	profiles[0].options.dictionaries["Dictionary Title"]
//
// Dictionary titles are arbitrary strings and are always addressed
// with the bracket-quoted form.
package settings

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of a parsed write-target path: either a map key
// or a slice index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// ProfilePath builds a path rooted at the i-th profile.
func ProfilePath(i int, parts ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "profiles[%d]", i)
	for _, p := range parts {
		b.WriteByte('.')
		b.WriteString(p)
	}
	return b.String()
}

// KeyedPath appends a bracket-quoted map key to a path.
func KeyedPath(base, key string) string {
	return base + `["` + escapeKey(key) + `"]`
}

func escapeKey(key string) string {
	key = strings.ReplaceAll(key, `\`, `\\`)
	return strings.ReplaceAll(key, `"`, `\"`)
}

// ParsePath parses the stable string form of a write-target path into
// segments. The grammar is dotted identifiers, [N] numeric indices
// and ["..."] quoted keys with \" and \\ escapes.
func ParsePath(path string) ([]Segment, error) {
	if path == "" {
		return nil, fmt.Errorf("empty path")
	}

	var segments []Segment
	i := 0
	expectIdent := true

	for i < len(path) {
		switch {
		case path[i] == '.':
			if expectIdent {
				return nil, fmt.Errorf("unexpected '.' at position %d in %q", i, path)
			}
			i++
			expectIdent = true

		case path[i] == '[':
			if expectIdent && len(segments) == 0 {
				return nil, fmt.Errorf("path %q must start with an identifier", path)
			}
			seg, next, err := parseBracket(path, i)
			if err != nil {
				return nil, err
			}
			segments = append(segments, seg)
			i = next
			expectIdent = false

		default:
			if !expectIdent {
				return nil, fmt.Errorf("unexpected character %q at position %d in %q", path[i], i, path)
			}
			start := i
			for i < len(path) && isIdentChar(path[i]) {
				i++
			}
			if i == start {
				return nil, fmt.Errorf("invalid identifier at position %d in %q", i, path)
			}
			segments = append(segments, Segment{Key: path[start:i]})
			expectIdent = false
		}
	}

	if expectIdent {
		return nil, fmt.Errorf("path %q ends with a trailing '.'", path)
	}
	return segments, nil
}

func parseBracket(path string, start int) (Segment, int, error) {
	i := start + 1 // past '['
	if i >= len(path) {
		return Segment{}, 0, fmt.Errorf("unterminated '[' in %q", path)
	}

	if path[i] == '"' {
		var b strings.Builder
		i++
		for i < len(path) && path[i] != '"' {
			if path[i] == '\\' {
				i++
				if i >= len(path) {
					return Segment{}, 0, fmt.Errorf("unterminated escape in %q", path)
				}
			}
			b.WriteByte(path[i])
			i++
		}
		if i >= len(path) {
			return Segment{}, 0, fmt.Errorf("unterminated quoted key in %q", path)
		}
		i++ // past closing '"'
		if i >= len(path) || path[i] != ']' {
			return Segment{}, 0, fmt.Errorf("expected ']' at position %d in %q", i, path)
		}
		return Segment{Key: b.String()}, i + 1, nil
	}

	end := strings.IndexByte(path[i:], ']')
	if end < 0 {
		return Segment{}, 0, fmt.Errorf("unterminated '[' in %q", path)
	}
	index, err := strconv.Atoi(path[i : i+end])
	if err != nil || index < 0 {
		return Segment{}, 0, fmt.Errorf("invalid index %q in %q", path[i:i+end], path)
	}
	return Segment{Index: index, IsIndex: true}, i + end + 1, nil
}

func isIdentChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
