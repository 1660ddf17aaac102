// SPDX-License-Identifier: MPL-2.0

package tmpl

import "strings"

// Bindings maps placeholder names to replacement values.
type Bindings map[string]string

// Substitute replaces every {name} placeholder in template with the bound
// value. Placeholders with no binding are left verbatim. Substitution is a
// single left-to-right pass: replacement values are never re-scanned, so a
// value that itself contains placeholder-shaped text is inserted literally.
func Substitute(template string, b Bindings) string {
	// Fast path: nothing that could open a placeholder.
	if !strings.ContainsRune(template, '{') {
		return template
	}

	var out strings.Builder
	out.Grow(len(template))

	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			out.WriteString(rest)
			return out.String()
		}
		out.WriteString(rest[:open])
		rest = rest[open:]

		close := strings.IndexByte(rest, '}')
		if close < 0 {
			// Unterminated brace, emit the tail as-is.
			out.WriteString(rest)
			return out.String()
		}

		name := rest[1:close]
		if val, ok := b[name]; ok && validName(name) {
			out.WriteString(val)
		} else {
			out.WriteString(rest[:close+1])
		}
		rest = rest[close+1:]
	}
}

// validName reports whether name is a plausible placeholder identifier:
// non-empty, ASCII letters, digits and underscores only. Anything else is
// treated as literal text rather than a placeholder.
func validName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_':
		default:
			return false
		}
	}
	return true
}
