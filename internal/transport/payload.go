// SPDX-License-Identifier: MPL-2.0

package transport

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// BuildPayload serializes the bound registry entries into re-executable
// shell text. It is a pure read: calling it repeatedly over the same
// registry yields the same payload.
//
// Emission order is scalars, arrays, then function definitions — functions
// may reference the other two, so their dependencies must already be
// materialized when the definitions run. Unbound entries and entries whose
// name is not a valid shell identifier are skipped.
func BuildPayload(r *Registry) (string, error) {
	var b strings.Builder

	for _, s := range r.scalars {
		if !s.bound || !syntax.ValidName(s.name) {
			continue
		}
		quoted, err := syntax.Quote(s.value, syntax.LangBash)
		if err != nil {
			return "", fmt.Errorf("quote scalar %s: %w", s.name, err)
		}
		fmt.Fprintf(&b, "%s=%s\n", s.name, quoted)
	}

	for _, a := range r.arrays {
		if !a.bound || !syntax.ValidName(a.name) {
			continue
		}
		b.WriteString(a.name)
		b.WriteString("=(")
		for i, elem := range a.elems {
			if i > 0 {
				b.WriteByte(' ')
			}
			quoted, err := syntax.Quote(elem, syntax.LangBash)
			if err != nil {
				return "", fmt.Errorf("quote element %d of array %s: %w", i, a.name, err)
			}
			b.WriteString(quoted)
		}
		b.WriteString(")\n")
	}

	for _, f := range r.funcs {
		if !f.bound {
			continue
		}
		b.WriteString(strings.TrimRight(f.def, "\n"))
		b.WriteByte('\n')
	}

	return b.String(), nil
}
