// SPDX-License-Identifier: MPL-2.0

package tmpl

import "testing"

// TestSubstitute_BasicReplacement verifies that bound placeholders are
// replaced and surrounding text is preserved.
func TestSubstitute_BasicReplacement(t *testing.T) {
	t.Parallel()

	b := Bindings{
		"ssh":  "deploy@prod1",
		"cwd":  "/srv/api",
		"env":  "prod",
		"name": "api",
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"single", "ssh {ssh}", "ssh deploy@prod1"},
		{"multiple", "cd {cwd} && echo {name}:{env}", "cd /srv/api && echo api:prod"},
		{"no placeholders", "echo hello", "echo hello"},
		{"adjacent", "{name}{env}", "apiprod"},
		{"empty template", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Substitute(tt.template, b); got != tt.want {
				t.Errorf("Substitute(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

// TestSubstitute_UnknownPlaceholdersPassThrough verifies that placeholders
// without a binding are left verbatim rather than erroring or vanishing.
func TestSubstitute_UnknownPlaceholdersPassThrough(t *testing.T) {
	t.Parallel()

	b := Bindings{"env": "prod"}

	got := Substitute("echo {env} ${HOME} {unknown} {a b}", b)
	want := "echo prod ${HOME} {unknown} {a b}"
	if got != want {
		t.Errorf("Substitute() = %q, want %q", got, want)
	}
}

// TestSubstitute_UnterminatedBrace verifies that a dangling open brace is
// emitted literally.
func TestSubstitute_UnterminatedBrace(t *testing.T) {
	t.Parallel()

	b := Bindings{"env": "prod"}

	got := Substitute("echo {env} {oops", b)
	want := "echo prod {oops"
	if got != want {
		t.Errorf("Substitute() = %q, want %q", got, want)
	}
}

// TestSubstitute_NoRecursiveExpansion verifies that a substituted value
// containing placeholder-shaped text is not expanded again. This blocks
// injection through configuration-supplied values.
func TestSubstitute_NoRecursiveExpansion(t *testing.T) {
	t.Parallel()

	b := Bindings{
		"domain": "{host}.example.com",
		"host":   "evil",
	}

	got := Substitute("curl https://{domain}/", b)
	want := "curl https://{host}.example.com/"
	if got != want {
		t.Errorf("Substitute() = %q, want %q", got, want)
	}
}
