// SPDX-License-Identifier: MPL-2.0

// Package tmpl implements placeholder substitution for deployment command
// strings. Placeholders are written as {name} and bind to fields of the
// active deployment context; unknown placeholders pass through untouched so
// command text may contain unrelated brace expressions.
package tmpl
