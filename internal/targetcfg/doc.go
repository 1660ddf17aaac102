// SPDX-License-Identifier: MPL-2.0

// Package targetcfg reads a target's deployment configuration (TOML) and
// exposes the narrow contract the deploy core consumes: string and
// string-array lookups by dotted section, the environment-endpoint
// predicate that drives connection-mode detection, and the pipeline-format
// probe. Anything richer than that contract belongs to the callers.
package targetcfg
