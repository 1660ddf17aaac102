// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling for shipctl.
//
// Errors built here carry the failed operation, the resource involved
// (config path, target, environment) and remediation suggestions, so the CLI
// can render a useful diagnostic instead of a bare message. Well-known
// failure kinds additionally have Markdown guidance rendered with glamour.
package issue
