// SPDX-License-Identifier: MPL-2.0

// Package transport reconstructs local state inside a fresh remote shell.
//
// A Registry collects typed entries — scalars, arrays, and function
// definitions — each tagged bound or declared-only at registration time.
// BuildPayload serializes the bound entries into a single shell text that,
// executed at the top of a remote session, recreates the same names with
// the same values. Emission order is fixed (scalars, then arrays, then
// functions) because functions may reference the other two.
package transport
