// SPDX-License-Identifier: MPL-2.0

// Package config loads shipctl's own configuration: the active organization,
// SSH client settings, and UI preferences. Target deployment configs are a
// separate concern (see internal/targetcfg).
package config
