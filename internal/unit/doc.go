// SPDX-License-Identifier: MPL-2.0

// Package unit renders systemd service units from a resolved deployment
// context. Fields may use the same {name}-style placeholders as deploy
// commands; they are substituted once, never recursively.
package unit
