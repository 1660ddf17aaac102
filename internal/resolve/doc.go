// SPDX-License-Identifier: MPL-2.0

// Package resolve turns CLI-shaped deploy arguments into a concrete target
// configuration path. One argument names an environment and expects a local
// deploy.toml; two arguments name a target inside the active organization,
// preferring the per-target directory config over the flat file. It also
// decides which execution path a config belongs to (pipeline engine versus
// legacy push).
package resolve
