// SPDX-License-Identifier: MPL-2.0

// Package pipeline runs the richer target-configuration format: named
// stages with their own command lists, executed in declared order through
// the remote executor. Flat configs skip this entirely and go through the
// legacy push path.
package pipeline
