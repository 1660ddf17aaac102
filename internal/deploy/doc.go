// SPDX-License-Identifier: MPL-2.0

// Package deploy holds the deployment context and its loader.
//
// A Context is the resolved view of one (target, environment) pair:
// identity, connection info, and the ordered pre/main/post command lists.
// A Store owns at most one live Context; loading always clears the previous
// one first, and a failed load leaves the store cleared rather than
// half-populated. Connection info comes either from the target's own
// configuration (standalone mode) or from the active organization registry
// (delegated mode); the choice is a static predicate over the configuration,
// decided before any registry lookup.
package deploy
