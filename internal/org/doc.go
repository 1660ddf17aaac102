// SPDX-License-Identifier: MPL-2.0

// Package org implements the organization registry: per-organization TOML
// files mapping environments to connection identities (host, auth user,
// work user), plus the organization's target directory used by the resolver.
// Delegated-mode context loading consults exactly this contract and nothing
// more.
package org
