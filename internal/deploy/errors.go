// SPDX-License-Identifier: MPL-2.0

package deploy

import "errors"

var (
	// ErrConfigNotFound is returned when the target configuration path does
	// not exist.
	ErrConfigNotFound = errors.New("target configuration not found")

	// ErrNoConnectionInfo is returned in standalone mode when no ssh
	// endpoint exists for the requested environment at any precedence level.
	ErrNoConnectionInfo = errors.New("no connection info for environment")

	// ErrNoActiveOrganization is returned in delegated mode when no
	// organization registry is available.
	ErrNoActiveOrganization = errors.New("no active organization")

	// ErrNoHostForEnvironment is returned in delegated mode when the
	// registry has no host entry for the requested environment.
	ErrNoHostForEnvironment = errors.New("organization has no host for environment")
)
