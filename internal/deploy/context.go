// SPDX-License-Identifier: MPL-2.0

package deploy

import "shipctl/internal/tmpl"

// Mode says where a context's connection info came from.
type Mode int

const (
	// ModeStandalone means connection info lives in the target's own
	// configuration.
	ModeStandalone Mode = iota + 1
	// ModeDelegated means connection info was fetched from the active
	// organization registry.
	ModeDelegated
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeStandalone:
		return "standalone"
	case ModeDelegated:
		return "delegated"
	default:
		return "unknown"
	}
}

// Context is the resolved deployment context for one (target, environment)
// pair. It is a plain value: construct, use, discard. Nothing in it is
// shared process-wide.
type Context struct {
	// ConfigPath is the target configuration file the context was loaded
	// from; ConfigDir is its containing directory (the {local} template
	// token).
	ConfigPath string
	ConfigDir  string

	// Environment is the environment the context was loaded for.
	Environment string

	// Mode records standalone versus delegated connection resolution.
	Mode Mode

	// Identity, target-scoped and allowed to be empty.
	Name      string
	RemoteDir string
	Domain    string

	// Connection.
	SSHEndpoint string // user@host
	Host        string
	AuthUser    string // identity used to authenticate
	WorkUser    string // identity commands effectively run as

	// Ordered command lists; order is execution order.
	Pre  []string
	Main []string
	Post []string
}

// Bindings returns the template bindings for this context. Both user and
// work_user bind the work user; auth_user binds the authenticating identity.
func (c *Context) Bindings() tmpl.Bindings {
	return tmpl.Bindings{
		"ssh":       c.SSHEndpoint,
		"host":      c.Host,
		"auth_user": c.AuthUser,
		"work_user": c.WorkUser,
		"user":      c.WorkUser,
		"name":      c.Name,
		"cwd":       c.RemoteDir,
		"domain":    c.Domain,
		"env":       c.Environment,
		"local":     c.ConfigDir,
	}
}
