// SPDX-License-Identifier: MPL-2.0

package org

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"shipctl/internal/targetcfg"
)

// OrgFileName is the registry file inside an organization directory.
const OrgFileName = "org.toml"

// Org is a loaded organization registry.
type Org struct {
	// Name is the organization name (directory name under the orgs dir).
	Name string
	// Dir is the organization directory.
	Dir string

	cfg *targetcfg.Config
}

// Open loads the organization name from orgsDir.
func Open(orgsDir, name string) (*Org, error) {
	if name == "" {
		return nil, fmt.Errorf("organization name is empty")
	}
	dir := filepath.Join(orgsDir, name)
	cfg, err := targetcfg.Load(filepath.Join(dir, OrgFileName))
	if err != nil {
		return nil, fmt.Errorf("open organization %q: %w", name, err)
	}
	return &Org{Name: name, Dir: dir, cfg: cfg}, nil
}

// HostFor returns the deploy host registered for env.
func (o *Org) HostFor(env string) (string, bool) {
	return o.cfg.Get("envs."+env, "host")
}

// AuthUserFor returns the identity used to authenticate for env.
func (o *Org) AuthUserFor(env string) (string, bool) {
	return o.cfg.Get("envs."+env, "auth_user")
}

// WorkUserFor returns the identity commands should run as for env.
func (o *Org) WorkUserFor(env string) (string, bool) {
	return o.cfg.Get("envs."+env, "work_user")
}

// Environments returns the environment names the registry knows about,
// sorted for stable completion output.
func (o *Org) Environments() []string {
	var envs []string
	for _, section := range []string{"envs"} {
		for _, name := range o.cfg.SubTables(section) {
			envs = append(envs, name)
		}
	}
	sort.Strings(envs)
	return envs
}

// TargetsDir returns the directory holding this organization's targets.
func (o *Org) TargetsDir() string {
	return filepath.Join(o.Dir, "targets")
}

// Targets lists the target names registered under TargetsDir: directories
// holding a rich config, and flat <name>.toml files.
func (o *Org) Targets() ([]string, error) {
	entries, err := os.ReadDir(o.TargetsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list targets for organization %q: %w", o.Name, err)
	}

	seen := map[string]bool{}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() {
			if !strings.HasSuffix(name, ".toml") {
				continue
			}
			name = strings.TrimSuffix(name, ".toml")
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
