// SPDX-License-Identifier: MPL-2.0

package targetcfg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// SectionTarget is the target-identity section.
const SectionTarget = "target"

// SectionDeploy holds the ordered pre/commands/post lists.
const SectionDeploy = "deploy"

// SectionPipeline marks the richer pipeline config format.
const SectionPipeline = "pipeline"

// Config is a parsed target configuration file.
type Config struct {
	path string
	root map[string]any
}

// Load parses the TOML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read target config %q: %w", path, err)
	}

	root := map[string]any{}
	if err := toml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse target config %q: %w", path, err)
	}

	return &Config{path: path, root: root}, nil
}

// Path returns the location the config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	return filepath.Dir(c.path)
}

// Get returns the string value at section.key. The section may be dotted
// ("envs.prod"). Scalar non-string values are formatted; tables and arrays
// report not-found.
func (c *Config) Get(section, key string) (string, bool) {
	tbl, ok := c.table(section)
	if !ok {
		return "", false
	}
	v, ok := tbl[key]
	if !ok {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	case bool, int64, float64:
		return fmt.Sprint(val), true
	default:
		return "", false
	}
}

// GetArray returns the string elements at section.key in declaration order.
// A missing key or a non-array value yields a nil slice. Non-string
// elements are skipped.
func (c *Config) GetArray(section, key string) []string {
	tbl, ok := c.table(section)
	if !ok {
		return nil
	}
	arr, ok := tbl[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// SubTables returns the names of the child tables of a section, in
// declaration-independent (map) order. Callers needing stability sort.
func (c *Config) SubTables(section string) []string {
	tbl, ok := c.table(section)
	if !ok {
		return nil
	}
	var names []string
	for k, v := range tbl {
		if _, isTable := v.(map[string]any); isTable {
			names = append(names, k)
		}
	}
	return names
}

// HasSection reports whether a (possibly dotted) table exists.
func (c *Config) HasSection(section string) bool {
	_, ok := c.table(section)
	return ok
}

// EnvSections returns the environment-scoped section names for env in
// precedence order, most specific first. Every env-scoped connection field
// (ssh endpoint, work user, domain override) resolves through this chain
// independently.
func EnvSections(env string) []string {
	return []string{
		"envs." + env,
		"envs.all",
		"env." + env,
		"env.all",
	}
}

// GetEnvScoped resolves key for env through the precedence chain, returning
// the first non-empty value. A key set to "" at a more specific level does
// not mask a value further down the chain; empty means unset, uniformly for
// every env-scoped field.
func (c *Config) GetEnvScoped(env, key string) (string, bool) {
	for _, section := range EnvSections(env) {
		if v, ok := c.Get(section, key); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// HasEndpoint reports whether this configuration declares an ssh endpoint
// for env anywhere in the precedence chain. This is the static predicate
// deciding standalone versus delegated connection mode; it never consults
// external state. Presence counts even when the value is empty: a declared
// ssh key means the target manages its own connection, and an all-empty
// chain is then a connection-info failure rather than a silent fall back
// to the organization registry.
func (c *Config) HasEndpoint(env string) bool {
	for _, section := range EnvSections(env) {
		if _, ok := c.Get(section, "ssh"); ok {
			return true
		}
	}
	return false
}

// IsEngineConfig reports whether the file uses the richer pipeline format.
func (c *Config) IsEngineConfig() bool {
	return c.HasSection(SectionPipeline)
}

// table walks the dotted section path to a TOML table.
func (c *Config) table(section string) (map[string]any, bool) {
	cur := c.root
	for _, part := range strings.Split(section, ".") {
		next, ok := cur[part].(map[string]any)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}
