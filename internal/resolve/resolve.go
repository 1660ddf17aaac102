// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"shipctl/internal/deploy"
	"shipctl/internal/issue"
	"shipctl/internal/targetcfg"
)

// LocalConfigName is the target config expected in the working directory for
// single-argument deploys, and inside a rich per-target directory.
const LocalConfigName = "deploy.toml"

var (
	// ErrTargetNotFound is returned when a named target exists in neither
	// the rich nor the flat registry location.
	ErrTargetNotFound = errors.New("target not found")

	// ErrNoLocalConfig is returned for single-argument resolution with no
	// local target configuration present.
	ErrNoLocalConfig = errors.New("no local target configuration")
)

// Resolution is a resolved (configuration, environment) pair.
type Resolution struct {
	// ConfigPath is the target configuration file to load.
	ConfigPath string
	// Environment is the requested deployment environment.
	Environment string
	// Target is the target name, empty for local resolution.
	Target string
}

// TargetRegistry supplies the directory holding an organization's targets.
// internal/org satisfies it.
type TargetRegistry interface {
	TargetsDir() string
}

// Resolver locates target configurations.
type Resolver struct {
	workDir  string
	registry TargetRegistry // nil when no organization is active
}

// New returns a resolver rooted at workDir. registry may be nil.
func New(workDir string, registry TargetRegistry) *Resolver {
	return &Resolver{workDir: workDir, registry: registry}
}

// Resolve maps deploy arguments to a configuration path. With one argument
// it is the environment and the config must be ./deploy.toml; with two the
// first names a target in the active organization and the second the
// environment.
func (r *Resolver) Resolve(args ...string) (*Resolution, error) {
	switch len(args) {
	case 1:
		path := filepath.Join(r.workDir, LocalConfigName)
		if _, err := os.Stat(path); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("resolve local target").
				WithResource(path).
				WithSuggestion("Create a deploy.toml in the current directory").
				WithSuggestion("Or name a registered target: shipctl deploy <target> <environment>").
				Wrap(fmt.Errorf("%w: %s", ErrNoLocalConfig, path)).
				BuildError()
		}
		return &Resolution{ConfigPath: path, Environment: args[0]}, nil

	case 2:
		target, env := args[0], args[1]
		if r.registry == nil {
			return nil, fmt.Errorf("%w (resolving target %s)", deploy.ErrNoActiveOrganization, target)
		}
		targetsDir := r.registry.TargetsDir()

		// A per-target directory with its own config wins over the flat
		// single-file form.
		rich := filepath.Join(targetsDir, target, LocalConfigName)
		if _, err := os.Stat(rich); err == nil {
			return &Resolution{ConfigPath: rich, Environment: env, Target: target}, nil
		}

		flat := filepath.Join(targetsDir, target+".toml")
		if _, err := os.Stat(flat); err == nil {
			return &Resolution{ConfigPath: flat, Environment: env, Target: target}, nil
		}

		return nil, issue.NewErrorContext().
			WithOperation("resolve target").
			WithResource(target).
			WithSuggestion("Run 'shipctl targets' to list registered targets").
			WithSuggestion(fmt.Sprintf("Create %s or %s", rich, flat)).
			Wrap(fmt.Errorf("%w: %s (in %s)", ErrTargetNotFound, target, targetsDir)).
			BuildError()

	default:
		return nil, fmt.Errorf("resolve: want (env) or (target, env), got %d arguments", len(args))
	}
}

// PathFunc is a dispatch destination: the pipeline-engine path or the
// legacy push path. Both receive the parsed configuration and the same
// dry-run flag.
type PathFunc func(res *Resolution, cfg *targetcfg.Config, dryRun bool) error

// Dispatch parses the resolved configuration once and routes it by format:
// a [pipeline] section takes the engine path, anything else the push path.
func Dispatch(res *Resolution, dryRun bool, engine, push PathFunc) error {
	cfg, err := targetcfg.Load(res.ConfigPath)
	if err != nil {
		return err
	}
	if cfg.IsEngineConfig() {
		return engine(res, cfg, dryRun)
	}
	return push(res, cfg, dryRun)
}
