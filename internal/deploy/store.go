// SPDX-License-Identifier: MPL-2.0

package deploy

import (
	"fmt"
	"os"
	"strings"

	"shipctl/internal/issue"
	"shipctl/internal/targetcfg"
)

// OrgRegistry is the organization-registry contract consumed in delegated
// mode. internal/org satisfies it.
type OrgRegistry interface {
	HostFor(env string) (string, bool)
	AuthUserFor(env string) (string, bool)
	WorkUserFor(env string) (string, bool)
}

// Store owns at most one live deployment context.
type Store struct {
	ctx *Context
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Current returns the live context, if any.
func (s *Store) Current() (*Context, bool) {
	return s.ctx, s.ctx != nil
}

// Clear drops the live context. Idempotent, always safe.
func (s *Store) Clear() {
	s.ctx = nil
}

// Load resolves the configuration at path for env and installs the result
// as the live context. The previous context is cleared first; on any
// failure the store stays cleared. reg supplies delegated-mode connection
// info and may be nil when no organization is active.
func (s *Store) Load(path, env string, reg OrgRegistry) error {
	s.Clear()

	if _, err := os.Stat(path); err != nil {
		return issue.NewErrorContext().
			WithOperation("load target config").
			WithResource(path).
			WithSuggestion("Check the target name spelling").
			WithSuggestion("Run 'shipctl targets' to list registered targets").
			Wrap(fmt.Errorf("%w: %s", ErrConfigNotFound, path)).
			BuildError()
	}

	cfg, err := targetcfg.Load(path)
	if err != nil {
		return err
	}
	return s.LoadConfig(cfg, env, reg)
}

// LoadConfig is Load for an already-parsed configuration, so callers that
// have read the file for routing do not parse it twice.
func (s *Store) LoadConfig(cfg *targetcfg.Config, env string, reg OrgRegistry) error {
	s.Clear()

	ctx := &Context{
		ConfigPath:  cfg.Path(),
		ConfigDir:   cfg.Dir(),
		Environment: env,
	}

	// Identity fields are direct lookups in the target's own config and may
	// all be empty.
	ctx.Name, _ = cfg.Get(targetcfg.SectionTarget, "name")
	ctx.RemoteDir, _ = cfg.Get(targetcfg.SectionTarget, "dir")
	ctx.Domain, _ = cfg.Get(targetcfg.SectionTarget, "domain")

	// Mode is a static predicate over the configuration, decided before any
	// registry lookup.
	var err error
	if cfg.HasEndpoint(env) {
		ctx.Mode = ModeStandalone
		err = resolveStandalone(ctx, cfg, env)
	} else {
		ctx.Mode = ModeDelegated
		err = resolveDelegated(ctx, env, reg)
	}
	if err != nil {
		return err
	}

	ctx.Pre = cfg.GetArray(targetcfg.SectionDeploy, "pre")
	ctx.Main = cfg.GetArray(targetcfg.SectionDeploy, "commands")
	ctx.Post = cfg.GetArray(targetcfg.SectionDeploy, "post")

	s.ctx = ctx
	return nil
}

// resolveStandalone fills connection info from the target's own config,
// applying the envs.<env> > envs.all > env.<env> > env.all chain per field.
func resolveStandalone(ctx *Context, cfg *targetcfg.Config, env string) error {
	endpoint, ok := cfg.GetEnvScoped(env, "ssh")
	if !ok {
		return issue.NewErrorContext().
			WithOperation("resolve connection info").
			WithResource(fmt.Sprintf("environment %s (%s)", env, ctx.ConfigPath)).
			WithSuggestion(fmt.Sprintf("Add ssh = %q under [envs.%s] or [envs.all]", "user@host", env)).
			Wrap(fmt.Errorf("%w: %s", ErrNoConnectionInfo, env)).
			BuildError()
	}

	// Host is everything after the last '@'; the auth user everything
	// before it. Hosts must not contain '@'.
	at := strings.LastIndex(endpoint, "@")
	if at <= 0 || at == len(endpoint)-1 {
		return fmt.Errorf("malformed ssh endpoint %q for environment %s: want user@host", endpoint, env)
	}
	ctx.SSHEndpoint = endpoint
	ctx.AuthUser = endpoint[:at]
	ctx.Host = endpoint[at+1:]

	// Work user falls back to the auth user. The "user" spelling wins over
	// "work_user"; each runs the full precedence chain.
	if user, ok := cfg.GetEnvScoped(env, "user"); ok {
		ctx.WorkUser = user
	} else if user, ok := cfg.GetEnvScoped(env, "work_user"); ok {
		ctx.WorkUser = user
	} else {
		ctx.WorkUser = ctx.AuthUser
	}

	// A domain override only replaces the identity domain when non-empty.
	if domain, ok := cfg.GetEnvScoped(env, "domain"); ok {
		ctx.Domain = domain
	}

	return nil
}

// resolveDelegated fills connection info from the organization registry.
func resolveDelegated(ctx *Context, env string, reg OrgRegistry) error {
	if reg == nil {
		return issue.NewErrorContext().
			WithOperation("resolve connection info").
			WithResource(ctx.ConfigPath).
			WithSuggestion(`Select an organization in your config file: org = "myorg"`).
			WithSuggestion("Or declare connection info directly in the target config").
			Wrap(fmt.Errorf("%w (loading %s)", ErrNoActiveOrganization, ctx.ConfigPath)).
			BuildError()
	}

	host, ok := reg.HostFor(env)
	if !ok || host == "" {
		return issue.NewErrorContext().
			WithOperation("resolve connection info").
			WithResource("environment " + env).
			WithSuggestion(fmt.Sprintf("Add an [envs.%s] table with a host key to the organization file", env)).
			Wrap(fmt.Errorf("%w: %s", ErrNoHostForEnvironment, env)).
			BuildError()
	}

	authUser, ok := reg.AuthUserFor(env)
	if !ok || authUser == "" {
		return fmt.Errorf("organization registry has no auth user for environment %s", env)
	}

	ctx.Host = host
	ctx.AuthUser = authUser
	ctx.SSHEndpoint = authUser + "@" + host

	if workUser, ok := reg.WorkUserFor(env); ok && workUser != "" {
		ctx.WorkUser = workUser
	} else {
		ctx.WorkUser = authUser
	}

	return nil
}
