// SPDX-License-Identifier: MPL-2.0

package deploy

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"shipctl/internal/issue"
)

// fakeRegistry is an in-memory OrgRegistry.
type fakeRegistry struct {
	hosts     map[string]string
	authUsers map[string]string
	workUsers map[string]string
}

func (f *fakeRegistry) HostFor(env string) (string, bool) {
	v, ok := f.hosts[env]
	return v, ok
}

func (f *fakeRegistry) AuthUserFor(env string) (string, bool) {
	v, ok := f.authUsers[env]
	return v, ok
}

func (f *fakeRegistry) WorkUserFor(env string) (string, bool) {
	v, ok := f.workUsers[env]
	return v, ok
}

// writeTarget writes a target config body to <tmp>/deploy.toml.
func writeTarget(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "deploy.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const standaloneTarget = `
[target]
name = "api"
dir = "/srv/api"
domain = "api.example.com"

[envs.prod]
ssh = "b@h2"

[envs.all]
ssh = "a@h1"

[deploy]
pre = ["systemctl --user stop api"]
commands = ["rsync -a {local}/dist/ {ssh}:{cwd}/"]
post = ["systemctl --user start api"]
`

// TestStore_ClearIdempotent verifies clearing twice behaves like clearing
// once, and loading after either works the same.
func TestStore_ClearIdempotent(t *testing.T) {
	t.Parallel()

	path := writeTarget(t, standaloneTarget)
	s := NewStore()

	s.Clear()
	s.Clear()
	if _, ok := s.Current(); ok {
		t.Fatal("Current() after double clear reports a live context")
	}

	if err := s.Load(path, "prod", nil); err != nil {
		t.Fatalf("Load() after double clear: %v", err)
	}
	ctx, ok := s.Current()
	if !ok || ctx.Name != "api" {
		t.Fatalf("Current() = (%+v, %v)", ctx, ok)
	}
}

// TestStore_LoadMissingConfig verifies ConfigNotFound and that the store is
// left cleared.
func TestStore_LoadMissingConfig(t *testing.T) {
	t.Parallel()

	s := NewStore()
	err := s.Load(filepath.Join(t.TempDir(), "absent.toml"), "prod", nil)
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("Load() error = %v, want ErrConfigNotFound", err)
	}
	if _, ok := s.Current(); ok {
		t.Error("store holds a context after failed load")
	}
}

// TestStore_FailedLoadClearsPrevious verifies a failed load never leaves the
// previous context behind.
func TestStore_FailedLoadClearsPrevious(t *testing.T) {
	t.Parallel()

	good := writeTarget(t, standaloneTarget)
	s := NewStore()
	if err := s.Load(good, "prod", nil); err != nil {
		t.Fatal(err)
	}

	// Delegated-mode config with no registry available.
	bad := writeTarget(t, "[target]\nname = \"api\"\n")
	if err := s.Load(bad, "prod", nil); !errors.Is(err, ErrNoActiveOrganization) {
		t.Fatalf("Load() error = %v, want ErrNoActiveOrganization", err)
	}
	if _, ok := s.Current(); ok {
		t.Error("store still holds the previous context after failed load")
	}
}

// TestStore_ModeDeterminism verifies the standalone predicate is stable
// across repeated loads and ignores registry state.
func TestStore_ModeDeterminism(t *testing.T) {
	t.Parallel()

	path := writeTarget(t, standaloneTarget)
	reg := &fakeRegistry{
		hosts:     map[string]string{"prod": "other.example"},
		authUsers: map[string]string{"prod": "other"},
	}

	s := NewStore()
	for i := 0; i < 3; i++ {
		if err := s.Load(path, "prod", reg); err != nil {
			t.Fatalf("Load() #%d: %v", i, err)
		}
		ctx, _ := s.Current()
		if ctx.Mode != ModeStandalone {
			t.Fatalf("Mode #%d = %v, want standalone", i, ctx.Mode)
		}
		// Registry identities must not leak into a standalone context.
		if ctx.Host != "h2" {
			t.Fatalf("Host #%d = %q, want h2", i, ctx.Host)
		}
	}
}

// TestStore_PrecedenceOrder verifies envs.<env> beats envs.all, and an
// absent env falls back to envs.all.
func TestStore_PrecedenceOrder(t *testing.T) {
	t.Parallel()

	path := writeTarget(t, standaloneTarget)
	s := NewStore()

	if err := s.Load(path, "prod", nil); err != nil {
		t.Fatal(err)
	}
	ctx, _ := s.Current()
	if ctx.SSHEndpoint != "b@h2" {
		t.Errorf("prod endpoint = %q, want b@h2", ctx.SSHEndpoint)
	}

	if err := s.Load(path, "staging", nil); err != nil {
		t.Fatal(err)
	}
	ctx, _ = s.Current()
	if ctx.SSHEndpoint != "a@h1" {
		t.Errorf("staging endpoint = %q, want a@h1", ctx.SSHEndpoint)
	}
}

// TestStore_WorkUserDefault verifies workUser falls back to authUser when no
// user/work_user key exists at any level, and that an explicit key wins.
func TestStore_WorkUserDefault(t *testing.T) {
	t.Parallel()

	s := NewStore()

	path := writeTarget(t, standaloneTarget)
	if err := s.Load(path, "prod", nil); err != nil {
		t.Fatal(err)
	}
	ctx, _ := s.Current()
	if ctx.WorkUser != "b" {
		t.Errorf("WorkUser = %q, want auth user %q", ctx.WorkUser, "b")
	}

	withUser := writeTarget(t, standaloneTarget+"\n[env.all]\nuser = \"www\"\n")
	if err := s.Load(withUser, "prod", nil); err != nil {
		t.Fatal(err)
	}
	ctx, _ = s.Current()
	if ctx.WorkUser != "www" {
		t.Errorf("WorkUser = %q, want www", ctx.WorkUser)
	}
}

// TestStore_EndpointSplitOnLastAt verifies user@host splitting uses the last
// '@' so the auth user may itself contain one.
func TestStore_EndpointSplitOnLastAt(t *testing.T) {
	t.Parallel()

	path := writeTarget(t, `
[envs.prod]
ssh = "user@corp@h9"
`)
	s := NewStore()
	if err := s.Load(path, "prod", nil); err != nil {
		t.Fatal(err)
	}
	ctx, _ := s.Current()
	if ctx.AuthUser != "user@corp" || ctx.Host != "h9" {
		t.Errorf("split = (%q, %q), want (user@corp, h9)", ctx.AuthUser, ctx.Host)
	}
}

// TestStore_DomainOverride verifies a non-empty env-scoped domain replaces
// the identity domain, and an empty one does not.
func TestStore_DomainOverride(t *testing.T) {
	t.Parallel()

	s := NewStore()

	override := writeTarget(t, standaloneTarget+"\n[env.prod]\ndomain = \"prod.example.com\"\n")
	if err := s.Load(override, "prod", nil); err != nil {
		t.Fatal(err)
	}
	ctx, _ := s.Current()
	if ctx.Domain != "prod.example.com" {
		t.Errorf("Domain = %q, want prod.example.com", ctx.Domain)
	}

	empty := writeTarget(t, standaloneTarget+"\n[env.prod]\ndomain = \"\"\n")
	if err := s.Load(empty, "prod", nil); err != nil {
		t.Fatal(err)
	}
	ctx, _ = s.Current()
	if ctx.Domain != "api.example.com" {
		t.Errorf("Domain = %q, want identity domain kept", ctx.Domain)
	}
}

// TestStore_DelegatedMode verifies registry-backed resolution and its
// failure kinds.
func TestStore_DelegatedMode(t *testing.T) {
	t.Parallel()

	path := writeTarget(t, `
[target]
name = "api"

[deploy]
commands = ["echo hi"]
`)
	s := NewStore()

	// No registry at all.
	if err := s.Load(path, "prod", nil); !errors.Is(err, ErrNoActiveOrganization) {
		t.Fatalf("Load() error = %v, want ErrNoActiveOrganization", err)
	}

	// Registry without the environment.
	reg := &fakeRegistry{
		hosts:     map[string]string{"staging": "s1"},
		authUsers: map[string]string{"staging": "deploy"},
	}
	if err := s.Load(path, "prod", reg); !errors.Is(err, ErrNoHostForEnvironment) {
		t.Fatalf("Load() error = %v, want ErrNoHostForEnvironment", err)
	}

	// Full registry entry; work user defaults to auth user.
	reg.hosts["prod"] = "p1"
	reg.authUsers["prod"] = "deploy"
	if err := s.Load(path, "prod", reg); err != nil {
		t.Fatal(err)
	}
	ctx, _ := s.Current()
	if ctx.Mode != ModeDelegated || ctx.SSHEndpoint != "deploy@p1" || ctx.WorkUser != "deploy" {
		t.Errorf("delegated ctx = %+v", ctx)
	}

	reg.workUsers = map[string]string{"prod": "www"}
	if err := s.Load(path, "prod", reg); err != nil {
		t.Fatal(err)
	}
	ctx, _ = s.Current()
	if ctx.WorkUser != "www" {
		t.Errorf("WorkUser = %q, want www", ctx.WorkUser)
	}
}

// TestStore_CommandLists verifies pre/commands/post load in order and that a
// missing list is empty, not an error.
func TestStore_CommandLists(t *testing.T) {
	t.Parallel()

	path := writeTarget(t, standaloneTarget)
	s := NewStore()
	if err := s.Load(path, "prod", nil); err != nil {
		t.Fatal(err)
	}
	ctx, _ := s.Current()

	if want := []string{"systemctl --user stop api"}; !reflect.DeepEqual(ctx.Pre, want) {
		t.Errorf("Pre = %v", ctx.Pre)
	}
	if len(ctx.Main) != 1 {
		t.Errorf("Main = %v", ctx.Main)
	}

	bare := writeTarget(t, `
[envs.prod]
ssh = "a@h"
`)
	if err := s.Load(bare, "prod", nil); err != nil {
		t.Fatal(err)
	}
	ctx, _ = s.Current()
	if len(ctx.Pre) != 0 || len(ctx.Main) != 0 || len(ctx.Post) != 0 {
		t.Errorf("command lists = %v / %v / %v, want all empty", ctx.Pre, ctx.Main, ctx.Post)
	}
}

// TestContext_Bindings verifies the placeholder vocabulary maps to the right
// fields.
func TestContext_Bindings(t *testing.T) {
	t.Parallel()

	ctx := &Context{
		ConfigDir:   "/work/api",
		Environment: "prod",
		Name:        "api",
		RemoteDir:   "/srv/api",
		Domain:      "api.example.com",
		SSHEndpoint: "deploy@h1",
		Host:        "h1",
		AuthUser:    "deploy",
		WorkUser:    "www",
	}

	b := ctx.Bindings()
	checks := map[string]string{
		"ssh":       "deploy@h1",
		"host":      "h1",
		"auth_user": "deploy",
		"work_user": "www",
		"user":      "www",
		"name":      "api",
		"cwd":       "/srv/api",
		"domain":    "api.example.com",
		"env":       "prod",
		"local":     "/work/api",
	}
	for k, want := range checks {
		if got := b[k]; got != want {
			t.Errorf("Bindings()[%q] = %q, want %q", k, got, want)
		}
	}
}

// TestStore_EmptyEndpointFallsBack verifies an ssh key set to "" at a more
// specific level does not mask an endpoint further down the chain, and an
// ssh key that is empty everywhere leaves the config endpoint-less.
func TestStore_EmptyEndpointFallsBack(t *testing.T) {
	t.Parallel()

	path := writeTarget(t, `
[envs.prod]
ssh = ""

[envs.all]
ssh = "a@h1"
`)
	s := NewStore()
	if err := s.Load(path, "prod", nil); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	ctx, _ := s.Current()
	if ctx.Mode != ModeStandalone || ctx.SSHEndpoint != "a@h1" {
		t.Errorf("context = mode %v endpoint %q, want standalone a@h1", ctx.Mode, ctx.SSHEndpoint)
	}

	// Empty at every level still counts as a declared endpoint for the mode
	// decision, so the target stays standalone and the load fails with a
	// connection-info error instead of falling back to the registry.
	emptyOnly := writeTarget(t, "[envs.all]\nssh = \"\"\n")
	if err := s.Load(emptyOnly, "prod", nil); !errors.Is(err, ErrNoConnectionInfo) {
		t.Fatalf("Load() error = %v, want ErrNoConnectionInfo", err)
	}
	if _, ok := s.Current(); ok {
		t.Error("store holds a context after failed load")
	}
}

// TestStore_LoadFailuresCarrySuggestions verifies loader failures reach the
// caller as actionable errors: the sentinel still matches with errors.Is,
// and remediation hints ride along for display.
func TestStore_LoadFailuresCarrySuggestions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		load     func(s *Store) error
		sentinel error
	}{
		{
			name: "config not found",
			load: func(s *Store) error {
				return s.Load(filepath.Join(t.TempDir(), "absent.toml"), "prod", nil)
			},
			sentinel: ErrConfigNotFound,
		},
		{
			name: "no connection info",
			load: func(s *Store) error {
				path := writeTarget(t, "[envs.prod]\nssh = \"\"\n")
				return s.Load(path, "prod", nil)
			},
			sentinel: ErrNoConnectionInfo,
		},
		{
			name: "no active organization",
			load: func(s *Store) error {
				path := writeTarget(t, "[target]\nname = \"api\"\n")
				return s.Load(path, "prod", nil)
			},
			sentinel: ErrNoActiveOrganization,
		},
		{
			name: "no host for environment",
			load: func(s *Store) error {
				path := writeTarget(t, "[target]\nname = \"api\"\n")
				return s.Load(path, "prod", &fakeRegistry{})
			},
			sentinel: ErrNoHostForEnvironment,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.load(NewStore())
			if !errors.Is(err, tc.sentinel) {
				t.Fatalf("Load() error = %v, want %v", err, tc.sentinel)
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("Load() error = %T, want *issue.ActionableError", err)
			}
			if ae.Operation == "" || len(ae.Suggestions) == 0 {
				t.Errorf("ActionableError missing operation or suggestions: %+v", ae)
			}
		})
	}
}
