// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"shipctl/internal/deploy"
	"shipctl/internal/issue"
	"shipctl/internal/targetcfg"
)

// dirRegistry is a TargetRegistry over a plain directory.
type dirRegistry string

func (d dirRegistry) TargetsDir() string { return string(d) }

// TestResolve_LocalEnvOnly verifies single-argument resolution against the
// working directory.
func TestResolve_LocalEnvOnly(t *testing.T) {
	t.Parallel()

	work := t.TempDir()
	r := New(work, nil)

	if _, err := r.Resolve("prod"); !errors.Is(err, ErrNoLocalConfig) {
		t.Fatalf("Resolve(prod) error = %v, want ErrNoLocalConfig", err)
	}

	path := filepath.Join(work, LocalConfigName)
	if err := os.WriteFile(path, []byte("[target]\nname = \"x\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := r.Resolve("prod")
	if err != nil {
		t.Fatalf("Resolve(prod) error: %v", err)
	}
	if res.ConfigPath != path || res.Environment != "prod" || res.Target != "" {
		t.Errorf("Resolve(prod) = %+v", res)
	}
}

// TestResolve_RichBeatsFlat verifies targets/foo/deploy.toml wins over
// targets/foo.toml.
func TestResolve_RichBeatsFlat(t *testing.T) {
	t.Parallel()

	targets := t.TempDir()
	richDir := filepath.Join(targets, "foo")
	if err := os.MkdirAll(richDir, 0o755); err != nil {
		t.Fatal(err)
	}
	rich := filepath.Join(richDir, LocalConfigName)
	if err := os.WriteFile(rich, []byte("[pipeline]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	flat := filepath.Join(targets, "foo.toml")
	if err := os.WriteFile(flat, []byte("[target]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := New(t.TempDir(), dirRegistry(targets))
	res, err := r.Resolve("foo", "prod")
	if err != nil {
		t.Fatalf("Resolve(foo, prod) error: %v", err)
	}
	if res.ConfigPath != rich {
		t.Errorf("ConfigPath = %q, want rich config %q", res.ConfigPath, rich)
	}

	// Flat-only target resolves to the flat file.
	if err := os.WriteFile(filepath.Join(targets, "bar.toml"), []byte("[target]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err = r.Resolve("bar", "prod")
	if err != nil {
		t.Fatalf("Resolve(bar, prod) error: %v", err)
	}
	if res.ConfigPath != filepath.Join(targets, "bar.toml") {
		t.Errorf("ConfigPath = %q", res.ConfigPath)
	}
}

// TestResolve_TargetNotFound verifies the miss case and the no-organization
// case.
func TestResolve_TargetNotFound(t *testing.T) {
	t.Parallel()

	r := New(t.TempDir(), dirRegistry(t.TempDir()))
	_, err := r.Resolve("ghost", "prod")
	if !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("Resolve(ghost, prod) error = %v, want ErrTargetNotFound", err)
	}
	// The miss reaches the caller as an actionable error with remediation
	// hints, sentinel intact underneath.
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("Resolve() error = %T, want *issue.ActionableError", err)
	}
	if len(ae.Suggestions) == 0 {
		t.Error("ActionableError carries no suggestions")
	}

	noOrg := New(t.TempDir(), nil)
	if _, err := noOrg.Resolve("ghost", "prod"); !errors.Is(err, deploy.ErrNoActiveOrganization) {
		t.Fatalf("Resolve without org error = %v, want ErrNoActiveOrganization", err)
	}
}

// TestResolve_BadArity verifies zero or too many arguments error out.
func TestResolve_BadArity(t *testing.T) {
	t.Parallel()

	r := New(t.TempDir(), nil)
	if _, err := r.Resolve(); err == nil {
		t.Error("Resolve() with no args succeeded")
	}
	if _, err := r.Resolve("a", "b", "c"); err == nil {
		t.Error("Resolve() with three args succeeded")
	}
}

// TestDispatch_RoutesByFormat verifies engine configs go to the engine path
// and flat configs to the push path, with dry-run passed through.
func TestDispatch_RoutesByFormat(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	engineCfg := filepath.Join(dir, "engine.toml")
	if err := os.WriteFile(engineCfg, []byte("[pipeline]\nstages = [\"build\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	pushCfg := filepath.Join(dir, "push.toml")
	if err := os.WriteFile(pushCfg, []byte("[target]\nname = \"x\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var calls []string
	engine := func(res *Resolution, cfg *targetcfg.Config, dryRun bool) error {
		calls = append(calls, "engine")
		if !dryRun {
			t.Error("engine path lost the dry-run flag")
		}
		// The parsed config arrives with the dispatch, so the path never
		// needs a second read of the file.
		if cfg == nil || !cfg.IsEngineConfig() || cfg.Path() != res.ConfigPath {
			t.Errorf("engine path got config %+v", cfg)
		}
		return nil
	}
	push := func(res *Resolution, cfg *targetcfg.Config, dryRun bool) error {
		calls = append(calls, "push")
		if !dryRun {
			t.Error("push path lost the dry-run flag")
		}
		if cfg == nil || cfg.IsEngineConfig() {
			t.Errorf("push path got config %+v", cfg)
		}
		return nil
	}

	if err := Dispatch(&Resolution{ConfigPath: engineCfg}, true, engine, push); err != nil {
		t.Fatal(err)
	}
	if err := Dispatch(&Resolution{ConfigPath: pushCfg}, true, engine, push); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 2 || calls[0] != "engine" || calls[1] != "push" {
		t.Errorf("calls = %v, want [engine push]", calls)
	}
}
