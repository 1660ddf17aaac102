// SPDX-License-Identifier: MPL-2.0

package remote

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"shipctl/internal/deploy"
	"shipctl/internal/tmpl"
	"shipctl/internal/transport"
)

// ScriptRunner executes a script body against the remote endpoint and
// returns its exit status. Client satisfies it; tests substitute fakes.
type ScriptRunner interface {
	Run(ctx context.Context, script string, stdout, stderr io.Writer) (int, error)
}

type (
	// Executor runs deployment commands for one resolved context.
	Executor struct {
		ctx    *deploy.Context
		reg    *transport.Registry
		runner ScriptRunner
		dryRun bool
		stdout io.Writer
		stderr io.Writer
		logger *log.Logger
	}

	// Options configures an Executor. Nil/zero fields get defaults: a
	// context-baseline registry, stdio, and a "deploy"-prefixed logger.
	Options struct {
		Registry *transport.Registry
		DryRun   bool
		Stdout   io.Writer
		Stderr   io.Writer
		Logger   *log.Logger
	}
)

// NewExecutor creates an executor for ctx dispatching through runner.
func NewExecutor(ctx *deploy.Context, runner ScriptRunner, opts Options) *Executor {
	reg := opts.Registry
	if reg == nil {
		reg = transport.NewContextRegistry(ctx)
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "deploy"})
	}

	return &Executor{
		ctx:    ctx,
		reg:    reg,
		runner: runner,
		dryRun: opts.DryRun,
		stdout: stdout,
		stderr: stderr,
		logger: logger,
	}
}

// Registry exposes the executor's transport registry so callers can bind
// additional state before dispatching.
func (e *Executor) Registry() *transport.Registry {
	return e.reg
}

// ExecCommand substitutes command, prepends the transport payload, and
// dispatches it. Returns the remote exit status.
func (e *Executor) ExecCommand(ctx context.Context, command string) (int, error) {
	return e.dispatch(ctx, command, false)
}

// ExecScript is ExecCommand for a multi-line script body supplied as a unit.
func (e *Executor) ExecScript(ctx context.Context, script string) (int, error) {
	return e.dispatch(ctx, script, false)
}

// ExecPrivileged dispatches command inside a privilege-elevation shell
// running as the context work user. The payload travels inside the elevated
// shell, so transported state keeps its ordering there too.
func (e *Executor) ExecPrivileged(ctx context.Context, command string) (int, error) {
	return e.dispatch(ctx, command, true)
}

func (e *Executor) dispatch(ctx context.Context, command string, elevated bool) (int, error) {
	sub := tmpl.Substitute(command, e.ctx.Bindings())

	fmt.Fprintf(e.stdout, "$ %s\n", sub)
	if e.dryRun {
		return 0, nil
	}

	payload, err := transport.BuildPayload(e.reg)
	if err != nil {
		return -1, err
	}

	inv := Invocation{
		Payload:  payload,
		Command:  sub,
		Elevated: elevated,
		User:     e.ctx.WorkUser,
	}
	script, err := inv.Script()
	if err != nil {
		return -1, err
	}

	e.logger.Debug("dispatch", "endpoint", e.ctx.SSHEndpoint, "elevated", elevated, "bytes", len(script))
	return e.runner.Run(ctx, script, e.stdout, e.stderr)
}

// RunPhases executes the context's pre, main, and post lists in order.
// Each list is fail-fast: the first non-zero step aborts the whole run with
// a CommandError, so a failing pre step prevents main from starting.
func (e *Executor) RunPhases(ctx context.Context) error {
	phases := []struct {
		name     string
		commands []string
	}{
		{"pre", e.ctx.Pre},
		{"main", e.ctx.Main},
		{"post", e.ctx.Post},
	}

	for _, phase := range phases {
		if err := e.runPhase(ctx, phase.name, phase.commands); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) runPhase(ctx context.Context, name string, commands []string) error {
	for i, command := range commands {
		sub := tmpl.Substitute(command, e.ctx.Bindings())

		// Echoed before execution, dry-run included, so the operator can
		// audit exactly what reaches the remote host.
		fmt.Fprintf(e.stdout, "[%s %d/%d] %s\n", name, i+1, len(commands), sub)
		if e.dryRun {
			continue
		}

		payload, err := transport.BuildPayload(e.reg)
		if err != nil {
			return err
		}
		inv := Invocation{Payload: payload, Command: sub}
		script, err := inv.Script()
		if err != nil {
			return err
		}

		code, err := e.runner.Run(ctx, script, e.stdout, e.stderr)
		if err != nil {
			return fmt.Errorf("run %s step %d: %w", name, i+1, err)
		}
		if code != 0 {
			return &CommandError{Phase: name, Index: i, Command: sub, ExitCode: code}
		}
	}
	return nil
}
