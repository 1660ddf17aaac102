// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"shipctl/internal/config"
	"shipctl/internal/deploy"
	"shipctl/internal/issue"
	"shipctl/internal/org"
	"shipctl/internal/pipeline"
	"shipctl/internal/remote"
	"shipctl/internal/resolve"
	"shipctl/internal/targetcfg"
)

var (
	// deployDryRun prints every command that would run without executing any.
	deployDryRun bool

	deployCmd = &cobra.Command{
		Use:   "deploy [target] <environment>",
		Short: "Deploy a target to an environment",
		Long: `Deploy a target to an environment.

With two arguments the first names a target registered in the active
organization; with one argument the target configuration is ./deploy.toml
and the argument names the environment.

Configurations carrying a [pipeline] section run their stages in order;
classic configurations run the [deploy] pre, commands, and post lists.
Either way execution is fail-fast: the first non-zero exit stops the run.`,
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: completeDeployArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		RunE:              runDeploy,
	}
)

func init() {
	deployCmd.Flags().BoolVarP(&deployDryRun, "dry-run", "n", false, "print commands without executing them")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	activeOrg, err := openActiveOrg()
	if err != nil {
		return deployFailure(err)
	}

	res, err := resolveArgs(activeOrg, args)
	if err != nil {
		return deployFailure(err)
	}

	var registry deploy.OrgRegistry
	if activeOrg != nil {
		registry = activeOrg
	}

	engine := func(res *resolve.Resolution, tcfg *targetcfg.Config, dryRun bool) error {
		return runEngineDeploy(cmd, res, tcfg, registry, dryRun)
	}
	push := func(res *resolve.Resolution, tcfg *targetcfg.Config, dryRun bool) error {
		return runPushDeploy(cmd, res, tcfg, registry, dryRun)
	}
	if err := resolve.Dispatch(res, deployDryRun, engine, push); err != nil {
		return deployFailure(err)
	}

	if deployDryRun {
		fmt.Fprintln(cmd.OutOrStdout(), SubtitleStyle.Render("Dry run complete, nothing was executed"))
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("✓ Deploy finished"))
	}
	return nil
}

// runPushDeploy loads the deployment context and runs its pre/main/post
// command lists on the remote host.
func runPushDeploy(cmd *cobra.Command, res *resolve.Resolution, tcfg *targetcfg.Config, registry deploy.OrgRegistry, dryRun bool) error {
	dctx, err := loadDeployContext(res, tcfg, registry)
	if err != nil {
		return err
	}
	ex, closeClient, err := newDeployExecutor(dctx, dryRun, cmd)
	if err != nil {
		return err
	}
	defer closeClient()

	announceDeploy(cmd, dctx, dryRun)
	return ex.RunPhases(cmd.Context())
}

// runEngineDeploy runs a [pipeline] configuration stage by stage, dispatching
// each stage command through the same remote executor the push path uses.
func runEngineDeploy(cmd *cobra.Command, res *resolve.Resolution, tcfg *targetcfg.Config, registry deploy.OrgRegistry, dryRun bool) error {
	p, err := pipeline.Load(tcfg)
	if err != nil {
		return err
	}

	dctx, err := loadDeployContext(res, tcfg, registry)
	if err != nil {
		return err
	}
	ex, closeClient, err := newDeployExecutor(dctx, dryRun, cmd)
	if err != nil {
		return err
	}
	defer closeClient()

	announceDeploy(cmd, dctx, dryRun)
	return p.Run(cmd.Context(), ex)
}

// openActiveOrg opens the organization named in the tool config. No
// configured organization is not an error: standalone targets and local
// deploys work without one.
func openActiveOrg() (*org.Org, error) {
	if cfg.Org == "" {
		return nil, nil
	}
	orgsDir, err := config.OrgsDir()
	if err != nil {
		return nil, err
	}
	o, err := org.Open(orgsDir, cfg.Org)
	if err != nil {
		return nil, fmt.Errorf("open organization %q: %w", cfg.Org, err)
	}
	return o, nil
}

// resolveArgs maps command arguments to a target configuration using the
// current working directory and the active organization's target registry.
func resolveArgs(activeOrg *org.Org, args []string) (*resolve.Resolution, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	var registry resolve.TargetRegistry
	if activeOrg != nil {
		registry = activeOrg
	}
	return resolve.New(workDir, registry).Resolve(args...)
}

// loadDeployContext resolves res into a deployment context, consulting
// registry for delegated connection info. tcfg may be nil, in which case
// the configuration is read from res.ConfigPath.
func loadDeployContext(res *resolve.Resolution, tcfg *targetcfg.Config, registry deploy.OrgRegistry) (*deploy.Context, error) {
	store := deploy.NewStore()
	var err error
	if tcfg != nil {
		err = store.LoadConfig(tcfg, res.Environment, registry)
	} else {
		err = store.Load(res.ConfigPath, res.Environment, registry)
	}
	if err != nil {
		return nil, err
	}
	dctx, ok := store.Current()
	if !ok {
		return nil, fmt.Errorf("load %s: no context", res.ConfigPath)
	}
	return dctx, nil
}

// newDeployExecutor wires an SSH client and executor for dctx. The returned
// func closes the client; the connection itself is only made on first use,
// so a dry run never dials.
func newDeployExecutor(dctx *deploy.Context, dryRun bool, cmd *cobra.Command) (*remote.Executor, func(), error) {
	client, err := remote.NewClient(dctx.SSHEndpoint, sshClientConfig())
	if err != nil {
		return nil, nil, err
	}

	logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{Prefix: "deploy"})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	ex := remote.NewExecutor(dctx, client, remote.Options{
		DryRun: dryRun,
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
		Logger: logger,
	})
	return ex, func() { _ = client.Close() }, nil
}

// sshClientConfig builds transport settings from the tool config.
func sshClientConfig() remote.ClientConfig {
	c := remote.DefaultClientConfig()
	c.KeyPath = cfg.SSH.KeyPath
	if cfg.SSH.Port != 0 {
		c.Port = cfg.SSH.Port
	}
	c.KnownHostsPath = cfg.SSH.KnownHostsPath
	return c
}

func announceDeploy(cmd *cobra.Command, dctx *deploy.Context, dryRun bool) {
	action := "Deploying"
	if dryRun {
		action = "Would deploy"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s to %s (%s, %s)\n",
		action,
		HighlightStyle.Render(dctx.Name),
		HighlightStyle.Render(dctx.Environment),
		dctx.Mode,
		CommandStyle.Render(dctx.SSHEndpoint),
	)
}

// deployFailure renders operator guidance for well-known failures and wraps
// err so the process exits with the remote status when a command failed.
func deployFailure(err error) error {
	if guidance := guidanceFor(err); guidance != "" {
		fmt.Fprintln(os.Stderr, guidance)
	}
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))

	code := 1
	var cmdErr *remote.CommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitCode > 0 {
		code = cmdErr.ExitCode
	}
	return &ExitError{Code: code, Err: err}
}

// guidanceFor maps err to rendered guidance, or "" when no dedicated
// guidance is registered for its kind.
func guidanceFor(err error) string {
	var id issue.Id
	switch {
	case errors.Is(err, deploy.ErrConfigNotFound):
		id = issue.ConfigNotFoundId
	case errors.Is(err, deploy.ErrNoConnectionInfo):
		id = issue.NoConnectionInfoId
	case errors.Is(err, deploy.ErrNoActiveOrganization):
		id = issue.NoActiveOrganizationId
	case errors.Is(err, deploy.ErrNoHostForEnvironment):
		id = issue.NoHostForEnvironmentId
	case errors.Is(err, resolve.ErrTargetNotFound):
		id = issue.TargetNotFoundId
	case errors.Is(err, resolve.ErrNoLocalConfig):
		id = issue.NoLocalConfigId
	default:
		var cmdErr *remote.CommandError
		if !errors.As(err, &cmdErr) {
			return ""
		}
		id = issue.CommandFailedId
	}

	iss := issue.Lookup(id)
	if iss == nil {
		return ""
	}
	out, renderErr := iss.Render("auto")
	if renderErr != nil {
		return ""
	}
	return out
}

// completeDeployArgs completes target names for the first argument and
// environment names for the second.
func completeDeployArgs(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	activeOrg, err := openActiveOrg()
	if err != nil || activeOrg == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	switch len(args) {
	case 0:
		targets, err := activeOrg.Targets()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		// Environments complete here too: a single argument means a local
		// ./deploy.toml deploy to that environment.
		return append(targets, activeOrg.Environments()...), cobra.ShellCompDirectiveNoFileComp
	case 1:
		return activeOrg.Environments(), cobra.ShellCompDirectiveNoFileComp
	default:
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
}
