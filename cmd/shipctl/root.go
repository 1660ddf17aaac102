// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for shipctl.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"shipctl/internal/config"
	"shipctl/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output.
	verbose bool
	// cfgFile allows specifying a custom config file.
	cfgFile string

	// cfg is the loaded tool configuration, available to all commands after
	// initRootConfig runs.
	cfg = config.DefaultConfig()

	// rootCmd represents the base command when called without subcommands.
	rootCmd = &cobra.Command{
		Use:   "shipctl",
		Short: "Deploy named targets to named environments over SSH",
		Long: TitleStyle.Render("shipctl") + SubtitleStyle.Render(" - deployment orchestration over SSH") + `

shipctl resolves a (target, environment) pair to a deployment
configuration, loads it into a deployment context, and executes the
configured pre/main/post command lists on the remote host. Local names
(variables, lists, shell functions) are carried across the SSH boundary
so remote commands can reference them.

` + SubtitleStyle.Render("Examples:") + `
  shipctl deploy api prod          Deploy target 'api' to prod
  shipctl deploy staging           Deploy ./deploy.toml to staging
  shipctl deploy api prod -n       Show what would run, run nothing
  shipctl env render api prod      Render the context env file
  shipctl targets                  List targets in the active organization`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/shipctl/config.toml)")

	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(unitCmd)
	rootCmd.AddCommand(orgCmd)
	rootCmd.AddCommand(targetsCmd)
	rootCmd.AddCommand(newCompletionCommand())
}

// newCompletionCommand creates the `shipctl completion` command.
func newCompletionCommand() *cobra.Command {
	gen := map[string]func(root *cobra.Command) error{
		"bash":       func(root *cobra.Command) error { return root.GenBashCompletion(os.Stdout) },
		"zsh":        func(root *cobra.Command) error { return root.GenZshCompletion(os.Stdout) },
		"fish":       func(root *cobra.Command) error { return root.GenFishCompletion(os.Stdout, true) },
		"powershell": func(root *cobra.Command) error { return root.GenPowerShellCompletionWithDesc(os.Stdout) },
	}

	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for the named shell and load it the
usual way, e.g. in ~/.bashrc:

  eval "$(shipctl completion bash)"

Completions cover subcommands, flags, and the target and environment names
of the active organization.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return gen[args[0]](cmd.Root())
		},
	}
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main().
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initRootConfig reads the config file and applies it to unset flags.
func initRootConfig() {
	if cfgFile != "" {
		config.SetConfigFileOverride(cfgFile)
	}

	loaded, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
		return
	}
	cfg = loaded

	if !verbose {
		verbose = cfg.UI.Verbose
	}
}

// formatErrorForDisplay formats an error for user display, using the
// ActionableError layout when available and the full chain in verbose mode.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
