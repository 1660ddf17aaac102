// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	orgCmd = &cobra.Command{
		Use:   "org",
		Short: "Work with the active organization",
	}

	orgShowCmd = &cobra.Command{
		Use:           "show",
		Short:         "Show the active organization and its environments",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runOrgShow,
	}
)

func init() {
	orgCmd.AddCommand(orgShowCmd)
}

func runOrgShow(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	if cfg.Org == "" {
		fmt.Fprintln(out, SubtitleStyle.Render("No active organization"))
		fmt.Fprintln(out, "Set one in your config file: "+CommandStyle.Render(`org = "myorg"`))
		return nil
	}

	activeOrg, err := openActiveOrg()
	if err != nil {
		return deployFailure(err)
	}

	fmt.Fprintln(out, TitleStyle.Render(activeOrg.Name))
	fmt.Fprintln(out, SubtitleStyle.Render(activeOrg.Dir))

	envs := activeOrg.Environments()
	if len(envs) > 0 {
		fmt.Fprintln(out, "\nEnvironments:")
		for _, env := range envs {
			host, _ := activeOrg.HostFor(env)
			if host != "" {
				fmt.Fprintf(out, "  %s  %s\n", HighlightStyle.Render(env), SubtitleStyle.Render(host))
			} else {
				fmt.Fprintf(out, "  %s\n", HighlightStyle.Render(env))
			}
		}
	}

	targets, err := activeOrg.Targets()
	if err != nil {
		return err
	}
	if len(targets) > 0 {
		fmt.Fprintln(out, "\nTargets:")
		for _, target := range targets {
			fmt.Fprintf(out, "  %s\n", target)
		}
	}
	return nil
}
