// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shipctl/internal/deploy"
	"shipctl/internal/envfile"
)

var (
	// envOutput writes the rendered file to a path instead of stdout.
	envOutput string
	// envSet holds extra KEY=VALUE entries for the rendered file.
	envSet []string

	envCmd = &cobra.Command{
		Use:   "env",
		Short: "Work with deployment environment files",
	}

	envRenderCmd = &cobra.Command{
		Use:   "render [target] <environment>",
		Short: "Render a dotenv file for a resolved deployment context",
		Long: `Render a dotenv file for a resolved deployment context.

The file carries the context's identity and connection values (name,
environment, host, users, directory, domain) in DEPLOY_* variables, plus
any extras given with --set. Values that need it are quoted, so the output
parses back losslessly.`,
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: completeDeployArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		RunE:              runEnvRender,
	}
)

func init() {
	envRenderCmd.Flags().StringVarP(&envOutput, "output", "o", "", "write to file instead of stdout")
	envRenderCmd.Flags().StringArrayVar(&envSet, "set", nil, "extra KEY=VALUE entry (repeatable)")
	envCmd.AddCommand(envRenderCmd)
}

func runEnvRender(cmd *cobra.Command, args []string) error {
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
	dctx, err := loadDeployContext(res, nil, registry)
	if err != nil {
		return deployFailure(err)
	}

	extra, err := parseSetFlags(envSet)
	if err != nil {
		return err
	}

	if envOutput != "" {
		if err := envfile.WriteFile(envOutput, dctx, extra); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("✓ Wrote ")+envOutput)
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), envfile.Render(dctx, extra))
	return nil
}

// parseSetFlags parses repeated KEY=VALUE flags into a map.
func parseSetFlags(entries []string) (map[string]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set entry %q: want KEY=VALUE", entry)
		}
		out[key] = value
	}
	return out, nil
}
