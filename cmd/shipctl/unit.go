// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shipctl/internal/deploy"
	"shipctl/internal/unit"
)

var (
	unitService unit.Service
	// unitOutput writes the rendered unit to a path instead of stdout.
	unitOutput string

	unitCmd = &cobra.Command{
		Use:   "unit",
		Short: "Work with systemd service units",
	}

	unitRenderCmd = &cobra.Command{
		Use:   "render [target] <environment>",
		Short: "Render a systemd service unit for a resolved deployment context",
		Long: `Render a systemd service unit for a resolved deployment context.

Every field supports {name} placeholders from the context vocabulary, so
--exec "{cwd}/bin/{name}" expands against the resolved target. Unset fields
default from the context: the working directory, the service user, and the
description all follow the target and environment being rendered.`,
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: completeDeployArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		RunE:              runUnitRender,
	}
)

func init() {
	unitRenderCmd.Flags().StringVar(&unitService.ExecStart, "exec", "", "ExecStart command (required)")
	unitRenderCmd.Flags().StringVar(&unitService.Description, "description", "", "unit description (default \"<name> (<env>)\")")
	unitRenderCmd.Flags().StringVar(&unitService.WorkingDirectory, "workdir", "", "working directory (default: remote deploy dir)")
	unitRenderCmd.Flags().StringVar(&unitService.User, "user", "", "service user (default: context work user)")
	unitRenderCmd.Flags().StringVar(&unitService.EnvironmentFile, "env-file", "", "EnvironmentFile path")
	unitRenderCmd.Flags().StringVar(&unitService.Restart, "restart", "", "Restart policy (default on-failure)")
	unitRenderCmd.Flags().StringVarP(&unitOutput, "output", "o", "", "write to file instead of stdout")
	_ = unitRenderCmd.MarkFlagRequired("exec")
	unitCmd.AddCommand(unitRenderCmd)
}

func runUnitRender(cmd *cobra.Command, args []string) error {
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

	rendered, err := unitService.Render(dctx)
	if err != nil {
		return err
	}

	if unitOutput != "" {
		if err := os.WriteFile(unitOutput, []byte(rendered), 0o644); err != nil {
			return fmt.Errorf("write unit file: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("✓ Wrote ")+unitOutput)
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), rendered)
	return nil
}
