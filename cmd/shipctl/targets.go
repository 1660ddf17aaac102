// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"shipctl/internal/deploy"
	"shipctl/internal/resolve"
	"shipctl/internal/targetcfg"
)

var targetsCmd = &cobra.Command{
	Use:           "targets",
	Short:         "List targets registered in the active organization",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTargets,
}

func runTargets(cmd *cobra.Command, _ []string) error {
	activeOrg, err := openActiveOrg()
	if err != nil {
		return deployFailure(err)
	}
	if activeOrg == nil {
		return deployFailure(fmt.Errorf("%w (listing targets)", deploy.ErrNoActiveOrganization))
	}

	targets, err := activeOrg.Targets()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(targets) == 0 {
		fmt.Fprintln(out, SubtitleStyle.Render("No targets in ")+activeOrg.TargetsDir())
		return nil
	}

	for _, target := range targets {
		res, err := resolve.New("", activeOrg).Resolve(target, "all")
		if err != nil {
			fmt.Fprintf(out, "%s  %s\n", target, ErrorStyle.Render(err.Error()))
			continue
		}
		fmt.Fprintf(out, "%s  %s\n", HighlightStyle.Render(target), SubtitleStyle.Render(describeTarget(res.ConfigPath)))
	}
	return nil
}

// describeTarget summarizes a target config for the listing, tolerating
// unreadable files so one broken target does not hide the rest.
func describeTarget(path string) string {
	cfg, err := targetcfg.Load(path)
	if err != nil {
		return path
	}
	if cfg.IsEngineConfig() {
		return "pipeline, " + path
	}
	if name, ok := cfg.Get(targetcfg.SectionTarget, "name"); ok && name != "" {
		return name + ", " + path
	}
	return path
}
