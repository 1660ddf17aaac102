// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"fmt"

	"shipctl/internal/remote"
	"shipctl/internal/targetcfg"
)

type (
	// Pipeline is an ordered list of stages.
	Pipeline struct {
		Stages []Stage
	}

	// Stage is a named command list.
	Stage struct {
		Name     string
		Commands []string
	}
)

// Load reads the [pipeline] section: a stages array naming the order, and
// one [pipeline.<stage>] table per stage with its commands.
func Load(cfg *targetcfg.Config) (*Pipeline, error) {
	if !cfg.IsEngineConfig() {
		return nil, fmt.Errorf("%s has no pipeline section", cfg.Path())
	}

	names := cfg.GetArray(targetcfg.SectionPipeline, "stages")
	if len(names) == 0 {
		return nil, fmt.Errorf("%s: pipeline declares no stages", cfg.Path())
	}

	p := &Pipeline{Stages: make([]Stage, 0, len(names))}
	for _, name := range names {
		section := targetcfg.SectionPipeline + "." + name
		if !cfg.HasSection(section) {
			return nil, fmt.Errorf("%s: pipeline stage %q has no [%s] table", cfg.Path(), name, section)
		}
		p.Stages = append(p.Stages, Stage{
			Name:     name,
			Commands: cfg.GetArray(section, "commands"),
		})
	}
	return p, nil
}

// Run executes every stage in order through ex. Stages are fail-fast: the
// first non-zero command aborts the run with a CommandError carrying the
// stage name.
func (p *Pipeline) Run(ctx context.Context, ex *remote.Executor) error {
	for _, stage := range p.Stages {
		for i, command := range stage.Commands {
			code, err := ex.ExecCommand(ctx, command)
			if err != nil {
				return fmt.Errorf("stage %s command %d: %w", stage.Name, i+1, err)
			}
			if code != 0 {
				return &remote.CommandError{Phase: stage.Name, Index: i, Command: command, ExitCode: code}
			}
		}
	}
	return nil
}
