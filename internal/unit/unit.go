// SPDX-License-Identifier: MPL-2.0

package unit

import (
	"fmt"
	"strings"

	"shipctl/internal/deploy"
	"shipctl/internal/tmpl"
)

// Service describes a systemd service unit to render. Zero-value fields
// fall back to context-derived defaults.
type Service struct {
	// Description defaults to "<name> (<env>)".
	Description string
	// ExecStart is required and may contain placeholders.
	ExecStart string
	// WorkingDirectory defaults to the context remote dir.
	WorkingDirectory string
	// User defaults to the context work user.
	User string
	// EnvironmentFile is optional.
	EnvironmentFile string
	// Restart defaults to on-failure.
	Restart string
}

// Render produces the unit file text for ctx.
func (s Service) Render(ctx *deploy.Context) (string, error) {
	if strings.TrimSpace(s.ExecStart) == "" {
		return "", fmt.Errorf("render unit for %s: ExecStart is required", ctx.Name)
	}

	b := ctx.Bindings()
	sub := func(v string) string { return tmpl.Substitute(v, b) }

	description := s.Description
	if description == "" {
		description = fmt.Sprintf("%s (%s)", ctx.Name, ctx.Environment)
	}
	workDir := s.WorkingDirectory
	if workDir == "" {
		workDir = ctx.RemoteDir
	}
	user := s.User
	if user == "" {
		user = ctx.WorkUser
	}
	restart := s.Restart
	if restart == "" {
		restart = "on-failure"
	}

	var out strings.Builder
	out.WriteString("[Unit]\n")
	fmt.Fprintf(&out, "Description=%s\n", sub(description))
	out.WriteString("\n[Service]\n")
	out.WriteString("Type=simple\n")
	if user != "" {
		fmt.Fprintf(&out, "User=%s\n", sub(user))
	}
	if workDir != "" {
		fmt.Fprintf(&out, "WorkingDirectory=%s\n", sub(workDir))
	}
	if s.EnvironmentFile != "" {
		fmt.Fprintf(&out, "EnvironmentFile=%s\n", sub(s.EnvironmentFile))
	}
	fmt.Fprintf(&out, "ExecStart=%s\n", sub(s.ExecStart))
	fmt.Fprintf(&out, "Restart=%s\n", restart)
	out.WriteString("\n[Install]\nWantedBy=multi-user.target\n")

	return out.String(), nil
}
