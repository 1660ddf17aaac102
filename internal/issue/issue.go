// SPDX-License-Identifier: MPL-2.0

package issue

import "github.com/charmbracelet/glamour"

// Id identifies a well-known failure kind with dedicated guidance.
type Id int

const (
	ConfigNotFoundId Id = iota + 1
	NoConnectionInfoId
	NoActiveOrganizationId
	NoHostForEnvironmentId
	TargetNotFoundId
	NoLocalConfigId
	CommandFailedId
)

// Issue pairs a failure kind with Markdown guidance for the operator.
type Issue struct {
	id    Id
	mdMsg string
}

// Id returns the issue identifier.
func (i *Issue) Id() Id {
	return i.id
}

// Render returns the guidance rendered for the terminal.
func (i *Issue) Render(stylePath string) (string, error) {
	return render(i.mdMsg, stylePath)
}

// render is a seam for tests to avoid terminal detection.
var render = glamour.Render

var (
	configNotFoundIssue = &Issue{
		id: ConfigNotFoundId,
		mdMsg: `
# Target configuration not found

The resolved configuration file does not exist.

## Things you can try
- Check the target name spelling
- Verify the active organization with:
~~~
$ shipctl org show
~~~
- Create a target config under your organization's ` + "`targets/`" + ` directory`,
	}

	noConnectionInfoIssue = &Issue{
		id: NoConnectionInfoId,
		mdMsg: `
# No connection info for this environment

The target declares its own connection info, but no ` + "`ssh`" + ` endpoint was
found for the requested environment.

## Lookup order
1. ` + "`[envs.<environment>]`" + `
2. ` + "`[envs.all]`" + `
3. ` + "`[env.<environment>]`" + `
4. ` + "`[env.all]`" + `

Add an ` + "`ssh = \"user@host\"`" + ` key at any of these levels.`,
	}

	noActiveOrganizationIssue = &Issue{
		id: NoActiveOrganizationId,
		mdMsg: `
# No active organization

The target delegates its connection info to an organization registry, but no
organization is currently selected.

## Things you can try
- Select one in your config file:
~~~toml
org = "myorg"
~~~
- Or declare connection info directly in the target config`,
	}

	noHostForEnvironmentIssue = &Issue{
		id: NoHostForEnvironmentId,
		mdMsg: `
# Organization has no host for this environment

The active organization registry has no entry for the requested environment.

Add an ` + "`[envs.<environment>]`" + ` table with a ` + "`host`" + ` key to the
organization file.`,
	}

	targetNotFoundIssue = &Issue{
		id: TargetNotFoundId,
		mdMsg: `
# Target not found

Neither ` + "`targets/<name>/deploy.toml`" + ` nor ` + "`targets/<name>.toml`" + `
exists in the active organization.`,
	}

	noLocalConfigIssue = &Issue{
		id: NoLocalConfigId,
		mdMsg: `
# No local target configuration

Single-argument deploys expect a ` + "`deploy.toml`" + ` in the current
directory. Either create one, or name a registered target:
~~~
$ shipctl deploy <target> <environment>
~~~`,
	}

	commandFailedIssue = &Issue{
		id: CommandFailedId,
		mdMsg: `
# Deploy command failed

A command in the pre/main/post sequence exited non-zero. Execution stops at
the first failure; later commands in the sequence did not run.

Re-run with ` + "`--dry-run`" + ` to audit the exact commands without executing
them.`,
	}

	issues = map[Id]*Issue{
		ConfigNotFoundId:       configNotFoundIssue,
		NoConnectionInfoId:     noConnectionInfoIssue,
		NoActiveOrganizationId: noActiveOrganizationIssue,
		NoHostForEnvironmentId: noHostForEnvironmentIssue,
		TargetNotFoundId:       targetNotFoundIssue,
		NoLocalConfigId:        noLocalConfigIssue,
		CommandFailedId:        commandFailedIssue,
	}
)

// Lookup returns the Issue for id, or nil if none is registered.
func Lookup(id Id) *Issue {
	return issues[id]
}
