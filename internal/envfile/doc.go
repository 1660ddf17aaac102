// SPDX-License-Identifier: MPL-2.0

// Package envfile renders a dotenv-style environment file from a resolved
// deployment context, and parses existing files for merging. Services on
// the target source the rendered file to see the same DEPLOY_* names the
// orchestrator used.
package envfile
