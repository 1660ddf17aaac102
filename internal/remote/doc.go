// SPDX-License-Identifier: MPL-2.0

// Package remote dispatches deployment commands to a target host over SSH.
//
// Every dispatch carries the transport payload ahead of the command so the
// remote shell sees the same names the local orchestrator used. Execution
// is strictly sequential: the ordered pre/main/post lists run fail-fast,
// and dry-run mode substitutes and echoes without evaluating anything.
package remote
