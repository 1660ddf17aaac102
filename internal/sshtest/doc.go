// SPDX-License-Identifier: MPL-2.0

// Package sshtest provides an in-process SSH server that evaluates exec
// requests with an embedded POSIX shell. It stands in for a deployment host
// in transport tests: a client can dial it, run a script, and observe the
// same streaming and exit-status behavior a real sshd would give.
package sshtest
