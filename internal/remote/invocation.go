// SPDX-License-Identifier: MPL-2.0

package remote

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Invocation is one remote dispatch, assembled field by field rather than
// pasted into a local shell. The payload always precedes the command so the
// remote shell sees transported state before anything references it; for
// elevated dispatches the whole body moves inside the privileged shell,
// keeping that ordering intact.
type Invocation struct {
	// Payload is the serialized transport state, possibly empty.
	Payload string
	// Command is the substituted command or script body to evaluate.
	Command string
	// Elevated wraps the dispatch in a privilege-elevation shell.
	Elevated bool
	// User is the identity an elevated dispatch runs as; empty means root.
	User string
}

// Script assembles the text handed to the remote shell.
func (inv *Invocation) Script() (string, error) {
	var b strings.Builder
	if inv.Payload != "" {
		b.WriteString(strings.TrimRight(inv.Payload, "\n"))
		b.WriteByte('\n')
	}
	b.WriteString(inv.Command)
	body := b.String()

	if !inv.Elevated {
		return body, nil
	}

	quoted, err := syntax.Quote(body, syntax.LangBash)
	if err != nil {
		return "", fmt.Errorf("quote elevated body: %w", err)
	}
	user := inv.User
	if user == "" {
		user = "root"
	}
	return fmt.Sprintf("sudo -u %s bash -c %s", user, quoted), nil
}
