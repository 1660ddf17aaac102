// SPDX-License-Identifier: MPL-2.0

// Command shipctl deploys named targets to named environments over SSH.
package main

import cmd "shipctl/cmd/shipctl"

func main() {
	cmd.Execute()
}
