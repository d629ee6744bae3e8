// flowdesk - slash-command workbench for the process flow designer.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"os"

	"github.com/morganforge/flowdesk/internal/cli"
)

func main() {
	args := cli.ParseArgs(os.Args[1:])
	os.Exit(cli.Run(args))
}
