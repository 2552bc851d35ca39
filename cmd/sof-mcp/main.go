// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/sofproj/sof-mcp/cmd/sof-mcp/commands"
	"github.com/sofproj/sof-mcp/internal/errors"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
