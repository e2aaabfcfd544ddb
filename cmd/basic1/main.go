// Command basic1 runs a line-numbered BASIC program through the
// interpreter package, matching the teacher's cmd/dwscript entrypoint
// pattern of a thin main delegating to a cobra command tree.
package main

import (
	"fmt"
	"os"

	"github.com/basic-1/b1core/cmd/basic1/cmd"
	"github.com/basic-1/b1core/internal/berr"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		code := 1
		if be, ok := err.(*berr.Error); ok {
			code = be.Kind.ExitCode()
		}
		os.Exit(code)
	}
}
