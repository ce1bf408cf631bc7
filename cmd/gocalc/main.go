// Command gocalc parses, simplifies, differentiates and integrates
// single-variable expressions.
//
// Usage:
//
//	gocalc eval "x*e^x"
//	gocalc batch jobs.yaml --format json
//	gocalc repl
//	gocalc serve --addr :8080
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/njchilds90/gocalc/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
