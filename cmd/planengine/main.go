// Command planengine is the CLI entry point: validate, solve, routes,
// history, and serve subcommands over a production-distribution planning
// instance.
package main

import (
	"fmt"
	"os"

	"github.com/planengine/planengine/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
