package main

import (
	"os"

	"github.com/ozacod/cforge/internal/app/cli"
)

// Errors are reported by each command's RunE through cli.Fail before
// they reach here; main only needs to translate the result into an
// exit code (spec §6: 0 success, 1 user-visible failure, 2 usage error).
func main() {
	err := cli.NewRootCmd().Execute()
	os.Exit(cli.ExitCodeFor(err))
}
