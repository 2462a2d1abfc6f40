// Command enumex compiles, inspects and exercises extensible enumeration
// types declared in CUE.
package main

import (
	"fmt"
	"os"

	"github.com/AddioElectronics/enumex/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
