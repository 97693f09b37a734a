// Command scribe validates, compiles and stores event histories.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/scribe/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "scribe:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
