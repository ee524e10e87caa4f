// Command cnabctl renders remessa files, decodes retorno files and issues
// API tokens from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/boddenberg/pj-cnab-bfa-go/internal/config"
)

func main() {
	_ = config.LoadDotEnv(".env")

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "cnabctl:", err)
		os.Exit(1)
	}
}
