// autonestcut nests rectangular sheet-goods parts onto stock boards and
// writes cut lists, diagrams and cost reports.
//
// Build:
//
//	go build -o autonestcut ./cmd/autonestcut
package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/mattn/go-isatty"

	"github.com/piwi3910/AutoNestCut/internal/cli"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	app := &cli.App{
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
		},
	}

	if err := cli.NewRootCmd(app).Execute(); err != nil {
		os.Exit(1)
	}
}
