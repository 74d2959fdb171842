package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/nobane/formati/internal/command"
	"github.com/nobane/formati/internal/command/check"
	"github.com/nobane/formati/internal/command/client"
	"github.com/nobane/formati/internal/command/configcmd"
	"github.com/nobane/formati/internal/command/render"
	"github.com/nobane/formati/internal/command/rewritecmd"
	"github.com/nobane/formati/internal/command/server"
	"github.com/nobane/formati/internal/version"
)

func main() {
	app := &cli.Command{
		Name:    version.AppRawName,
		Usage:   "复合占位符模板改写与渲染工具",
		Version: version.GetVersion(),
		Flags:   command.GlobalFlags,
		Commands: []*cli.Command{
			version.Command,
			rewritecmd.Command,
			render.Command,
			check.Command,
			configcmd.Command,
			client.Command,
			server.Command,
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
