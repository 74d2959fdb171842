package render

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/nobane/formati/internal/command"
)

func action(_ context.Context, cmd *cli.Command) error {
	cfg, err := command.Load(cmd)
	if err != nil {
		return err
	}

	tmpl, rest, err := command.RequireTemplate(cmd)
	if err != nil {
		return err
	}
	vars, err := command.ParseVars(cmd)
	if err != nil {
		return err
	}

	args := make([]any, len(rest))
	for i, a := range rest {
		args[i] = a
	}

	out, err := command.NewFormatter(cfg, nil).Format(vars, tmpl, args...)
	if err != nil {
		return err
	}
	if !cmd.Bool("no-newline") {
		out += "\n"
	}
	_, err = fmt.Fprint(command.Stdout(cmd), out)

	return err
}
