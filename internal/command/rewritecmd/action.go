package rewritecmd

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/nobane/formati/internal/api"
	"github.com/nobane/formati/internal/command"
	"github.com/nobane/formati/pkg/rewrite"
)

func action(_ context.Context, cmd *cli.Command) error {
	cfg, err := command.Load(cmd)
	if err != nil {
		return err
	}

	tmpl, _, err := command.RequireTemplate(cmd)
	if err != nil {
		return err
	}
	plan, err := rewrite.Analyze(tmpl)
	if err != nil {
		return err
	}

	offset := plan.Positional
	if cmd.IsSet("explicit") {
		offset = cmd.Int("explicit")
		if offset < 0 {
			return fmt.Errorf("--explicit must be >= 0, got %d", offset)
		}
	}

	res := api.RewriteResponse{Template: plan.Rewrite(offset), Expressions: plan.Expressions, Offset: offset}

	return command.Write(command.Stdout(cmd), cfg.Output.Format, res, func(w io.Writer) error {
		return command.WriteRewrite(w, res)
	})
}
