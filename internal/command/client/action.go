package client

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/nobane/formati/internal/api"
	"github.com/nobane/formati/internal/command"
	"github.com/nobane/formati/internal/config"
)

func newClient(cfg *config.Config) *Client {
	return New(cfg.Client.URL, cfg.Client.Timeout, cfg.Client.Retries)
}

func healthAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := command.Load(cmd)
	if err != nil {
		return err
	}

	resp, err := newClient(cfg).Health(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	_, err = fmt.Fprintf(command.Stdout(cmd), "%s: %s\n", cfg.Client.URL, resp.Status)

	return err
}

func rewriteAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := command.Load(cmd)
	if err != nil {
		return err
	}

	tmpl, _, err := command.RequireTemplate(cmd)
	if err != nil {
		return err
	}
	req := api.RewriteRequest{Template: tmpl}
	if cmd.IsSet("explicit") {
		explicit := cmd.Int("explicit")
		req.Explicit = &explicit
	}

	resp, err := newClient(cfg).Rewrite(ctx, req)
	if err != nil {
		return err
	}

	return command.Write(command.Stdout(cmd), cfg.Output.Format, resp, func(w io.Writer) error {
		return command.WriteRewrite(w, *resp)
	})
}

func renderAction(ctx context.Context, cmd *cli.Command) error {
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

	resp, err := newClient(cfg).Render(ctx, api.RenderRequest{Template: tmpl, Vars: vars, Args: args})
	if err != nil {
		return err
	}

	out := resp.Output
	if !cmd.Bool("no-newline") {
		out += "\n"
	}
	_, err = fmt.Fprint(command.Stdout(cmd), out)

	return err
}
