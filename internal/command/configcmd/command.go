// Package configcmd 提供 config 命令。
package configcmd

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/nobane/formati/internal/command"
	"github.com/nobane/formati/internal/config"
)

// Command config 命令
var Command = &cli.Command{
	Name:  "config",
	Usage: "配置文件工具",
	Commands: []*cli.Command{
		{
			Name:   "example",
			Usage:  "输出带注释的配置示例",
			Action: exampleAction,
		},
	},
}

func exampleAction(_ context.Context, cmd *cli.Command) error {
	_, err := command.Stdout(cmd).Write(config.ExampleYAML(command.Defaults))

	return err
}
