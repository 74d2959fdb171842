// Package client 提供访问 formati HTTP 服务的客户端命令。
package client

import (
	"github.com/urfave/cli/v3"

	"github.com/nobane/formati/internal/command"
	"github.com/nobane/formati/internal/version"
)

var outputFlag = &cli.StringFlag{
	Name:    "output-format",
	Aliases: []string{"o"},
	Value:   command.Defaults.Output.Format,
	Usage:   "输出格式: text, json, yaml",
}

// Command 客户端命令
var Command = &cli.Command{
	Name:  "client",
	Usage: "HTTP 客户端工具",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "client-url",
			Aliases: []string{"u"},
			Value:   command.Defaults.Client.URL,
			Usage:   "服务器地址",
		},
		&cli.DurationFlag{
			Name:  "client-timeout",
			Value: command.Defaults.Client.Timeout,
			Usage: "请求超时时间",
		},
		&cli.IntFlag{
			Name:  "client-retries",
			Value: command.Defaults.Client.Retries,
			Usage: "重试次数",
		},
	},
	Commands: []*cli.Command{
		version.Command,
		{
			Name:   "health",
			Usage:  "检查服务器健康状态",
			Action: healthAction,
		},
		{
			Name:      "rewrite",
			Usage:     "由服务器改写模板",
			ArgsUsage: "TEMPLATE",
			Action:    rewriteAction,
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "explicit",
					Aliases: []string{"e"},
					Usage:   "显式位置参数个数，提取的下标从该值开始；默认为模板自身引用的位置参数个数",
				},
				outputFlag,
			},
		},
		{
			Name:      "render",
			Usage:     "由服务器渲染模板，ARG 作为显式位置参数",
			ArgsUsage: "TEMPLATE [ARG...]",
			Action:    renderAction,
			Flags: append([]cli.Flag{
				&cli.BoolFlag{
					Name:    "no-newline",
					Aliases: []string{"n"},
					Usage:   "不输出末尾换行",
				},
			}, command.VarsFlags...),
		},
	},
}
