// Package server 提供模板改写与渲染的 HTTP 服务命令。
package server

import (
	"github.com/urfave/cli/v3"

	"github.com/nobane/formati/internal/command"
	"github.com/nobane/formati/internal/version"
)

// Command 服务器命令
var Command = &cli.Command{
	Name:     "server",
	Usage:    "启动 HTTP 服务器",
	Action:   action,
	Commands: []*cli.Command{version.Command},
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "server-addr",
			Aliases: []string{"a"},
			Value:   command.Defaults.Server.Addr,
			Usage:   "服务器监听地址",
		},
		&cli.DurationFlag{
			Name:  "server-timeout",
			Value: command.Defaults.Server.Timeout,
			Usage: "HTTP 读写超时",
		},
		&cli.DurationFlag{
			Name:  "server-idletime",
			Value: command.Defaults.Server.Idletime,
			Usage: "HTTP 空闲超时",
		},
		&cli.Int64Flag{
			Name:  "server-max-body",
			Value: command.Defaults.Server.MaxBody,
			Usage: "请求体最大字节数",
		},
		&cli.BoolFlag{
			Name:  "format-strict",
			Value: command.Defaults.Format.Strict,
			Usage: "未知命名参数视为错误",
		},
		&cli.BoolFlag{
			Name:  "format-cache",
			Value: command.Defaults.Format.Cache,
			Usage: "缓存模板分析结果",
		},
	},
}
