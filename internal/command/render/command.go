// Package render 提供 render 命令：用变量渲染模板。
package render

import (
	"github.com/urfave/cli/v3"

	"github.com/nobane/formati/internal/command"
)

// Command render 命令
var Command = &cli.Command{
	Name:      "render",
	Usage:     "渲染模板，ARG 作为显式位置参数",
	ArgsUsage: "TEMPLATE [ARG...]",
	Action:    action,
	Flags: append([]cli.Flag{
		&cli.BoolFlag{
			Name:  "format-strict",
			Value: command.Defaults.Format.Strict,
			Usage: "未知名称报错；关闭时保留占位符原文",
		},
		&cli.BoolFlag{
			Name:    "no-newline",
			Aliases: []string{"n"},
			Usage:   "不输出末尾换行",
		},
	}, command.VarsFlags...),
}
