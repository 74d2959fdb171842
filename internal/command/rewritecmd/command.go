// Package rewritecmd 提供 rewrite 命令：打印模板的改写结果与表达式列表。
package rewritecmd

import (
	"github.com/urfave/cli/v3"

	"github.com/nobane/formati/internal/command"
)

// Command rewrite 命令
var Command = &cli.Command{
	Name:      "rewrite",
	Usage:     "改写模板，输出位置下标模板与表达式列表",
	ArgsUsage: "TEMPLATE",
	Action:    action,
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "explicit",
			Aliases: []string{"e"},
			Usage:   "显式位置参数个数，提取的下标从该值开始；默认为模板自身引用的位置参数个数",
		},
		&cli.StringFlag{
			Name:    "output-format",
			Aliases: []string{"o"},
			Value:   command.Defaults.Output.Format,
			Usage:   "输出格式: text, json, yaml",
		},
	},
}
