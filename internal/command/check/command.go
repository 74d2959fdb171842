// Package check 提供 check 命令：校验模板文件中的每一行。
package check

import (
	"github.com/urfave/cli/v3"
)

// Command check 命令
var Command = &cli.Command{
	Name:      "check",
	Usage:     "校验模板；每个非空且不以 # 开头的行是一个模板，未指定文件时读取标准输入",
	ArgsUsage: "[FILE...]",
	Action:    action,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "只输出错误",
		},
	},
}
