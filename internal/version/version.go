// Package version 保存构建信息，由 -ldflags 注入：
//
//	go build -ldflags "-X github.com/nobane/formati/internal/version.Version=v1.2.0"
package version

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/urfave/cli/v3"
)

// AppRawName 应用名称。
const AppRawName = "formati"

// 构建信息。
var (
	Version   = ""
	Commit    = ""
	BuildTime = ""
)

// GetVersion 返回版本号；未注入时尝试读取模块版本。
func GetVersion() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}

	return "dev"
}

// Command 打印版本信息。
var Command = &cli.Command{
	Name:  "version",
	Usage: "显示版本信息",
	Action: func(_ context.Context, cmd *cli.Command) error {
		w := cmd.Root().Writer
		if w == nil {
			w = os.Stdout
		}
		_, err := fmt.Fprintf(w, "%s %s (commit %s, built %s, %s)\n",
			AppRawName, GetVersion(), orUnknown(Commit), orUnknown(BuildTime), runtime.Version())

		return err
	},
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}

	return s
}
