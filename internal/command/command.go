// Package command 提供各子命令共享的配置、日志与输出功能。
package command

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	yamlv3 "go.yaml.in/yaml/v3"

	"github.com/nobane/formati/internal/api"
	"github.com/nobane/formati/internal/config"
	"github.com/nobane/formati/pkg/formati"
	"github.com/nobane/formati/pkg/rewrite"
)

// Defaults 为默认配置的单一来源。
var Defaults = config.DefaultConfig()

// GlobalFlags 挂载在根命令上，对所有子命令可见。
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "配置文件路径（默认按 .formati.yaml, ~/.formati.yaml, /etc/formati/config.yaml, config.yaml 查找）",
	},
	&cli.StringFlag{
		Name:  "log-level",
		Value: Defaults.Log.Level,
		Usage: "日志级别: debug, info, warn, error",
	},
	&cli.StringFlag{
		Name:  "log-format",
		Value: Defaults.Log.Format,
		Usage: "日志格式: text, json",
	},
}

// Load 加载配置并据此设置默认 logger。
func Load(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd)
	if err != nil {
		return nil, err
	}
	if err := SetupLogging(cfg.Log, os.Stderr); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SetupLogging 根据日志配置设置 slog 默认 logger。
func SetupLogging(cfg config.LogConfig, w io.Writer) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return fmt.Errorf("invalid log format %q", cfg.Format)
	}
	slog.SetDefault(slog.New(handler))

	return nil
}

// NewFormatter 按配置创建 Formatter；cache 为 nil 且配置启用缓存时新建一个。
func NewFormatter(cfg *config.Config, cache *rewrite.Cache) *formati.Formatter {
	opts := []formati.Option{
		formati.WithStrict(cfg.Format.Strict),
		formati.WithLogger(slog.Default()),
	}
	if cfg.Format.Cache {
		if cache == nil {
			cache = rewrite.NewCache()
		}
		opts = append(opts, formati.WithCache(cache))
	}

	return formati.New(opts...)
}

// Stdout 返回根命令的输出，未设置时为 os.Stdout。
func Stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}

	return os.Stdout
}

// Stdin 返回根命令的输入，未设置时为 os.Stdin。
func Stdin(cmd *cli.Command) io.Reader {
	if r := cmd.Root().Reader; r != nil {
		return r
	}

	return os.Stdin
}

// Write 按 format 输出 v；text 格式调用 text 回调。
func Write(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch strings.ToLower(format) {
	case "", "text":
		return text(w)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yamlv3.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q (want text, json or yaml)", format)
	}
}

// RequireTemplate 返回第一个位置参数作为模板。
func RequireTemplate(cmd *cli.Command) (string, []string, error) {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return "", nil, fmt.Errorf("%s: missing TEMPLATE argument", cmd.Name)
	}

	return args[0], args[1:], nil
}

// WriteRewrite 以文本形式输出改写结果：首行为模板，其后每行一个下标与表达式。
func WriteRewrite(w io.Writer, res api.RewriteResponse) error {
	if _, err := fmt.Fprintln(w, res.Template); err != nil {
		return err
	}
	for i, expr := range res.Expressions {
		if _, err := fmt.Fprintf(w, "{%d}\t%s\n", i+res.Offset, expr); err != nil {
			return err
		}
	}

	return nil
}
