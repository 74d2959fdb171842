// Package config 提供应用配置管理。
//
// 配置加载优先级 (从低到高)：
//  1. 默认值 - DefaultConfig() 函数中定义
//  2. 配置文件 - 见 DefaultPaths，或 --config 指定
//  3. 环境变量 - FORMATI_ 前缀，如 FORMATI_SERVER_ADDR
//  4. CLI flags - 仅显式设置的 flag，如 --server-addr
package config

import (
	"time"
)

// Config 应用配置。
type Config struct {
	Format FormatConfig `json:"format" desc:"模板格式化配置"`
	Output OutputConfig `json:"output" desc:"命令输出配置"`
	Server ServerConfig `json:"server" desc:"服务端配置"`
	Client ClientConfig `json:"client" desc:"客户端配置"`
	Log    LogConfig    `json:"log" desc:"日志配置"`
}

// FormatConfig 模板格式化配置。
type FormatConfig struct {
	Strict bool `json:"strict" desc:"未知名称报错；关闭时保留占位符原文"`
	Cache  bool `json:"cache" desc:"缓存模板分析结果"`
}

// OutputConfig 命令输出配置。
type OutputConfig struct {
	Format string `json:"format" desc:"输出格式: text, json, yaml"`
}

// ServerConfig 服务端配置。
type ServerConfig struct {
	Addr     string        `json:"addr" desc:"服务器监听地址"`
	Timeout  time.Duration `json:"timeout" desc:"HTTP 读写超时"`
	Idletime time.Duration `json:"idletime" desc:"HTTP 空闲超时"`
	MaxBody  int64         `json:"max-body" desc:"请求体大小上限（字节）"`
}

// ClientConfig 客户端配置。
type ClientConfig struct {
	URL     string        `json:"url" desc:"服务器地址"`
	Timeout time.Duration `json:"timeout" desc:"请求超时时间"`
	Retries int           `json:"retries" desc:"重试次数"`
}

// LogConfig 日志配置。
type LogConfig struct {
	Level  string `json:"level" desc:"日志级别: debug, info, warn, error"`
	Format string `json:"format" desc:"日志格式: text, json"`
}

// DefaultConfig 返回默认配置。
// 注意：internal/command/command.go 中的 Defaults 变量引用此函数以实现单一配置来源。
func DefaultConfig() Config {
	return Config{
		Format: FormatConfig{
			Strict: true,
			Cache:  true,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Server: ServerConfig{
			Addr:     ":40117",
			Timeout:  15 * time.Second,
			Idletime: 60 * time.Second,
			MaxBody:  1 << 20,
		},
		Client: ClientConfig{
			URL:     "http://localhost:40117",
			Timeout: 30 * time.Second,
			Retries: 3,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
