package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
)

// AppName 用于生成默认配置路径。
const AppName = "formati"

// EnvPrefix 环境变量前缀。
const EnvPrefix = "FORMATI_"

// DefaultPaths 返回默认配置文件的搜索顺序，先命中的文件生效。
//
//  1. ./.formati.yaml - 当前目录
//  2. ~/.formati.yaml - 用户主目录
//  3. /etc/formati/config.yaml - 系统级配置
//  4. config.yaml - 当前目录通用配置
func DefaultPaths() []string {
	paths := []string{"." + AppName + ".yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "."+AppName+".yaml"))
	}
	paths = append(paths, "/etc/"+AppName+"/config.yaml", "config.yaml")

	return paths
}

// Load 读取配置并按优先级合并。
//
// cmd 可为 nil；非 nil 时其显式设置的 flag 覆盖其他来源，
// 且 --config 指定的文件替代默认搜索路径。
// paths 非空时替代默认搜索路径。
func Load(cmd *cli.Command, paths ...string) (*Config, error) {
	defaults := DefaultConfig()
	configMap := structToMap(defaults)

	if cmd != nil && cmd.IsSet("config") {
		paths = []string{cmd.String("config")}
	}
	explicit := len(paths) > 0
	if !explicit {
		paths = DefaultPaths()
	}

	loaded := false
	for _, path := range paths {
		content, err := os.ReadFile(path) //nolint:gosec // path is from trusted config
		if err != nil {
			if explicit && !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file %s: %w", path, err)
			}
			continue
		}

		expanded, err := ExpandEnv(string(content))
		if err != nil {
			return nil, fmt.Errorf("expand env in %s: %w", path, err)
		}

		fileMap, err := parseConfigBytes(path, []byte(expanded))
		if err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
		mergeMaps(configMap, fileMap)

		slog.Debug("Loaded config from file", "path", path)
		loaded = true

		break
	}
	if !loaded {
		if explicit && cmd != nil && cmd.IsSet("config") {
			return nil, fmt.Errorf("config file %s not found", paths[0])
		}
		slog.Debug("No config file found, using defaults")
	}

	keys := collectConfigKeys(reflect.TypeOf(defaults), "")
	for envKey, configPath := range envBindings(EnvPrefix, keys) {
		if val := os.Getenv(envKey); val != "" {
			setByPath(configMap, configPath, val)
			slog.Debug("Loaded env binding", "env", envKey, "path", configPath)
		}
	}

	if cmd != nil {
		applyFlags(cmd, configMap, keys)
	}

	var cfg Config
	if err := decodeConfigMap(configMap, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// MustLoad 调用 [Load] 并在失败时 panic，适合启动阶段。
func MustLoad(cmd *cli.Command, paths ...string) *Config {
	cfg, err := Load(cmd, paths...)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load config: %v", err))
	}

	return cfg
}

// configKey 是叶子配置项的路径与类型。
type configKey struct {
	path string
	typ  reflect.Type
}

// collectConfigKeys 按 json tag 收集叶子路径（如 server.max-body）。
func collectConfigKeys(typ reflect.Type, prefix string) []configKey {
	var keys []configKey
	for i := range typ.NumField() {
		field := typ.Field(i)
		key := configTagName(field)
		if key == "" {
			continue
		}

		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if isStructType(field.Type) {
			keys = append(keys, collectConfigKeys(field.Type, fullKey)...)
			continue
		}

		keys = append(keys, configKey{path: fullKey, typ: field.Type})
	}

	return keys
}

// envBindings 生成环境变量到配置路径的映射。
//
//   - server.addr → FORMATI_SERVER_ADDR
//   - server.max-body → FORMATI_SERVER_MAX_BODY
func envBindings(prefix string, keys []configKey) map[string]string {
	replacer := strings.NewReplacer(".", "_", "-", "_")
	bindings := make(map[string]string, len(keys))
	for _, k := range keys {
		bindings[prefix+strings.ToUpper(replacer.Replace(k.path))] = k.path
	}

	return bindings
}

// applyFlags 将显式设置的 flag 写入配置 map。
//
// flag 名称由配置路径将 "." 替换为 "-" 得到：server.addr → --server-addr。
func applyFlags(cmd *cli.Command, configMap map[string]any, keys []configKey) {
	for _, k := range keys {
		name := strings.ReplaceAll(k.path, ".", "-")
		if !hasFlag(cmd, name) || !cmd.IsSet(name) {
			continue
		}

		switch {
		case k.typ == durationType:
			setByPath(configMap, k.path, cmd.Duration(name))
		case k.typ.Kind() == reflect.String:
			setByPath(configMap, k.path, cmd.String(name))
		case k.typ.Kind() == reflect.Bool:
			setByPath(configMap, k.path, cmd.Bool(name))
		case k.typ.Kind() == reflect.Int:
			setByPath(configMap, k.path, cmd.Int(name))
		case k.typ.Kind() == reflect.Int64:
			setByPath(configMap, k.path, cmd.Int64(name))
		default:
		}
	}
}

// hasFlag 报告 cmd 或其祖先是否定义了 name。
func hasFlag(cmd *cli.Command, name string) bool {
	for _, c := range cmd.Lineage() {
		for _, f := range c.Flags {
			for _, n := range f.Names() {
				if n == name {
					return true
				}
			}
		}
	}

	return false
}

var durationType = reflect.TypeFor[time.Duration]()
