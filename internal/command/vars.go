package command

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	yamlv3 "go.yaml.in/yaml/v3"

	"github.com/nobane/formati/internal/config"
	"github.com/nobane/formati/pkg/formati"
)

// VarsFlags 定义模板变量来源。
var VarsFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "vars",
		Usage: "变量文件 (YAML 或 JSON)",
	},
	&cli.StringSliceFlag{
		Name:    "set",
		Aliases: []string{"s"},
		Usage:   "设置变量 key=value，key 可用点号表示嵌套 (如 user.name=ann)，可重复",
	},
}

// ParseVars 合并 --vars 文件与 --set 赋值，--set 优先。
func ParseVars(cmd *cli.Command) (formati.Vars, error) {
	vars := formati.Vars{}

	if path := cmd.String("vars"); path != "" {
		content, err := os.ReadFile(path) //nolint:gosec // user supplied path
		if err != nil {
			return nil, fmt.Errorf("read vars file: %w", err)
		}
		m, err := config.ParseBytes(path, content)
		if err != nil {
			return nil, fmt.Errorf("parse vars file %s: %w", path, err)
		}
		for k, v := range m {
			vars[k] = v
		}
	}

	for _, assignment := range cmd.StringSlice("set") {
		if err := SetVar(vars, assignment); err != nil {
			return nil, err
		}
	}

	return vars, nil
}

// SetVar 解析 "key=value" 并写入 vars。
//
// value 按 YAML 标量解析，因此 "n=3" 得到整数，"ok=true" 得到布尔值，
// 需要字符串时加引号："id='007'"。
func SetVar(vars formati.Vars, assignment string) error {
	key, raw, ok := strings.Cut(assignment, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("invalid --set %q: want key=value", assignment)
	}

	var value any = raw
	var decoded any
	if err := yamlv3.Unmarshal([]byte(raw), &decoded); err == nil && decoded != nil {
		switch decoded.(type) {
		case map[string]any, []any:
			// 保留原始字符串，避免 "a: b" 之类的值被解析成对象
		default:
			value = decoded
		}
	}

	parts := strings.Split(key, ".")
	current := map[string]any(vars)
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value

	return nil
}
