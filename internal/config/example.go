package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// ExampleYAML 根据配置结构体的 json 与 desc 标签生成带注释的 YAML 示例。
//
//	# 服务端配置
//	server:
//	  addr: ':40117' # 服务器监听地址
func ExampleYAML(cfg Config) []byte {
	var buf strings.Builder
	buf.WriteString("# 配置示例文件, 复制此文件为 .formati.yaml 并根据需要修改\n")
	writeYAML(&buf, reflect.ValueOf(cfg), 0)

	return []byte(buf.String())
}

func writeYAML(buf *strings.Builder, val reflect.Value, depth int) {
	typ := val.Type()
	indent := strings.Repeat("  ", depth)

	for i := range typ.NumField() {
		field := typ.Field(i)
		key := configTagName(field)
		if key == "" || !field.IsExported() {
			continue
		}
		desc := field.Tag.Get("desc")

		if isStructType(field.Type) {
			buf.WriteString("\n")
			if desc != "" {
				fmt.Fprintf(buf, "%s# %s\n", indent, desc)
			}
			fmt.Fprintf(buf, "%s%s:\n", indent, key)
			writeYAML(buf, val.Field(i), depth+1)
			continue
		}

		fmt.Fprintf(buf, "%s%s: %s", indent, key, yamlScalar(val.Field(i)))
		if desc != "" {
			fmt.Fprintf(buf, " # %s", desc)
		}
		buf.WriteString("\n")
	}
}

func yamlScalar(v reflect.Value) string {
	if v.Type() == durationType {
		return v.Interface().(time.Duration).String()
	}
	if v.Kind() == reflect.String {
		return "'" + strings.ReplaceAll(v.String(), "'", "''") + "'"
	}

	return fmt.Sprint(v.Interface())
}
