package rewrite

import "strings"

// Registry 按首次出现顺序为表达式文本分配从 0 开始的下标。
//
// 去重以文本为准：只去除首尾空白，内部空白保持不变，
// 因此 "a .b" 与 "a. b" 是两个不同的键。
// Registry 仅在一次改写内使用，不跨调用共享。
type Registry struct {
	index map[string]int
	exprs []string
}

// NewRegistry 创建空注册表。
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register 返回表达式的下标，首次出现时追加。
func (r *Registry) Register(expr string) int {
	expr = strings.TrimSpace(expr)
	if idx, ok := r.index[expr]; ok {
		return idx
	}

	idx := len(r.exprs)
	r.index[expr] = idx
	r.exprs = append(r.exprs, expr)

	return idx
}

// Len 返回已注册的表达式数量。
func (r *Registry) Len() int {
	return len(r.exprs)
}

// Expressions 按首次出现顺序返回表达式列表（副本）。
func (r *Registry) Expressions() []string {
	out := make([]string, len(r.exprs))
	copy(out, r.exprs)

	return out
}
