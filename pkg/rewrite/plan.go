package rewrite

import (
	"fmt"
	"strconv"
	"strings"
)

// Plan 是一次分析的结果：改写后的模板与按序去重的表达式列表。
type Plan struct {
	// Source 原始模板。
	Source string
	// Template 改写后的模板，等价于 Rewrite(Positional)。
	Template string
	// Expressions 被提取的表达式，下标 i 对应 Rewrite(offset) 中的 {offset+i}。
	Expressions []string
	// Positional 模板自身需要的位置参数个数：隐式 "{}" 与 ".*" 的个数，
	// 与 "{N}"、"N$" 最大下标加一中的较大值。
	Positional int

	segments []Segment
	slots    map[int]int // 片段序号 → 表达式下标
}

// Analyze 扫描模板，提取复合表达式并生成 [Plan]。
//
// 简单占位符（空、数字、单个标识符）保持原样；
// 复合占位符的表达式部分替换为注册表下标，说明符原样保留。
// 模板花括号不平衡时返回 [MalformedTemplateError]，不产生部分结果。
func Analyze(template string) (*Plan, error) {
	segments, err := Scan(template)
	if err != nil {
		return nil, err
	}

	reg := NewRegistry()
	plan := &Plan{
		Source:   template,
		segments: segments,
		slots:    make(map[int]int),
	}
	var n numberer
	for i, seg := range segments {
		if seg.Kind != SegmentPlaceholder {
			continue
		}
		ph := ParsePlaceholder(seg.Inner)
		if ph.Simple() {
			n.rewrite(seg, "")
			continue
		}
		idx := reg.Register(ph.Expr)
		plan.slots[i] = idx
		n.rewrite(seg, strconv.Itoa(idx))
	}

	plan.Expressions = reg.Expressions()
	plan.Positional = n.positional()
	plan.Template = plan.Rewrite(plan.Positional)

	return plan, nil
}

// MustAnalyze 调用 [Analyze] 并在失败时 panic，适合包级变量初始化。
func MustAnalyze(template string) *Plan {
	plan, err := Analyze(template)
	if err != nil {
		panic(fmt.Sprintf("rewrite: failed to analyze template: %v", err))
	}

	return plan
}

// Rewrite 分析模板并直接返回改写结果与表达式列表。
func Rewrite(template string) (string, []string, error) {
	plan, err := Analyze(template)
	if err != nil {
		return "", nil, err
	}

	return plan.Template, plan.Expressions, nil
}

// Rewrite 重新生成模板，所有提取下标加上 offset。
//
// 调用方已有 offset 个显式位置参数时，提取的表达式追加在它们之后，
// 显式参数保持原来的下标。隐式引用 "{}" 与 ".*" 按引擎消耗的顺序
// 改写为 "{k}" 与 ".k$"，避免与追加的表达式下标混淆。
// 模板中没有复合表达式时原样返回。
func (p *Plan) Rewrite(offset int) string {
	if len(p.slots) == 0 {
		return p.Source
	}

	var n numberer
	var buf strings.Builder
	buf.Grow(len(p.Source) + 4*len(p.slots))
	for i, seg := range p.segments {
		if seg.Kind != SegmentPlaceholder {
			buf.WriteString(seg.Text)
			continue
		}
		head := ""
		if idx, ok := p.slots[i]; ok {
			head = strconv.Itoa(idx + offset)
		}
		buf.WriteString(n.rewrite(seg, head))
	}

	return buf.String()
}

// numberer 为隐式引用分配显式下标，并记录显式引用的最大下标。
type numberer struct {
	next int // 下一个隐式下标
	refs int // 显式引用的最大下标加一
}

func (n *numberer) positional() int {
	return max(n.next, n.refs)
}

func (n *numberer) take() string {
	s := strconv.Itoa(n.next)
	n.next++

	return s
}

// rewrite 返回改写后的占位符。head 非空时替换表达式部分；
// 既未替换也未引用隐式参数时返回原文。
func (n *numberer) rewrite(seg Segment, head string) string {
	before := n.next
	inner := n.placeholder(ParsePlaceholder(seg.Inner), head)
	if head == "" && n.next == before {
		return seg.Text
	}

	return "{" + inner + "}"
}

// placeholder 的消耗顺序与格式化引擎一致：
// 说明符无嵌套时先取 ".*" 精度再取值；有嵌套时先取值，再展开说明符。
func (n *numberer) placeholder(ph Placeholder, head string) string {
	spec := ph.Spec
	nested := strings.ContainsRune(spec, '{')
	if !nested {
		spec = n.precision(spec)
	}

	switch {
	case head != "":
	case ph.Expr == "":
		head = n.take()
	default:
		head = ph.Expr
		if isDecimal(head) {
			n.ref(head)
		}
	}

	if nested {
		spec = n.precision(n.nested(spec))
	}
	n.countRefs(spec)

	return head + spec
}

func (n *numberer) precision(spec string) string {
	i := strings.Index(spec, ".*")
	if i < 0 {
		return spec
	}

	return spec[:i] + "." + n.take() + "$" + spec[i+2:]
}

func (n *numberer) nested(spec string) string {
	segments, err := Scan(spec)
	if err != nil {
		return spec
	}

	var buf strings.Builder
	for _, seg := range segments {
		if seg.Kind != SegmentPlaceholder {
			buf.WriteString(seg.Text)
			continue
		}
		buf.WriteString(n.rewrite(seg, ""))
	}

	return buf.String()
}

func (n *numberer) ref(digits string) {
	if v, err := strconv.Atoi(digits); err == nil {
		n.refs = max(n.refs, v+1)
	}
}

// countRefs 记录说明符中 "N$" 形式的宽度或精度引用。
func (n *numberer) countRefs(spec string) {
	for i := 0; i < len(spec); i++ {
		if !isDigitByte(spec[i]) || i > 0 && (isDigitByte(spec[i-1]) || isIdentByte(spec[i-1])) {
			continue
		}
		j := i
		for j < len(spec) && isDigitByte(spec[j]) {
			j++
		}
		if j < len(spec) && spec[j] == '$' {
			n.ref(spec[i:j])
		}
		i = j
	}
}

func isDigitByte(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentByte(ch byte) bool {
	return ch == '_' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= 0x80
}

// Compound 报告模板中是否存在需要提取的表达式。
func (p *Plan) Compound() bool {
	return len(p.Expressions) > 0
}
