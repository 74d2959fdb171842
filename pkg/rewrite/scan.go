package rewrite

import (
	"errors"
	"fmt"
)

// ErrMalformedTemplate 是所有花括号不平衡错误的哨兵值，可配合 errors.Is 使用。
var ErrMalformedTemplate = errors.New("malformed template")

// MalformedTemplateError 描述模板中未闭合的 "{" 或孤立的 "}"。
type MalformedTemplateError struct {
	Template string // 原始模板
	Offset   int    // 出错位置（字节偏移）
	Reason   string
}

func (e *MalformedTemplateError) Error() string {
	return fmt.Sprintf("rewrite: %s at offset %d in %q", e.Reason, e.Offset, e.Template)
}

func (e *MalformedTemplateError) Unwrap() error {
	return ErrMalformedTemplate
}

// SegmentKind 区分字面量片段与占位符片段。
type SegmentKind int

const (
	// SegmentLiteral 普通文本，"{{" 与 "}}" 原样保留在 Text 中。
	SegmentLiteral SegmentKind = iota
	// SegmentPlaceholder 由未转义的 "{" ... "}" 包围的区域。
	SegmentPlaceholder
)

func (k SegmentKind) String() string {
	if k == SegmentPlaceholder {
		return "placeholder"
	}

	return "literal"
}

// Segment 是模板中的一段连续区间 [Start, End)。
//
// 占位符片段的 Text 包含两侧花括号，Inner 为花括号内部文本。
type Segment struct {
	Kind  SegmentKind
	Start int
	End   int
	Text  string
	Inner string
}

// Scan 将模板切分为字面量与占位符片段。
//
// 规则：
//   - "{{" 与 "}}" 为转义序列，归入字面量片段
//   - 未转义的 "{" 开启占位符，使用深度计数匹配对应的 "}"
//   - 说明符中允许嵌套 "{}"（如 "{value:>{width}}"）
//
// 未闭合的 "{" 或孤立的 "}" 返回 [MalformedTemplateError]。
func Scan(template string) ([]Segment, error) {
	var segments []Segment
	litStart := 0

	flush := func(end int) {
		if end > litStart {
			segments = append(segments, Segment{
				Kind:  SegmentLiteral,
				Start: litStart,
				End:   end,
				Text:  template[litStart:end],
			})
		}
	}

	for i := 0; i < len(template); {
		switch template[i] {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				i += 2
				continue
			}

			end := findClosingBrace(template, i+1)
			if end == -1 {
				return nil, &MalformedTemplateError{
					Template: template,
					Offset:   i,
					Reason:   "unmatched '{'",
				}
			}

			flush(i)
			segments = append(segments, Segment{
				Kind:  SegmentPlaceholder,
				Start: i,
				End:   end + 1,
				Text:  template[i : end+1],
				Inner: template[i+1 : end],
			})
			i = end + 1
			litStart = i
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				i += 2
				continue
			}

			return nil, &MalformedTemplateError{
				Template: template,
				Offset:   i,
				Reason:   "unmatched '}'",
			}
		default:
			i++
		}
	}
	flush(len(template))

	return segments, nil
}

// findClosingBrace 从 start 开始查找与已打开的 "{" 匹配的 "}"，找不到返回 -1。
func findClosingBrace(text string, start int) int {
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i
			}
			depth--
		}
	}

	return -1
}
