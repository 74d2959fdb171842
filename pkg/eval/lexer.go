package eval

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokFloat
	tokString
	tokPunct // . , ( ) [ ] - * & !
	tokOp    // 二元运算符等不支持的符号
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of expression"
	case tokIdent:
		return "identifier"
	case tokInt, tokFloat:
		return "number"
	case tokString:
		return "string"
	case tokPunct:
		return "punctuation"
	default:
		return "operator"
	}
}

type token struct {
	kind tokenKind
	text string // 原文；字符串为解码后的内容
	pos  int
}

// lexer 把表达式切分为 token。
type lexer struct {
	src    string
	pos    int
	tokens []token
}

func tokenize(src string) ([]token, error) {
	l := &lexer{src: src}
	for {
		l.skipSpace()
		if l.pos >= len(l.src) {
			l.tokens = append(l.tokens, token{kind: tokEOF, pos: l.pos})
			return l.tokens, nil
		}
		if err := l.next(); err != nil {
			return nil, err
		}
	}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		r, n := utf8.DecodeRuneInString(l.src[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += n
	}
}

func (l *lexer) afterDot() bool {
	n := len(l.tokens)
	return n > 0 && l.tokens[n-1].kind == tokPunct && l.tokens[n-1].text == "."
}

func (l *lexer) next() error {
	start := l.pos
	r, n := utf8.DecodeRuneInString(l.src[l.pos:])

	switch {
	case r == '_' || unicode.IsLetter(r):
		l.pos += n
		for l.pos < len(l.src) {
			r, n = utf8.DecodeRuneInString(l.src[l.pos:])
			if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				break
			}
			l.pos += n
		}
		l.emit(tokIdent, l.src[start:l.pos], start)
	case r >= '0' && r <= '9':
		l.number(start)
	case r == '"' || r == '\'' || r == '`':
		s, err := l.quoted(byte(r))
		if err != nil {
			return err
		}
		l.emit(tokString, s, start)
	case strings.ContainsRune(".,()[]", r):
		l.pos += n
		l.emit(tokPunct, string(r), start)
	case r == '-' || r == '*' || r == '&' || r == '!':
		// "&&" 与 "-=" "!=" 等是二元运算，否则视为一元
		l.pos += n
		if l.pos < len(l.src) && (l.src[l.pos] == '=' || r == '&' && l.src[l.pos] == '&') {
			l.pos++
			l.emit(tokOp, l.src[start:l.pos], start)
			return nil
		}
		l.emit(tokPunct, string(r), start)
	default:
		l.pos += n
		l.emit(tokOp, string(r), start)
	}

	return nil
}

func (l *lexer) emit(kind tokenKind, text string, pos int) {
	l.tokens = append(l.tokens, token{kind: kind, text: text, pos: pos})
}

// number 读取整数或浮点数。紧跟 "." 之后只读取整数，
// 因此 "data.0.1" 被切分为 data . 0 . 1。
func (l *lexer) number(start int) {
	memberIndex := l.afterDot()
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	kind := tokInt
	if !memberIndex && l.pos+1 < len(l.src) && l.src[l.pos] == '.' && isDigit(l.src[l.pos+1]) {
		kind = tokFloat
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	if !memberIndex && l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		j := l.pos + 1
		if j < len(l.src) && (l.src[j] == '+' || l.src[j] == '-') {
			j++
		}
		if j < len(l.src) && isDigit(l.src[j]) {
			kind = tokFloat
			l.pos = j
			for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
				l.pos++
			}
		}
	}
	l.emit(kind, l.src[start:l.pos], start)
}

func (l *lexer) quoted(quote byte) (string, error) {
	start := l.pos
	l.pos++

	var buf strings.Builder
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		switch {
		case ch == quote:
			l.pos++
			return buf.String(), nil
		case ch == '\\' && quote != '`' && l.pos+1 < len(l.src):
			buf.WriteByte(unescape(l.src[l.pos+1]))
			l.pos += 2
		default:
			buf.WriteByte(ch)
			l.pos++
		}
	}

	return "", fmt.Errorf("%w: unterminated string starting at %d", ErrSyntax, start)
}

func unescape(ch byte) byte {
	switch ch {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	default:
		return ch
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
