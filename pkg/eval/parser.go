package eval

import (
	"fmt"
	"strconv"
)

// node 是表达式语法树节点。
type node interface {
	eval(scope Scope) (any, error)
}

type (
	literalNode struct{ value any }
	identNode   struct{ name string }
	memberNode  struct {
		x    node
		name string // 标识符或十进制下标
	}
	indexNode struct{ x, index node }
	callNode  struct {
		fn   node
		args []node
	}
	unaryNode struct {
		op byte
		x  node
	}
)

// parser 是递归下降解析器：
//
//	unary   := ('-' | '*' | '&' | '!') unary | postfix
//	postfix := primary { '.' (ident | int) | '[' unary ']' | '(' args ')' }
//	primary := literal | ident | '(' unary ')'
type parser struct {
	tokens []token
	pos    int
}

func parse(src string) (node, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	n, err := p.unary()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.trailing(tok)
	}

	return n, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) advance() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}

	return tok
}

func (p *parser) isPunct(text string) bool {
	tok := p.peek()
	return tok.kind == tokPunct && tok.text == text
}

func (p *parser) expect(text string) error {
	if !p.isPunct(text) {
		tok := p.peek()
		if tok.kind == tokOp {
			return p.trailing(tok)
		}
		return fmt.Errorf("%w: expected %q at %d, found %s", ErrSyntax, text, tok.pos, tok.kind)
	}
	p.advance()

	return nil
}

// trailing 报告完整表达式之后多余的 token。
// 运算符或第二个操作数说明这是一个不支持的复合运算。
func (p *parser) trailing(tok token) error {
	switch tok.kind {
	case tokOp, tokIdent, tokInt, tokFloat, tokString:
		return fmt.Errorf("%w: %q at %d", ErrUnsupported, tok.text, tok.pos)
	case tokPunct:
		if tok.text == "-" || tok.text == "*" || tok.text == "&" {
			return fmt.Errorf("%w: binary %q at %d", ErrUnsupported, tok.text, tok.pos)
		}
	case tokEOF:
	}

	return fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, tok.text, tok.pos)
}

func (p *parser) unary() (node, error) {
	tok := p.peek()
	if tok.kind == tokPunct && len(tok.text) == 1 && (tok.text == "-" || tok.text == "*" || tok.text == "&" || tok.text == "!") {
		p.advance()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: tok.text[0], x: x}, nil
	}

	return p.postfix()
}

func (p *parser) postfix() (node, error) {
	x, err := p.primary()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.isPunct("."):
			p.advance()
			tok := p.advance()
			if tok.kind != tokIdent && tok.kind != tokInt {
				return nil, fmt.Errorf("%w: expected field name after '.' at %d, found %s", ErrSyntax, tok.pos, tok.kind)
			}
			x = &memberNode{x: x, name: tok.text}
		case p.isPunct("["):
			p.advance()
			idx, err := p.unary()
			if err != nil {
				return nil, err
			}
			if err := p.expect("]"); err != nil {
				return nil, err
			}
			x = &indexNode{x: x, index: idx}
		case p.isPunct("("):
			p.advance()
			args, err := p.args()
			if err != nil {
				return nil, err
			}
			x = &callNode{fn: x, args: args}
		default:
			return x, nil
		}
	}
}

func (p *parser) args() ([]node, error) {
	var args []node
	if p.isPunct(")") {
		p.advance()
		return args, nil
	}

	for {
		arg, err := p.unary()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		if p.isPunct(",") {
			p.advance()
			// 允许尾随逗号
			if p.isPunct(")") {
				p.advance()
				return args, nil
			}
			continue
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}

		return args, nil
	}
}

func (p *parser) primary() (node, error) {
	tok := p.advance()
	switch tok.kind {
	case tokIdent:
		switch tok.text {
		case "true":
			return &literalNode{value: true}, nil
		case "false":
			return &literalNode{value: false}, nil
		case "nil":
			return &literalNode{value: nil}, nil
		}
		return &identNode{name: tok.text}, nil
	case tokInt:
		n, err := strconv.ParseInt(tok.text, 10, 0)
		if err != nil {
			return nil, fmt.Errorf("%w: integer %q: %w", ErrSyntax, tok.text, err)
		}
		return &literalNode{value: int(n)}, nil
	case tokFloat:
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: float %q: %w", ErrSyntax, tok.text, err)
		}
		return &literalNode{value: f}, nil
	case tokString:
		return &literalNode{value: tok.text}, nil
	case tokPunct:
		if tok.text == "(" {
			x, err := p.unary()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			return x, nil
		}
	case tokOp:
		return nil, fmt.Errorf("%w: %q at %d", ErrUnsupported, tok.text, tok.pos)
	case tokEOF:
		return nil, fmt.Errorf("%w: unexpected end of expression", ErrSyntax)
	}

	return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, tok.text, tok.pos)
}
