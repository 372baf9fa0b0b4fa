package expr

import (
	"fmt"
	"strings"
)

type node interface {
	eval(env *env) (float64, error)
}

type numberNode struct{ v float64 }

type refNode struct{ name string }

type unaryNode struct {
	op      byte
	operand node
}

type binaryNode struct {
	op          byte
	left, right node
}

type callNode struct {
	fn   *builtin
	args []node
}

// Expr 解析后的公式
type Expr struct {
	src  string
	root node
	refs []string
}

// Source 返回传给 Parse 的公式文本
func (e *Expr) Source() string { return e.src }

// References 按首次出现顺序返回引用的参数名，不含重复
func (e *Expr) References() []string {
	out := make([]string, len(e.refs))
	copy(out, e.refs)
	return out
}

// Parse 将公式解析为可计算的语法树
//
// 语法：
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/") unary }
//	unary   = ("+" | "-") unary | power
//	power   = primary [ ("^" | "**") unary ]
//	primary = number | ref | "PI" | ident "(" [ expr { "," expr } ] ")" | "(" expr ")"
func Parse(src string) (*Expr, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, seen: make(map[string]bool)}
	if p.peek().kind == tokEOF {
		return nil, &SyntaxError{Pos: 0, Msg: "empty expression"}
	}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
	}
	return &Expr{src: src, root: root, refs: p.refs}, nil
}

// References 提取公式中引用的名字，不要求公式其余部分合法
func References(src string) []string {
	toks, err := tokenize(src)
	if err != nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, t := range toks {
		if t.kind == tokRef && !seen[t.text] {
			seen[t.text] = true
			out = append(out, t.text)
		}
	}
	return out
}

type parser struct {
	toks []token
	pos  int
	refs []string
	seen map[string]bool
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(ops string) bool {
	t := p.peek()
	return t.kind == tokOp && strings.Contains(ops, t.text)
}

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.isOp("+-") {
		op := p.next().text[0]
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.isOp("*/") {
		op := p.next().text[0]
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.isOp("+-") {
		op := p.next().text[0]
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: op, operand: operand}, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.isOp("^") {
		p.next()
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &binaryNode{op: '^', left: base, right: exp}, nil
	}
	return base, nil
}

func (p *parser) parsePrimary() (node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return &numberNode{v: t.num}, nil

	case tokRef:
		if !p.seen[t.text] {
			p.seen[t.text] = true
			p.refs = append(p.refs, t.text)
		}
		return &refNode{name: t.text}, nil

	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.kind != tokRParen {
			return nil, &SyntaxError{Pos: c.pos, Msg: "expected ')'"}
		}
		return inner, nil

	case tokIdent:
		name := strings.TrimPrefix(t.text, "Math.")
		if p.peek().kind != tokLParen {
			if v, ok := constants[name]; ok {
				return &numberNode{v: v}, nil
			}
			return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unknown identifier %q", t.text)}
		}
		fn, ok := builtins[name]
		if !ok {
			return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unknown function %q", t.text)}
		}
		p.next()
		var args []node
		if p.peek().kind != tokRParen {
			for {
				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.peek().kind != tokComma {
					break
				}
				p.next()
			}
		}
		if c := p.next(); c.kind != tokRParen {
			return nil, &SyntaxError{Pos: c.pos, Msg: "expected ')' after arguments"}
		}
		if len(args) < fn.minArgs || (fn.maxArgs >= 0 && len(args) > fn.maxArgs) {
			return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("%s takes %s arguments, got %d", name, fn.arity(), len(args))}
		}
		return &callNode{fn: fn, args: args}, nil

	case tokEOF:
		return nil, &SyntaxError{Pos: t.pos, Msg: "unexpected end of expression"}
	}
	return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
}
