// Package expr 解析并计算把一个特效参数绑定到其他参数的算术公式
//
// 公式只包含数字、常量 PI、固定的一组数学函数以及对其他参数的引用。
// 引用有三种等价写法：
//
//	${fParticleLifeTime}   @fParticleLifeTime   %fParticleLifeTime%
//
// 语法之外的任何内容都不会被执行。
package expr

import (
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokRef
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

// SyntaxError 公式格式错误
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Pos, e.Msg)
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func tokenize(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			start := i
			for i < len(src) && (isDigit(src[i]) || src[i] == '.') {
				i++
			}
			if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
				j := i + 1
				if j < len(src) && (src[j] == '+' || src[j] == '-') {
					j++
				}
				if j < len(src) && isDigit(src[j]) {
					for j < len(src) && isDigit(src[j]) {
						j++
					}
					i = j
				}
			}
			text := src[start:i]
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, &SyntaxError{Pos: start, Msg: fmt.Sprintf("invalid number %q", text)}
			}
			toks = append(toks, token{kind: tokNumber, text: text, num: v, pos: start})

		case isIdentStart(c):
			start := i
			for i < len(src) && (isIdentChar(src[i]) || src[i] == '.') {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i], pos: start})

		case c == '$':
			if i+1 >= len(src) || src[i+1] != '{' {
				return nil, &SyntaxError{Pos: i, Msg: "expected '{' after '$'"}
			}
			end := strings.IndexByte(src[i+2:], '}')
			if end < 0 {
				return nil, &SyntaxError{Pos: i, Msg: "unterminated ${...} reference"}
			}
			name := strings.TrimSpace(src[i+2 : i+2+end])
			if name == "" {
				return nil, &SyntaxError{Pos: i, Msg: "empty reference"}
			}
			toks = append(toks, token{kind: tokRef, text: name, pos: i})
			i += end + 3

		case c == '@':
			start := i
			i++
			for i < len(src) && isIdentChar(src[i]) {
				i++
			}
			if i == start+1 {
				return nil, &SyntaxError{Pos: start, Msg: "empty reference after '@'"}
			}
			toks = append(toks, token{kind: tokRef, text: src[start+1 : i], pos: start})

		case c == '%':
			end := strings.IndexByte(src[i+1:], '%')
			if end < 0 {
				return nil, &SyntaxError{Pos: i, Msg: "unterminated %...% reference"}
			}
			name := src[i+1 : i+1+end]
			if name == "" || !validIdent(name) {
				return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("invalid reference %%%s%%", name)}
			}
			toks = append(toks, token{kind: tokRef, text: name, pos: i})
			i += end + 2

		case c == '*' && i+1 < len(src) && src[i+1] == '*':
			toks = append(toks, token{kind: tokOp, text: "^", pos: i})
			i += 2

		case strings.IndexByte("+-*/^", c) >= 0:
			toks = append(toks, token{kind: tokOp, text: string(c), pos: i})
			i++

		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++

		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++

		case c == ',':
			toks = append(toks, token{kind: tokComma, text: ",", pos: i})
			i++

		default:
			return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(src)})
	return toks, nil
}

func validIdent(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentChar(s[i]) {
			return false
		}
	}
	return true
}
