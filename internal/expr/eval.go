package expr

import (
	"errors"
	"fmt"
	"math"
)

// ErrNonFinite 公式结果为 NaN 或无穷大时返回
var ErrNonFinite = errors.New("expression result is not a finite number")

// Lookup 将引用的参数解析为数字
// ok=false 表示参数没有值，此时按 0 计算
type Lookup func(name string) (v float64, ok bool, err error)

type env struct {
	lookup Lookup
}

// Eval 计算公式，lookup 为 nil 时所有引用按 0 计算
func (e *Expr) Eval(lookup Lookup) (float64, error) {
	v, err := e.root.eval(&env{lookup: lookup})
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNonFinite
	}
	return v, nil
}

// Values 将普通 map 适配为 Lookup
func Values(m map[string]float64) Lookup {
	return func(name string) (float64, bool, error) {
		v, ok := m[name]
		return v, ok, nil
	}
}

func (n *numberNode) eval(*env) (float64, error) { return n.v, nil }

func (n *refNode) eval(e *env) (float64, error) {
	if e.lookup == nil {
		return 0, nil
	}
	v, ok, err := e.lookup(n.name)
	if err != nil {
		return 0, fmt.Errorf("reference %s: %w", n.name, err)
	}
	if !ok {
		return 0, nil
	}
	return v, nil
}

func (n *unaryNode) eval(e *env) (float64, error) {
	v, err := n.operand.eval(e)
	if err != nil {
		return 0, err
	}
	if n.op == '-' {
		return -v, nil
	}
	return v, nil
}

func (n *binaryNode) eval(e *env) (float64, error) {
	l, err := n.left.eval(e)
	if err != nil {
		return 0, err
	}
	r, err := n.right.eval(e)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case '+':
		return l + r, nil
	case '-':
		return l - r, nil
	case '*':
		return l * r, nil
	case '/':
		if r == 0 {
			return 0, errors.New("division by zero")
		}
		return l / r, nil
	case '^':
		return math.Pow(l, r), nil
	}
	return 0, fmt.Errorf("unknown operator %q", n.op)
}

func (n *callNode) eval(e *env) (float64, error) {
	args := make([]float64, len(n.args))
	for i, a := range n.args {
		v, err := a.eval(e)
		if err != nil {
			return 0, err
		}
		args[i] = v
	}
	return n.fn.call(args), nil
}

type builtin struct {
	minArgs int
	maxArgs int // -1 表示可变参数
	call    func(args []float64) float64
}

func (b *builtin) arity() string {
	switch {
	case b.maxArgs < 0:
		return fmt.Sprintf("at least %d", b.minArgs)
	case b.minArgs == b.maxArgs:
		return fmt.Sprintf("%d", b.minArgs)
	}
	return fmt.Sprintf("%d to %d", b.minArgs, b.maxArgs)
}

func unary(f func(float64) float64) *builtin {
	return &builtin{minArgs: 1, maxArgs: 1, call: func(a []float64) float64 { return f(a[0]) }}
}

// roundHalfUp 与编辑器的取整方式一致：.5 向 +Inf 方向取整
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func remap(v, inLo, inHi, outLo, outHi float64) float64 {
	if inHi == inLo {
		return outLo
	}
	return outLo + (v-inLo)*(outHi-outLo)/(inHi-inLo)
}

var constants = map[string]float64{
	"PI": math.Pi,
}

var builtins = map[string]*builtin{
	"sin":   unary(math.Sin),
	"cos":   unary(math.Cos),
	"tan":   unary(math.Tan),
	"sqrt":  unary(math.Sqrt),
	"abs":   unary(math.Abs),
	"floor": unary(math.Floor),
	"ceil":  unary(math.Ceil),
	"round": unary(roundHalfUp),
	"pow": {minArgs: 2, maxArgs: 2, call: func(a []float64) float64 {
		return math.Pow(a[0], a[1])
	}},
	"min": {minArgs: 1, maxArgs: -1, call: func(a []float64) float64 {
		m := a[0]
		for _, v := range a[1:] {
			m = math.Min(m, v)
		}
		return m
	}},
	"max": {minArgs: 1, maxArgs: -1, call: func(a []float64) float64 {
		m := a[0]
		for _, v := range a[1:] {
			m = math.Max(m, v)
		}
		return m
	}},
	"clamp": {minArgs: 3, maxArgs: 3, call: func(a []float64) float64 {
		return clamp(a[0], a[1], a[2])
	}},
	"lerp": {minArgs: 3, maxArgs: 3, call: func(a []float64) float64 {
		return lerp(a[0], a[1], a[2])
	}},
	"remap": {minArgs: 5, maxArgs: 5, call: func(a []float64) float64 {
		return remap(a[0], a[1], a[2], a[3], a[4])
	}},
}
