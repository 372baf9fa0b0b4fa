package effect

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotBound 计算没有公式的参数时返回
var ErrNotBound = errors.New("parameter has no expression")

// EvaluationError 公式解析或计算失败，参数保留原值
type EvaluationError struct {
	Param string
	Expr  string
	Err   error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluating %s = %q: %v", e.Param, e.Expr, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// CyclicExpressionError 公式会使参数依赖自身
// Path 列出依赖链，以 Param 开始并以 Param 结束
type CyclicExpressionError struct {
	Param string
	Path  []string
}

func (e *CyclicExpressionError) Error() string {
	return fmt.Sprintf("cyclic expression on %s: %s", e.Param, strings.Join(e.Path, " -> "))
}

// UnknownParameterError 名字没有对应的 schema 定义
type UnknownParameterError struct {
	Name string
}

func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("unknown parameter %q", e.Name)
}
