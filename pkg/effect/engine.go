package effect

import (
	"log"
	"sort"

	"github.com/decker502/fxlib/internal/expr"
	"github.com/decker502/fxlib/internal/schema"
)

// nameSet 记录插入顺序的参数名集合
type nameSet struct {
	order []string
	index map[string]bool
}

func newNameSet() *nameSet {
	return &nameSet{index: make(map[string]bool)}
}

func (s *nameSet) add(name string) {
	if s.index[name] {
		return
	}
	s.index[name] = true
	s.order = append(s.order, name)
}

func (s *nameSet) remove(name string) {
	if !s.index[name] {
		return
	}
	delete(s.index, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *nameSet) has(name string) bool { return s.index[name] }

func (s *nameSet) len() int { return len(s.order) }

func (s *nameSet) items() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Engine 负责让一个特效中由公式驱动的参数保持最新
//
// 对每个绑定了公式的参数，记录公式读取的名字（references），
// 以及反向的、读取每个名字的绑定参数（dependents）。
// 设置或清除公式时两张表在同一步中一起改写，dependents 始终是 references 的精确逆映射。
//
// Engine 不是并发安全的。
type Engine struct {
	state      *State
	registry   *schema.Registry
	parsed     map[string]*expr.Expr
	references map[string][]string
	dependents map[string]*nameSet
}

// NewEngine 创建绑定到 state 的引擎
//
// 以显示名或别名为键的参数和公式先改为内部名键，与内部名键冲突时保留内部名键。
// 然后按名字顺序安装 state 上已有的公式；解析失败或会形成循环的公式记录警告后丢弃。
// registry 可为 nil，此时名字原样使用，公式结果保存为 float64。
func NewEngine(state *State, registry *schema.Registry) *Engine {
	state.ensureMaps()
	e := &Engine{
		state:      state,
		registry:   registry,
		parsed:     make(map[string]*expr.Expr),
		references: make(map[string][]string),
		dependents: make(map[string]*nameSet),
	}

	if registry != nil {
		rekey(state.Params, registry.Canonical, func(key, name string) {
			log.Printf("[ExpressionEngine] Warning: effect %s sets %s more than once, ignoring %q", state.Name, name, key)
		})
		rekey(state.Expressions, registry.Canonical, func(key, name string) {
			log.Printf("[ExpressionEngine] Warning: effect %s binds %s more than once, ignoring %q", state.Name, name, key)
		})
	}

	stored := state.Expressions
	state.Expressions = make(map[string]string, len(stored))
	names := make([]string, 0, len(stored))
	for name := range stored {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := e.SetExpression(name, stored[name]); err != nil {
			log.Printf("[ExpressionEngine] Warning: dropping stored expression on %s/%s: %v", state.Name, name, err)
		}
	}
	return e
}

// State 返回引擎绑定的特效
func (e *Engine) State() *State { return e.state }

func (e *Engine) canonical(name string) string {
	if e.registry == nil {
		return name
	}
	return e.registry.Canonical(name)
}

// SetExpression 为 target 绑定公式
//
// 先解析公式：语法错误不改变引擎，返回 *EvaluationError。
// 引用链回到 target 的公式返回 *CyclicExpressionError。
// 否则用新边替换 target 原有的依赖边，计算 target 并重算其依赖项。
// 此时的计算失败只记录日志并保留原值，绑定仍然生效。
func (e *Engine) SetExpression(target, formula string) error {
	target = e.canonical(target)

	parsed, err := expr.Parse(formula)
	if err != nil {
		log.Printf("[ExpressionEngine] Warning: invalid expression for %s: %v", target, err)
		return &EvaluationError{Param: target, Expr: formula, Err: err}
	}

	var refs []string
	seen := make(map[string]bool)
	for _, r := range parsed.References() {
		c := e.canonical(r)
		if !seen[c] {
			seen[c] = true
			refs = append(refs, c)
		}
	}

	for _, r := range refs {
		if path := e.pathTo(r, target); path != nil {
			cyc := &CyclicExpressionError{Param: target, Path: append([]string{target}, path...)}
			log.Printf("[ExpressionEngine] Error: %v", cyc)
			return cyc
		}
	}

	e.unlink(target)
	e.references[target] = refs
	for _, r := range refs {
		deps, ok := e.dependents[r]
		if !ok {
			deps = newNameSet()
			e.dependents[r] = deps
		}
		deps.add(target)
	}
	e.parsed[target] = parsed
	e.state.Expressions[target] = formula

	_ = e.Evaluate(target)
	e.propagate(target)
	return nil
}

// pathTo 返回从 from 到 to 的引用链，不可达时返回 nil
// 名字可以到达自身
func (e *Engine) pathTo(from, to string) []string {
	visited := make(map[string]bool)
	var walk func(n string) []string
	walk = func(n string) []string {
		if n == to {
			return []string{n}
		}
		if visited[n] {
			return nil
		}
		visited[n] = true
		for _, r := range e.references[n] {
			if rest := walk(r); rest != nil {
				return append([]string{n}, rest...)
			}
		}
		return nil
	}
	return walk(from)
}

func (e *Engine) unlink(target string) {
	for _, r := range e.references[target] {
		if deps, ok := e.dependents[r]; ok {
			deps.remove(target)
			if deps.len() == 0 {
				delete(e.dependents, r)
			}
		}
	}
	delete(e.references, target)
	delete(e.parsed, target)
}

// Evaluate 根据当前参数值重算一个绑定参数
// 缺失的引用按 0 计算。失败时保留原值，记录日志并返回 *EvaluationError。
func (e *Engine) Evaluate(target string) error {
	target = e.canonical(target)
	parsed, ok := e.parsed[target]
	if !ok {
		return &EvaluationError{Param: target, Err: ErrNotBound}
	}

	result, err := parsed.Eval(e.lookup)
	if err == nil {
		var v Value
		v, err = e.coerce(target, result)
		if err == nil {
			e.state.Params[target] = v
			return nil
		}
	}

	evalErr := &EvaluationError{Param: target, Expr: parsed.Source(), Err: err}
	log.Printf("[ExpressionEngine] Warning: %v (keeping previous value)", evalErr)
	return evalErr
}

func (e *Engine) lookup(name string) (float64, bool, error) {
	v, ok := e.state.Params[e.canonical(name)]
	if !ok {
		return 0, false, nil
	}
	f, err := ToNumber(v)
	if err != nil {
		return 0, false, err
	}
	return f, true, nil
}

func (e *Engine) coerce(target string, v float64) (Value, error) {
	if e.registry == nil {
		return v, nil
	}
	def, ok := e.registry.Get(target)
	if !ok {
		return v, nil
	}
	return CoerceResult(def.Type, v)
}

// OnValueChanged 保存 name 的新值，并按依赖顺序重算直接或间接依赖它的所有参数
// 写给绑定参数的值保留到其公式下一次计算为止
func (e *Engine) OnValueChanged(name string, value any) error {
	name = e.canonical(name)
	v, err := NormalizeValue(value)
	if err != nil {
		return err
	}
	e.state.Params[name] = v
	e.propagate(name)
	return nil
}

// propagate 重算 source 的传递依赖项
// 顺序为受影响子图的拓扑序，同一名字的依赖项保持插入顺序
func (e *Engine) propagate(source string) {
	visited := map[string]bool{source: true}
	var postorder []string
	var visit func(n string)
	visit = func(n string) {
		deps, ok := e.dependents[n]
		if !ok {
			return
		}
		items := deps.items()
		for i := len(items) - 1; i >= 0; i-- {
			d := items[i]
			if visited[d] {
				continue
			}
			visited[d] = true
			visit(d)
			postorder = append(postorder, d)
		}
	}
	visit(source)

	for i := len(postorder) - 1; i >= 0; i-- {
		_ = e.Evaluate(postorder[i])
	}
}

// Clear 移除 name 的公式及其全部依赖边，最后一次计算的值保留为普通值
// 返回 name 之前是否绑定了公式
func (e *Engine) Clear(name string) bool {
	name = e.canonical(name)
	if _, ok := e.parsed[name]; !ok {
		return false
	}
	e.unlink(name)
	delete(e.state.Expressions, name)
	return true
}

// ResetToDefault 清除 name 的公式并恢复 schema 默认值，然后重算依赖项
func (e *Engine) ResetToDefault(name string) error {
	name = e.canonical(name)
	if e.registry == nil {
		return &UnknownParameterError{Name: name}
	}
	def, ok := e.registry.Default(name)
	if !ok {
		return &UnknownParameterError{Name: name}
	}
	e.Clear(name)
	e.state.Params[name] = def
	e.propagate(name)
	return nil
}

// IsBound 判断 name 是否由公式驱动
func (e *Engine) IsBound(name string) bool {
	_, ok := e.parsed[e.canonical(name)]
	return ok
}

// Expression 返回 name 绑定的公式
func (e *Engine) Expression(name string) (string, bool) {
	name = e.canonical(name)
	if _, ok := e.parsed[name]; !ok {
		return "", false
	}
	return e.state.Expressions[name], true
}

// References 列出 name 的公式读取的名字
func (e *Engine) References(name string) []string {
	refs := e.references[e.canonical(name)]
	out := make([]string, len(refs))
	copy(out, refs)
	return out
}

// Dependents 列出公式读取 name 的绑定参数
func (e *Engine) Dependents(name string) []string {
	deps, ok := e.dependents[e.canonical(name)]
	if !ok {
		return nil
	}
	return deps.items()
}

// rekey 将 m 中无法直接命中的键改为 canonical 给出的内部名
// 已存在内部名键时丢弃其他写法，并通过 warn 报告
func rekey[T any](m map[string]T, canonical func(string) string, warn func(key, name string)) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		name := canonical(k)
		if name == k {
			continue
		}
		v := m[k]
		delete(m, k)
		if _, exists := m[name]; exists {
			warn(k, name)
			continue
		}
		m[name] = v
	}
}
