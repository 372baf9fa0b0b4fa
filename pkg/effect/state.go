// Package effect 粒子特效的内存模型，以及让公式绑定参数保持最新的表达式引擎
package effect

import (
	"fmt"

	"github.com/decker502/fxlib/internal/particle"
	"gopkg.in/yaml.v3"
)

// Timeline 特效在编辑器时间轴上占据的区间
type Timeline struct {
	Start    float64 `yaml:"start"`
	Duration float64 `yaml:"duration"`
}

// State 一个配置好的粒子发射器
//
// Params 将参数内部名映射到当前值，值为 float64、int、bool、string、[]float64
// 或 schema.Color 之一（参见 NormalizeValue）。Expressions 将参数名映射到驱动它的公式。
// 从文件加载时键也可以是显示名或别名，NewEngine 会将其统一为内部名。
type State struct {
	Name        string                    `yaml:"name"`
	Params      map[string]Value          `yaml:"params,omitempty"`
	Expressions map[string]string         `yaml:"expressions,omitempty"`
	Curves      map[string]particle.Curve `yaml:"curves,omitempty"`
	Timeline    Timeline                  `yaml:"timeline"`
	Visible     bool                      `yaml:"visible"`
	Locked      bool                      `yaml:"locked"`
	Children    []*State                  `yaml:"children,omitempty"`
}

// New 返回一个空的可见特效
func New(name string) *State {
	return &State{
		Name:        name,
		Params:      make(map[string]Value),
		Expressions: make(map[string]string),
		Curves:      make(map[string]particle.Curve),
		Visible:     true,
	}
}

// UnmarshalYAML 解码特效，Visible 默认为 true，参数值统一为标准 Go 类型
func (s *State) UnmarshalYAML(node *yaml.Node) error {
	type plain State
	p := plain{Visible: true}
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = State(p)
	s.ensureMaps()
	for name, v := range s.Params {
		nv, err := NormalizeValue(v)
		if err != nil {
			return fmt.Errorf("effect %s param %s: %w", s.Name, name, err)
		}
		s.Params[name] = nv
	}
	return nil
}

func (s *State) ensureMaps() {
	if s.Params == nil {
		s.Params = make(map[string]Value)
	}
	if s.Expressions == nil {
		s.Expressions = make(map[string]string)
	}
	if s.Curves == nil {
		s.Curves = make(map[string]particle.Curve)
	}
}

// Walk 深度优先访问 s 及其后代，父特效先于子特效
func (s *State) Walk(fn func(e *State, depth int)) {
	s.walk(fn, 0)
}

func (s *State) walk(fn func(*State, int), depth int) {
	fn(s, depth)
	for _, c := range s.Children {
		if c != nil {
			c.walk(fn, depth+1)
		}
	}
}

// Flatten 按深度优先列出特效
func Flatten(effects []*State) []*State {
	var out []*State
	for _, e := range effects {
		if e == nil {
			continue
		}
		e.Walk(func(c *State, _ int) { out = append(out, c) })
	}
	return out
}

// Find 深度优先查找第一个名为 name 的特效
func Find(effects []*State, name string) *State {
	for _, e := range Flatten(effects) {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// Clone 返回 s 的深拷贝
func (s *State) Clone() *State {
	c := &State{
		Name:        s.Name,
		Params:      make(map[string]Value, len(s.Params)),
		Expressions: make(map[string]string, len(s.Expressions)),
		Curves:      make(map[string]particle.Curve, len(s.Curves)),
		Timeline:    s.Timeline,
		Visible:     s.Visible,
		Locked:      s.Locked,
	}
	for k, v := range s.Params {
		c.Params[k] = cloneValue(v)
	}
	for k, v := range s.Expressions {
		c.Expressions[k] = v
	}
	for k, v := range s.Curves {
		pts := make([]particle.Point, len(v.Points))
		copy(pts, v.Points)
		c.Curves[k] = particle.Curve{Points: pts, Interpolation: v.Interpolation}
	}
	for _, child := range s.Children {
		if child != nil {
			c.Children = append(c.Children, child.Clone())
		}
	}
	return c
}

// SetCurve 替换曲线的控制点，点按 X 排序
func (s *State) SetCurve(id string, points []particle.Point) {
	s.ensureMaps()
	pts := make([]particle.Point, len(points))
	copy(pts, points)
	particle.SortPoints(pts)
	c := s.Curves[id]
	c.Points = pts
	s.Curves[id] = c
}
