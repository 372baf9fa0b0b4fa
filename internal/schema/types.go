// Package schema 描述粒子特效的可调参数
//
// schema 是一份静态文档，按分组列出参数。每个分组包含有序的参数定义，
// 记录导出名、显示名、值类型、默认值和编辑器控件提示。
// schema 在启动时一次性加载进 Registry，之后不可修改。
package schema

import (
	"log"
	"strings"
)

// VisibilityAll 表示定义或分组在所有渲染模式下可见
const VisibilityAll = "All"

// ValueKind 参数声明的值类型
type ValueKind int

const (
	KindString ValueKind = iota
	KindFloat
	KindInt
	KindBool
	KindVec3
	KindColor
	KindEnum
	KindText
	KindFile
	KindCount
)

var kindNames = map[ValueKind]string{
	KindString: "string",
	KindFloat:  "float",
	KindInt:    "int",
	KindBool:   "bool",
	KindVec3:   "vec3",
	KindColor:  "color",
	KindEnum:   "enum",
	KindText:   "text",
	KindFile:   "file",
	KindCount:  "count",
}

// String 返回类型在 schema 中的写法
func (k ValueKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "string"
}

// IsNumeric 判断该类型的值是否为普通数字
func (k ValueKind) IsNumeric() bool {
	return k == KindFloat || k == KindInt || k == KindCount
}

// IsIntegral 判断该类型的值是否为整数
func (k ValueKind) IsIntegral() bool {
	return k == KindInt || k == KindCount
}

// ParseValueKind 将 schema 类型字符串映射为 ValueKind
// 未知写法降级为 KindString，并返回 ok=false
func ParseValueKind(s string) (ValueKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "float", "number", "real":
		return KindFloat, true
	case "int", "integer", "uint":
		return KindInt, true
	case "bool", "boolean":
		return KindBool, true
	case "vec3", "vector", "vec":
		return KindVec3, true
	case "color", "colour":
		return KindColor, true
	case "enum":
		return KindEnum, true
	case "text":
		return KindText, true
	case "file", "texture", "geometry":
		return KindFile, true
	case "count":
		return KindCount, true
	case "string", "":
		return KindString, true
	}
	return KindString, false
}

// WidgetKind 编辑参数所用的编辑器控件
type WidgetKind int

const (
	WidgetText WidgetKind = iota
	WidgetSlider
	WidgetVector
	WidgetColor
	WidgetDropdown
	WidgetCheckbox
)

// String 返回控件在 schema 中的写法
func (w WidgetKind) String() string {
	switch w {
	case WidgetSlider:
		return "slider"
	case WidgetVector:
		return "vector"
	case WidgetColor:
		return "color"
	case WidgetDropdown:
		return "dropdown"
	case WidgetCheckbox:
		return "checkbox"
	case WidgetText:
		return "text"
	}
	return "text"
}

// ParseWidgetKind 将控件提示映射为 WidgetKind
func ParseWidgetKind(s string) (WidgetKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "slider", "spinner", "number":
		return WidgetSlider, true
	case "vector", "vec3":
		return WidgetVector, true
	case "color", "colour":
		return WidgetColor, true
	case "dropdown", "select", "combo":
		return WidgetDropdown, true
	case "checkbox", "toggle":
		return WidgetCheckbox, true
	case "text", "textbox", "file":
		return WidgetText, true
	}
	return WidgetText, false
}

// WidgetFor schema 未指定控件时，根据值类型推断控件
func WidgetFor(kind ValueKind) WidgetKind {
	switch kind {
	case KindFloat, KindInt, KindCount:
		return WidgetSlider
	case KindBool:
		return WidgetCheckbox
	case KindVec3:
		return WidgetVector
	case KindColor:
		return WidgetColor
	case KindEnum:
		return WidgetDropdown
	case KindString, KindText, KindFile:
		return WidgetText
	}
	return WidgetText
}

// ParameterDefinition 单个特效参数的静态描述
type ParameterDefinition struct {
	Name       string // 内部名，导出时也作为 XML 属性名
	Label      string // 属性面板中显示的名称
	Type       ValueKind
	Default    string
	Widget     WidgetKind
	Min        *float64
	Max        *float64
	Step       *float64
	Labels     []string // 向量控件各分量的标签
	Options    []string // 枚举参数的可选值（有序）
	Visibility string
	Group      string
}

// VisibilityMode 实现 Visible 接口
func (d *ParameterDefinition) VisibilityMode() string { return d.Visibility }

// HasOption 判断 opt 是否为枚举可选值之一
func (d *ParameterDefinition) HasOption(opt string) bool {
	for _, o := range d.Options {
		if o == opt {
			return true
		}
	}
	return false
}

// clone 返回深拷贝，切片和指针字段不与原定义共享
func (d ParameterDefinition) clone() ParameterDefinition {
	c := d
	c.Min = cloneFloat(d.Min)
	c.Max = cloneFloat(d.Max)
	c.Step = cloneFloat(d.Step)
	if d.Labels != nil {
		c.Labels = append([]string(nil), d.Labels...)
	}
	if d.Options != nil {
		c.Options = append([]string(nil), d.Options...)
	}
	return c
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Group 一组相关的参数定义（有序）
type Group struct {
	Name        string
	DisplayName string
	Visibility  string
	Params      []ParameterDefinition
}

// VisibilityMode 实现 Visible 接口
func (g *Group) VisibilityMode() string { return g.Visibility }

func (g *Group) clone() Group {
	c := *g
	c.Params = make([]ParameterDefinition, len(g.Params))
	for i := range g.Params {
		c.Params[i] = g.Params[i].clone()
	}
	return c
}

// Visible 由参数定义和分组实现
type Visible interface {
	VisibilityMode() string
}

// IsVisible 判断 item 在指定渲染模式下是否显示
func IsVisible(item Visible, mode string) bool {
	if item == nil {
		return false
	}
	declared := item.VisibilityMode()
	if declared == "" || declared == VisibilityAll {
		return true
	}
	return declared == mode || mode == VisibilityAll
}

func warnf(format string, args ...any) {
	log.Printf("[SchemaRegistry] Warning: "+format, args...)
}
