package schema

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format schema 数据源的文档语法
type Format int

const (
	// FormatAuto 根据第一个非空白字节判断：'<' 表示 XML
	FormatAuto Format = iota
	FormatXML
	FormatYAML
)

// FormatForPath 根据文件扩展名选择格式
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return FormatXML
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatAuto
}

// SchemaLoadError schema 数据源无法读取或格式错误
type SchemaLoadError struct {
	Source string
	Err    error
}

func (e *SchemaLoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("schema load failed: %v", e.Err)
	}
	return fmt.Sprintf("schema load failed for %s: %v", e.Source, e.Err)
}

func (e *SchemaLoadError) Unwrap() error { return e.Err }

// Document schema 数据源解码后、校验前的形式
//
// XML 结构：
//
//	<ParameterSchema>
//	  <Alias Name="fLifeTime" Target="fParticleLifeTime"/>
//	  <Group Name="Emitter" DisplayName="Emitter" Visibility="All">
//	    <Param Name="eBlend" DisplayName="Blend" Type="enum" Default="Additive" Widget="dropdown">
//	      <Option Name="Additive"/>
//	      <Option Name="AlphaBased"/>
//	    </Param>
//	  </Group>
//	</ParameterSchema>
type Document struct {
	XMLName xml.Name     `xml:"ParameterSchema" yaml:"-"`
	Aliases []AliasEntry `xml:"Alias" yaml:"aliases"`
	Groups  []GroupEntry `xml:"Group" yaml:"groups"`
}

// AliasEntry 将旧参数名映射到当前参数名
type AliasEntry struct {
	Name   string `xml:"Name,attr" yaml:"name"`
	Target string `xml:"Target,attr" yaml:"target"`
}

// GroupEntry 对应一个 <Group> 元素
type GroupEntry struct {
	Name        string       `xml:"Name,attr" yaml:"name"`
	DisplayName string       `xml:"DisplayName,attr,omitempty" yaml:"displayName,omitempty"`
	Visibility  string       `xml:"Visibility,attr,omitempty" yaml:"visibility,omitempty"`
	Params      []ParamEntry `xml:"Param" yaml:"params"`
}

// ParamEntry 对应一个 <Param> 元素
// 数值范围保留为字符串，以区分缺失属性与 0
type ParamEntry struct {
	Name        string        `xml:"Name,attr" yaml:"name"`
	DisplayName string        `xml:"DisplayName,attr,omitempty" yaml:"displayName,omitempty"`
	Type        string        `xml:"Type,attr" yaml:"type"`
	Default     string        `xml:"Default,attr" yaml:"default"`
	Widget      string        `xml:"Widget,attr,omitempty" yaml:"widget,omitempty"`
	Min         string        `xml:"Min,attr,omitempty" yaml:"min,omitempty"`
	Max         string        `xml:"Max,attr,omitempty" yaml:"max,omitempty"`
	Step        string        `xml:"Step,attr,omitempty" yaml:"step,omitempty"`
	Labels      string        `xml:"Labels,attr,omitempty" yaml:"labels,omitempty"`
	Visibility  string        `xml:"Visibility,attr,omitempty" yaml:"visibility,omitempty"`
	Options     []OptionEntry `xml:"Option" yaml:"options,omitempty"`
}

// OptionEntry 一个枚举可选值
type OptionEntry struct {
	Name string `xml:"Name,attr" yaml:"name"`
}

// Parse 解码并校验 schema 数据源
//
// 参数：
//   - data: 原始文档字节
//   - format: 文档语法，FormatAuto 表示自动判断
//
// 返回：
//   - []Group: 按文档顺序排列的参数分组
//   - map[string]string: 别名 -> 参数内部名
//   - error: 数据源格式错误时返回 *SchemaLoadError
//
// 内部名、显示名和别名共用一个命名空间：任意一个名字只能指向一个参数。
func Parse(data []byte, format Format) ([]Group, map[string]string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, &SchemaLoadError{Err: fmt.Errorf("empty schema source")}
	}
	if format == FormatAuto {
		format = FormatYAML
		if bytes.HasPrefix(bytes.TrimSpace(data), []byte("<")) {
			format = FormatXML
		}
	}

	var doc Document
	switch format {
	case FormatXML:
		if err := xml.Unmarshal(data, &doc); err != nil {
			return nil, nil, &SchemaLoadError{Err: fmt.Errorf("failed to parse schema XML: %w", err)}
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, nil, &SchemaLoadError{Err: fmt.Errorf("failed to parse schema YAML: %w", err)}
		}
	default:
		return nil, nil, &SchemaLoadError{Err: fmt.Errorf("unsupported schema format %d", format)}
	}

	return doc.build()
}

func (doc *Document) build() ([]Group, map[string]string, error) {
	if len(doc.Groups) == 0 {
		return nil, nil, &SchemaLoadError{Err: fmt.Errorf("schema contains no groups")}
	}

	names := make(map[string]bool)
	labels := make(map[string]string)
	groups := make([]Group, 0, len(doc.Groups))

	for gi, ge := range doc.Groups {
		if ge.Name == "" {
			return nil, nil, &SchemaLoadError{Err: fmt.Errorf("group #%d is missing 'Name'", gi)}
		}
		g := Group{
			Name:        ge.Name,
			DisplayName: ge.DisplayName,
			Visibility:  ge.Visibility,
			Params:      make([]ParameterDefinition, 0, len(ge.Params)),
		}
		if g.DisplayName == "" {
			g.DisplayName = g.Name
		}

		for pi, pe := range ge.Params {
			def, err := pe.definition(ge.Name)
			if err != nil {
				return nil, nil, &SchemaLoadError{Err: fmt.Errorf("group %s param #%d: %w", ge.Name, pi, err)}
			}
			if names[def.Name] {
				return nil, nil, &SchemaLoadError{Err: fmt.Errorf("duplicate parameter name %q", def.Name)}
			}
			if owner, dup := labels[def.Label]; dup {
				return nil, nil, &SchemaLoadError{Err: fmt.Errorf("display name %q of %s already used by %s", def.Label, def.Name, owner)}
			}
			names[def.Name] = true
			labels[def.Label] = def.Name
			g.Params = append(g.Params, def)
		}
		groups = append(groups, g)
	}

	// 显示名不能与其他参数的内部名相同
	for _, g := range groups {
		for _, def := range g.Params {
			if def.Label != def.Name && names[def.Label] {
				return nil, nil, &SchemaLoadError{Err: fmt.Errorf("display name %q of %s is the name of another parameter", def.Label, def.Name)}
			}
		}
	}

	aliases := make(map[string]string, len(doc.Aliases))
	for _, a := range doc.Aliases {
		if a.Name == "" || a.Target == "" {
			return nil, nil, &SchemaLoadError{Err: fmt.Errorf("alias entries need both Name and Target")}
		}
		if !names[a.Target] {
			return nil, nil, &SchemaLoadError{Err: fmt.Errorf("alias %q points at unknown parameter %q", a.Name, a.Target)}
		}
		if names[a.Name] {
			return nil, nil, &SchemaLoadError{Err: fmt.Errorf("alias %q shadows a parameter name", a.Name)}
		}
		if owner, ok := labels[a.Name]; ok {
			return nil, nil, &SchemaLoadError{Err: fmt.Errorf("alias %q shadows the display name of %s", a.Name, owner)}
		}
		if _, dup := aliases[a.Name]; dup {
			return nil, nil, &SchemaLoadError{Err: fmt.Errorf("duplicate alias %q", a.Name)}
		}
		aliases[a.Name] = a.Target
	}

	return groups, aliases, nil
}

func (pe *ParamEntry) definition(group string) (ParameterDefinition, error) {
	if pe.Name == "" {
		return ParameterDefinition{}, fmt.Errorf("missing 'Name'")
	}

	kind, ok := ParseValueKind(pe.Type)
	if !ok {
		warnf("parameter %s has unknown type %q, treating it as string", pe.Name, pe.Type)
	}

	widget := WidgetFor(kind)
	if pe.Widget != "" {
		w, ok := ParseWidgetKind(pe.Widget)
		if !ok {
			warnf("parameter %s has unknown widget %q, using %s", pe.Name, pe.Widget, widget)
		} else {
			widget = w
		}
	}

	def := ParameterDefinition{
		Name:       pe.Name,
		Label:      pe.DisplayName,
		Type:       kind,
		Default:    pe.Default,
		Widget:     widget,
		Visibility: pe.Visibility,
		Group:      group,
	}
	if def.Label == "" {
		def.Label = def.Name
	}

	var err error
	if def.Min, err = optionalFloat("Min", pe.Min); err != nil {
		return def, err
	}
	if def.Max, err = optionalFloat("Max", pe.Max); err != nil {
		return def, err
	}
	if def.Step, err = optionalFloat("Step", pe.Step); err != nil {
		return def, err
	}
	if def.Min != nil && def.Max != nil && *def.Min > *def.Max {
		return def, fmt.Errorf("%s: Min %g is greater than Max %g", def.Name, *def.Min, *def.Max)
	}

	if pe.Labels != "" {
		for _, l := range strings.Split(pe.Labels, ",") {
			def.Labels = append(def.Labels, strings.TrimSpace(l))
		}
	}
	for _, o := range pe.Options {
		def.Options = append(def.Options, o.Name)
	}
	if kind == KindEnum && len(def.Options) > 0 && def.Default != "" && !def.HasOption(def.Default) {
		warnf("parameter %s default %q is not one of its options", def.Name, def.Default)
	}

	return def, nil
}

func optionalFloat(field, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", field, raw, err)
	}
	return &v, nil
}
