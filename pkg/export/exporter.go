package export

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/decker502/fxlib/internal/schema"
	"github.com/decker502/fxlib/pkg/effect"
	"github.com/google/uuid"
)

const (
	DefaultSandboxVersion  = "1.0.0.0"
	DefaultParticleVersion = "24"

	// ExpressionSuffix 追加在参数名后，组成保存公式的属性名
	ExpressionSuffix = "_Expr"

	xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>`
)

// Options 控制导出内容
type Options struct {
	ExportAllParameters bool   // 写出所有已知参数，无论是否为默认值
	RenderMode          string // 写入 ParticleSystem 属性
	SandboxVersion      string
	ParticleVersion     string
}

// Attr 一个导出的参数
type Attr struct {
	Name  string
	Value effect.Value
	Kind  schema.ValueKind // 参数声明的类型，决定输出格式
}

// Exporter 按参数 schema 序列化特效
type Exporter struct {
	registry *schema.Registry
	opts     Options
	newGUID  func() string
}

// NewExporter 创建导出器，未填写的选项使用默认值
func NewExporter(registry *schema.Registry, opts Options) *Exporter {
	if opts.RenderMode == "" {
		opts.RenderMode = schema.VisibilityAll
	}
	if opts.SandboxVersion == "" {
		opts.SandboxVersion = DefaultSandboxVersion
	}
	if opts.ParticleVersion == "" {
		opts.ParticleVersion = DefaultParticleVersion
	}
	return &Exporter{
		registry: registry,
		opts:     opts,
		newGUID:  uuid.NewString,
	}
}

// Options 返回实际生效的选项
func (x *Exporter) Options() Options { return x.opts }

// SetGUIDSource 替换 GUID 生成函数，主要用于得到可复现的输出
func (x *Exporter) SetGUIDSource(fn func() string) {
	if fn == nil {
		fn = uuid.NewString
	}
	x.newGUID = fn
}

// Diff 返回 s 中与 schema 默认值不同的参数
//
// 设置 ExportAllParameters 时返回所有已知参数。属性使用参数内部名，按 schema 顺序排列。
// 没有 schema 定义的名字记录警告后跳过。
func (x *Exporter) Diff(s *effect.State) []Attr {
	resolved := resolveKeys(x.registry, s.Name, s.Params)

	var out []Attr
	for _, def := range x.registry.Definitions() {
		v, ok := resolved[def.Name]
		if !ok {
			continue
		}
		if !x.opts.ExportAllParameters && effect.Equal(v, schema.CoerceDefault(def)) {
			continue
		}
		out = append(out, Attr{Name: def.Name, Value: v, Kind: def.Type})
	}
	return out
}

// resolveKeys 将参数键（内部名、显示名或别名）映射为内部名
// 同一参数出现多个键时，以内部名键为准
func resolveKeys[T any](registry *schema.Registry, effectName string, in map[string]T) map[string]T {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]T, len(in))
	from := make(map[string]string, len(in))
	for _, k := range keys {
		def, ok := registry.Get(k)
		if !ok {
			log.Printf("[Exporter] Warning: effect %s has unknown parameter %q, skipping", effectName, k)
			continue
		}
		if prev, dup := from[def.Name]; dup {
			if prev == def.Name || k != def.Name {
				log.Printf("[Exporter] Warning: effect %s sets %s more than once, ignoring %q", effectName, def.Name, k)
				continue
			}
			log.Printf("[Exporter] Warning: effect %s sets %s more than once, ignoring %q", effectName, def.Name, prev)
		}
		out[def.Name] = in[k]
		from[def.Name] = k
	}
	return out
}

// expressions 按 schema 顺序返回 s 当前生效的公式属性
func (x *Exporter) expressions(s *effect.State) []Attr {
	resolved := resolveKeys(x.registry, s.Name, s.Expressions)
	var out []Attr
	for _, def := range x.registry.Definitions() {
		if f, ok := resolved[def.Name]; ok {
			out = append(out, Attr{Name: def.Name + ExpressionSuffix, Value: f})
		}
	}
	return out
}

// SerializeEffect 输出一个 <Particles> 元素
func (x *Exporter) SerializeEffect(s *effect.State) string {
	return x.serializeEffect(s, s.Name, "")
}

func (x *Exporter) serializeEffect(s *effect.State, name, indent string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `%s<Particles Name="%s" GUID="%s">`, indent, EscapeXML(name), x.newGUID())
	b.WriteString("\n")
	fmt.Fprintf(&b, `%s <Params Inheritance="System" ParticleSystem="%s"`, indent, EscapeXML(x.opts.RenderMode))
	for _, a := range x.Diff(s) {
		fmt.Fprintf(&b, ` %s="%s"`, a.Name, FormatParam(a.Kind, a.Value))
	}
	for _, a := range x.expressions(s) {
		fmt.Fprintf(&b, ` %s="%s"`, a.Name, EscapeXML(a.Value.(string)))
	}
	b.WriteString("/>\n")
	fmt.Fprintf(&b, "%s</Particles>", indent)
	return b.String()
}

// SerializeLibrary 输出完整的特效库文档
// 子特效按深度优先写在父特效之后，名称为带点的路径（"Torch.Sparks"）
func (x *Exporter) SerializeLibrary(libraryName string, effects []*effect.State) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString("\n")
	fmt.Fprintf(&b, `<ParticleLibrary Name="%s" SandboxVersion="%s" ParticleVersion="%s">`,
		EscapeXML(libraryName), EscapeXML(x.opts.SandboxVersion), EscapeXML(x.opts.ParticleVersion))
	b.WriteString("\n")

	var visit func(s *effect.State, path string)
	visit = func(s *effect.State, path string) {
		name := s.Name
		if path != "" {
			name = path + "." + s.Name
		}
		b.WriteString(x.serializeEffect(s, name, " "))
		b.WriteString("\n")
		for _, c := range s.Children {
			if c != nil {
				visit(c, name)
			}
		}
	}
	for _, s := range effects {
		if s != nil {
			visit(s, "")
		}
	}

	b.WriteString("</ParticleLibrary>\n")
	return b.String()
}

// WriteLibraryFile 将特效库文档写入 path，强制使用 ".xml" 扩展名
// 返回实际写入的路径
func (x *Exporter) WriteLibraryFile(path, libraryName string, effects []*effect.State) (string, error) {
	path = ExportFileName(path)
	doc := x.SerializeLibrary(libraryName, effects)
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return "", fmt.Errorf("failed to write particle library %s: %w", path, err)
	}
	log.Printf("[Exporter] Wrote %d effects to %s", len(effect.Flatten(effects)), path)
	return path, nil
}
