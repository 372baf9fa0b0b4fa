package export

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/decker502/fxlib/internal/particle"
	"github.com/decker502/fxlib/internal/schema"
	"github.com/decker502/fxlib/pkg/effect"
)

// 每个 <Params> 元素都会写入的保留属性
var reservedAttrs = map[string]bool{
	"Inheritance":    true,
	"ParticleSystem": true,
}

// ImportLibrary 将导出的特效库文档读回为特效
//
// 属性文本按 schema 转换为编辑器使用的值类型，因此再次导出会得到相同的属性。
// 带点的特效名（"Torch.Sparks"）会挂到前缀所指的特效下，前提是该特效在文档中更早出现。
// 文档中缺失的参数不建条目，使用 schema 默认值。
func (x *Exporter) ImportLibrary(data []byte) (*effect.Library, error) {
	doc, err := particle.ParseLibraryXML(data)
	if err != nil {
		return nil, err
	}

	lib := &effect.Library{Name: doc.Name}
	byPath := make(map[string]*effect.State, len(doc.Effects))

	for _, p := range doc.Effects {
		if p.Name == "" {
			return nil, fmt.Errorf("particle library %s has an effect without a name", doc.Name)
		}
		if _, dup := byPath[p.Name]; dup {
			return nil, fmt.Errorf("particle library %s has duplicate effect %q", doc.Name, p.Name)
		}

		parent, name := splitEffectPath(p.Name, byPath)
		s := effect.New(name)
		x.importParams(s, p.Params)

		byPath[p.Name] = s
		if parent != nil {
			parent.Children = append(parent.Children, s)
		} else {
			lib.Effects = append(lib.Effects, s)
		}
	}

	if len(lib.Effects) == 0 {
		return nil, fmt.Errorf("particle library %s contains no effects", doc.Name)
	}
	return lib, nil
}

// ImportLibraryFile 从磁盘读取导出的特效库
func (x *Exporter) ImportLibraryFile(path string) (*effect.Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read particle library %s: %w", path, err)
	}
	lib, err := x.ImportLibrary(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lib, nil
}

// splitEffectPath 查找带点名称中最长的已知前缀
func splitEffectPath(full string, known map[string]*effect.State) (*effect.State, string) {
	for i := strings.LastIndex(full, "."); i > 0; i = strings.LastIndex(full[:i], ".") {
		if parent, ok := known[full[:i]]; ok {
			return parent, full[i+1:]
		}
	}
	return nil, full
}

func (x *Exporter) importParams(s *effect.State, params particle.Params) {
	for _, a := range params.Attrs {
		name := a.Name.Local
		if reservedAttrs[name] {
			continue
		}
		if target, ok := strings.CutSuffix(name, ExpressionSuffix); ok {
			if def, known := x.registry.Get(target); known {
				s.Expressions[def.Name] = a.Value
				continue
			}
		}
		def, ok := x.registry.Get(name)
		if !ok {
			log.Printf("[Exporter] Warning: effect %s has unknown attribute %q, skipping", s.Name, name)
			continue
		}
		s.Params[def.Name] = importValue(def, a.Value)
	}
}

// importValue 转换导出文本，颜色从 0-1 小数还原为 0-255 通道
func importValue(def *schema.ParameterDefinition, raw string) effect.Value {
	if def.Type == schema.KindColor {
		if c, ok := schema.ParseColorFractions(raw); ok {
			return c
		}
	}
	return schema.CoerceString(def.Type, raw)
}
