package effect

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/decker502/fxlib/internal/schema"
)

// Value 参数值：float64、int、bool、string、[]float64 或 schema.Color
type Value = any

// NormalizeValue 将解码得到的值（YAML、JSON、控件回调）统一为标准 Value 类型
// 数字统一为 float64，数字列表转为 []float64，{r,g,b} 映射转为 schema.Color
func NormalizeValue(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return nil, fmt.Errorf("nil value")
	case float64, bool, string, schema.Color:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case uint:
		return float64(t), nil
	case uint64:
		return float64(t), nil
	case []float64:
		out := make([]float64, len(t))
		copy(out, t)
		return out, nil
	case []int:
		out := make([]float64, len(t))
		for i, n := range t {
			out[i] = float64(n)
		}
		return out, nil
	case []any:
		out := make([]float64, len(t))
		for i, item := range t {
			n, err := NormalizeValue(item)
			if err != nil {
				return nil, err
			}
			f, ok := n.(float64)
			if !ok {
				return nil, fmt.Errorf("vector element %d is %T, want number", i, item)
			}
			out[i] = f
		}
		return out, nil
	case map[string]any:
		return colorFromMap(t)
	case *schema.Color:
		if t == nil {
			return nil, fmt.Errorf("nil color")
		}
		return *t, nil
	}
	return nil, fmt.Errorf("unsupported value type %T", v)
}

func colorFromMap(m map[string]any) (Value, error) {
	var c schema.Color
	channels := map[string]*float64{"r": &c.R, "g": &c.G, "b": &c.B}
	for key, dst := range channels {
		raw, ok := m[key]
		if !ok {
			return nil, fmt.Errorf("color is missing channel %q", key)
		}
		n, err := NormalizeValue(raw)
		if err != nil {
			return nil, err
		}
		f, ok := n.(float64)
		if !ok {
			return nil, fmt.Errorf("color channel %q is %T, want number", key, raw)
		}
		*dst = f
	}
	if len(m) != 3 {
		return nil, fmt.Errorf("color has unexpected keys")
	}
	return c, nil
}

func cloneValue(v Value) Value {
	if vec, ok := v.([]float64); ok {
		out := make([]float64, len(vec))
		copy(out, vec)
		return out
	}
	return v
}

// ToNumber 将值读作数字，供公式使用
// 布尔值读作 1 或 0，字符串必须能解析为数字
func ToNumber(v Value) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not numeric", t)
		}
		return f, nil
	}
	return 0, fmt.Errorf("value of type %T is not numeric", v)
}

// Equal 判断两个值在结构上是否相等
// 数字按数值比较，与 Go 类型无关；十六进制颜色字符串与对应的 Color 相等
func Equal(a, b Value) bool {
	if af, ok := asFloat(a); ok {
		bf, ok := asFloat(b)
		return ok && af == bf
	}
	if ac, ok := asColor(a); ok {
		bc, ok := asColor(b)
		return ok && ac == bc
	}
	if av, ok := a.([]float64); ok {
		bv, ok := b.([]float64)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v Value) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}

func asColor(v Value) (schema.Color, bool) {
	switch t := v.(type) {
	case schema.Color:
		return t, true
	case string:
		return schema.ParseHexColor(t)
	}
	return schema.Color{}, false
}

// CoerceResult 将公式结果转换为 kind 对应的表示
func CoerceResult(kind schema.ValueKind, v float64) (Value, error) {
	switch kind {
	case schema.KindFloat:
		return v, nil
	case schema.KindInt, schema.KindCount:
		return math.Round(v), nil
	case schema.KindBool:
		return v != 0, nil
	case schema.KindString, schema.KindText, schema.KindEnum, schema.KindFile, schema.KindVec3, schema.KindColor:
		return nil, fmt.Errorf("a %s parameter cannot hold a formula result", kind)
	}
	return v, nil
}
