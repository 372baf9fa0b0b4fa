package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Color RGB 颜色，各通道取值 0-255
type Color struct {
	R float64 `yaml:"r"`
	G float64 `yaml:"g"`
	B float64 `yaml:"b"`
}

// ParseHexColor 解析 "#rrggbb" 或 "#rgb"
func ParseHexColor(s string) (Color, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		return Color{}, false
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Color{}, false
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, false
	}
	return Color{
		R: float64((n >> 16) & 0xff),
		G: float64((n >> 8) & 0xff),
		B: float64(n & 0xff),
	}, true
}

// Hex 将颜色输出为 "#rrggbb"
func (c Color) Hex() string {
	ch := func(v float64) int {
		return int(math.Max(0, math.Min(255, math.Round(v))))
	}
	return fmt.Sprintf("#%02x%02x%02x", ch(c.R), ch(c.G), ch(c.B))
}

// ParseVector 将逗号分隔的列表解析为数字
func ParseVector(s string) ([]float64, bool) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, false
		}
		out = append(out, v)
	}
	return out, true
}

// ParseNumber 解析 s 开头的数字部分，与编辑器文本框行为一致："2.5s" 读作 2.5
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	end := 0
	seenDigit, seenDot, seenExp := false, false, false
scan:
	for end < len(s) {
		c := s[end]
		switch {
		case c >= '0' && c <= '9':
			seenDigit = true
		case (c == '+' || c == '-') && (end == 0 || s[end-1] == 'e' || s[end-1] == 'E'):
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
		case (c == 'e' || c == 'E') && seenDigit && !seenExp:
			seenExp = true
		default:
			break scan
		}
		end++
	}
	for end > 0 {
		if v, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return v, true
		}
		end--
	}
	return 0, false
}

// CoerceDefault 将 d 的字符串默认值转换为对应类型的值
//
// 数值类型转为 float64，KindBool 转为 bool，KindVec3 转为 []float64，
// KindColor 转为 Color，其他类型保留字符串。无法转换的默认值原样返回。
func CoerceDefault(d *ParameterDefinition) any {
	return CoerceString(d.Type, d.Default)
}

// CoerceString 将 raw 转换为 kind 对应的值表示
//
// KindColor 接受 "#rrggbb"、"#rgb" 或 "r,g,b"（0-255 通道值）。
// 导出文件中的 0-1 小数形式请使用 ParseColorFractions。
func CoerceString(kind ValueKind, raw string) any {
	switch kind {
	case KindFloat, KindInt, KindCount:
		if v, ok := ParseNumber(raw); ok {
			return v
		}
		return raw
	case KindBool:
		return raw == "true"
	case KindVec3:
		if v, ok := ParseVector(raw); ok {
			return v
		}
		return raw
	case KindColor:
		if c, ok := ParseHexColor(raw); ok {
			return c
		}
		if v, ok := ParseVector(raw); ok && len(v) == 3 {
			return Color{R: v[0], G: v[1], B: v[2]}
		}
		return raw
	case KindString, KindEnum, KindText, KindFile:
		return raw
	}
	return raw
}

// ParseColorFractions 解析导出格式的颜色 "r,g,b"，各通道为 0-1 小数
// 结果按 255 缩放并取整
func ParseColorFractions(raw string) (Color, bool) {
	v, ok := ParseVector(raw)
	if !ok || len(v) != 3 {
		return Color{}, false
	}
	for _, ch := range v {
		if ch < 0 || ch > 1 {
			return Color{}, false
		}
	}
	return Color{R: math.Round(v[0] * 255), G: math.Round(v[1] * 255), B: math.Round(v[2] * 255)}, true
}
