// Package export 将特效写成粒子库 XML 文档
//
// 默认只写出与 schema 默认值不同的参数，除非设置为导出全部参数。
// 值的格式与引擎粒子加载器的要求一致，参见 FormatValue。
package export

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/decker502/fxlib/internal/schema"
)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// EscapeXML 转义文本，用于属性值
func EscapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

// FormatValue 将参数值输出为属性文本
//
//   - string: XML 转义
//   - bool: "true" / "false"
//   - 整数值: 不带小数点（"5"）
//   - 其他数字: 三位小数（"5.500"）
//   - 向量: 各分量按上述规则输出，以 "," 连接（"1,2.500,0"）
//   - 颜色: 各 0-255 通道除以 255，三位小数（"1.000,0.000,0.000"）
//
// 字符串一律按文本处理；"#rrggbb" 写法的颜色参数请使用 FormatParam。
func FormatValue(v any) string {
	switch t := v.(type) {
	case string:
		return EscapeXML(t)
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return formatNumber(t)
	case float32:
		return formatNumber(float64(t))
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case []float64:
		parts := make([]string, len(t))
		for i, n := range t {
			parts[i] = formatNumber(n)
		}
		return strings.Join(parts, ",")
	case []int:
		parts := make([]string, len(t))
		for i, n := range t {
			parts[i] = strconv.Itoa(n)
		}
		return strings.Join(parts, ",")
	case schema.Color:
		return formatColor(t)
	case *schema.Color:
		if t != nil {
			return formatColor(*t)
		}
		return ""
	case nil:
		return ""
	}
	return EscapeXML(fmt.Sprint(v))
}

// FormatParam 按参数声明的类型输出属性文本
// 只有颜色参数会把 "#rrggbb" / "#rgb" 字符串转为颜色小数
func FormatParam(kind schema.ValueKind, v any) string {
	if str, ok := v.(string); ok && kind == schema.KindColor {
		if c, ok := schema.ParseHexColor(str); ok {
			return formatColor(c)
		}
	}
	return FormatValue(v)
}

func formatNumber(n float64) string {
	if n == 0 {
		return "0"
	}
	if n == math.Trunc(n) && !math.IsInf(n, 0) {
		return strconv.FormatFloat(n, 'f', 0, 64)
	}
	return strconv.FormatFloat(n, 'f', 3, 64)
}

func formatColor(c schema.Color) string {
	return strconv.FormatFloat(c.R/255, 'f', 3, 64) + "," +
		strconv.FormatFloat(c.G/255, 'f', 3, 64) + "," +
		strconv.FormatFloat(c.B/255, 'f', 3, 64)
}

// ExportFileName 将用户输入转换为以 ".xml" 结尾的文件名
func ExportFileName(text string) string {
	name := strings.TrimSpace(text)
	if name == "" {
		return "particles.xml"
	}
	if !strings.HasSuffix(strings.ToLower(name), ".xml") {
		name += ".xml"
	}
	return name
}
