package effect

import (
	"fmt"
	"sort"
	"strings"
)

// Validate 对单个特效做提示性检查，返回的消息仅用于显示，不会阻止导出
//
// 检查项：
//   - 特效名不为空
//   - 生命周期类参数（名字包含 "lifetime"）大于 0
//   - 数量类参数（名字包含 "count"）不小于 0
//   - 时间轴时长不为负
func Validate(s *State) []string {
	var warnings []string
	if strings.TrimSpace(s.Name) == "" {
		warnings = append(warnings, "effect name is empty")
	}

	names := make([]string, 0, len(s.Params))
	for name := range s.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		lower := strings.ToLower(name)
		lifetime := strings.Contains(lower, "lifetime")
		count := strings.Contains(lower, "count")
		if !lifetime && !count {
			continue
		}
		v, err := ToNumber(s.Params[name])
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		if lifetime && v <= 0 {
			warnings = append(warnings, fmt.Sprintf("%s must be greater than 0, got %g", name, v))
		}
		if count && v < 0 {
			warnings = append(warnings, fmt.Sprintf("%s must not be negative, got %g", name, v))
		}
	}

	if s.Timeline.Duration < 0 {
		warnings = append(warnings, fmt.Sprintf("timeline duration must not be negative, got %g", s.Timeline.Duration))
	}
	return warnings
}

// ValidateTree 检查 s 及其子特效，子特效的消息以特效路径为前缀
func ValidateTree(s *State) []string {
	var warnings []string
	var visit func(e *State, path string)
	visit = func(e *State, path string) {
		label := e.Name
		if label == "" {
			label = "<unnamed>"
		}
		if path != "" {
			label = path + "/" + label
		}
		for _, w := range Validate(e) {
			warnings = append(warnings, label+": "+w)
		}
		for _, c := range e.Children {
			if c != nil {
				visit(c, label)
			}
		}
	}
	visit(s, "")
	return warnings
}
