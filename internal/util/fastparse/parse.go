// Package fastparse 提供 CSV 字段的严格数值解析。
// 数量与价格字段在入口处即完成校验，非有限值（NaN/Inf）和负数
// 一律拒绝，保证核心引擎内部不出现非有限算术结果。
package fastparse

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseFloat 解析浮点数字符串
// 参数 s: 待解析的字符串，如 "12345.67"
// 返回: 解析后的浮点数和可能的错误
func ParseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// ParseNonNegative 解析非负的有限浮点数
// 用于数量与价格字段：拒绝 NaN、±Inf 与负数。
// 参数 s: 待解析的字符串
// 参数 field: 字段名称，用于错误消息
// 返回: 解析后的浮点数，失败或越界时返回错误
func ParseNonNegative(s string, field string) (float64, error) {
	v, err := ParseFloat(s)
	if err != nil {
		return 0, fmt.Errorf("%s: 无法解析为数值: %q", field, s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s: 数值非有限: %q", field, s)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s: 不能为负数: %q", field, s)
	}
	return v, nil
}

// FormatFloat 格式化浮点数为字符串
// 参数 f: 待格式化的浮点数
// 参数 prec: 小数位数，-1 表示最短表示
// 返回: 格式化后的字符串
func FormatFloat(f float64, prec int) string {
	return strconv.FormatFloat(f, 'f', prec, 64)
}
