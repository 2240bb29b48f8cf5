// Package money 金额展示格式化，仅用于展示，不参与记账
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Format 以 en-US 美元格式输出金额，例如 $15,420.50、-$3.10。
// 整数部分直接取自 decimal 的十进制串，任意大小都不会溢出。
func Format(d decimal.Decimal) string {
	rounded := d.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}

	fixed := rounded.StringFixed(2)
	dot := strings.IndexByte(fixed, '.')
	return sign + "$" + group(fixed[:dot]) + fixed[dot:]
}

// group 每三位插入千分位逗号
func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	b.Grow(len(digits) + len(digits)/3)
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
