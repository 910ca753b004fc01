package models

import (
	"strconv"
	"strings"
)

// GroupThousands formats n rounded to a whole number with comma separators.
func GroupThousands(n float64) string {
	str := strconv.FormatFloat(n, 'f', 0, 64)

	negative := strings.HasPrefix(str, "-")
	str = strings.TrimPrefix(str, "-")

	var b strings.Builder
	for i, digit := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			b.WriteRune(',')
		}
		b.WriteRune(digit)
	}

	if negative {
		return "-" + b.String()
	}
	return b.String()
}

// Rupees formats n as an amount in Indian rupees, e.g. ₹1,500.
func Rupees(n float64) string {
	return "₹" + GroupThousands(n)
}
