package render

import (
	"fmt"
	"math"
	"strings"
)

// MaxAmount is the largest magnitude the layout can represent; larger values
// are clamped so the amount column never overflows.
const MaxAmount = 999999.99

// FormatMoney renders a dollar amount as "$1,234.50" (half-up rounding,
// thousands separators). nil formats as the empty string.
func FormatMoney(value *float64) string {
	if value == nil {
		return ""
	}
	v := *value
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	if math.Abs(v) > MaxAmount {
		v = math.Copysign(MaxAmount, v)
	}

	cents := int64(math.Floor(math.Abs(v)*100 + 0.5))
	sign := ""
	if v < 0 && cents > 0 {
		sign = "-"
	}
	return "$" + sign + groupThousands(cents/100) + fmt.Sprintf(".%02d", cents%100)
}

// FormatCents renders an integer cent amount, the native unit of the
// document schema.
func FormatCents(cents int64) string {
	v := float64(cents) / 100
	return FormatMoney(&v)
}

func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var groups []string
	for len(s) > 3 {
		groups = append([]string{s[len(s)-3:]}, groups...)
		s = s[:len(s)-3]
	}
	return s + "," + strings.Join(groups, ",")
}
