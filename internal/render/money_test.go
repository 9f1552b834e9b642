package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func f(v float64) *float64 { return &v }

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		name  string
		value *float64
		want  string
	}{
		{"nil", nil, ""},
		{"zero", f(0), "$0.00"},
		{"simple", f(1234.5), "$1,234.50"},
		{"no grouping under a thousand", f(999.99), "$999.99"},
		{"grouping at a million clamp", f(999999.99), "$999,999.99"},
		{"clamped above maximum", f(12345678.9), "$999,999.99"},
		{"negative", f(-1234.5), "$-1,234.50"},
		{"negative clamped", f(-2000000), "$-999,999.99"},
		{"half-up rounding", f(0.005), "$0.01"},
		{"rounding carries into dollars", f(1.999), "$2.00"},
		{"small negative rounds to zero without sign", f(-0.001), "$0.00"},
		{"nan", f(math.NaN()), ""},
		{"positive infinity", f(math.Inf(1)), ""},
		{"negative infinity", f(math.Inf(-1)), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMoney(tt.value))
		})
	}
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "$0.00", FormatCents(0))
	assert.Equal(t, "$1,234.50", FormatCents(123450))
	assert.Equal(t, "$-50.00", FormatCents(-5000))
	assert.Equal(t, "$136,000.00", FormatCents(13600000))
}

func TestGroupThousands(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{123456, "123,456"},
		{1234567, "1,234,567"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, groupThousands(tt.in))
	}
}
