package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"5", "$5.00"},
		{"50.5", "$50.50"},
		{"999.999", "$1,000.00"},
		{"15420.50", "$15,420.50"},
		{"8750.25", "$8,750.25"},
		{"1234567.891", "$1,234,567.89"},
		{"-3.1", "-$3.10"},
		{"-0.001", "$0.00"},
		{"100", "$100.00"},
		{"100000", "$100,000.00"},
		{"9223372036854775807", "$9,223,372,036,854,775,807.00"},
		{"10000000000000000000.00", "$10,000,000,000,000,000,000.00"},
		{"-123456789012345678901.235", "-$123,456,789,012,345,678,901.24"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(decimal.RequireFromString(tt.in)))
		})
	}
}
