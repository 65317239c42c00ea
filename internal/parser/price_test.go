package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"₹1,50,000", 150000, true},
		{"₹15 Lakhs", 1500000, true},
		{"₹15.00 Lakhs", 1500000, true},
		{"₹1.5 lakh onwards", 150000, true},
		{"₹2 Crore", 20000000, true},
		{"  ₹ 850 per plate ", 850, true},
		{"₹999.99", 999, true},
		{"", 0, false},
		{"no digits", 0, false},
		{"₹ ,", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizePrice(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConcatDigits(t *testing.T) {
	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"₹499<!-- -->&nbsp;", 499, true},
		{"₹1,099 per plate", 1099, true},
		{"₹ 2 , 500", 2500, true},
		{"on request", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ConcatDigits(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFirstInt(t *testing.T) {
	n, ok := FirstInt("Seating 150 of 300")
	assert.True(t, ok)
	assert.Equal(t, 150, n)

	_, ok = FirstInt("Floating")
	assert.False(t, ok)
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "₹100000 per day", FormatCurrency("1,00,000", "per day"))
	assert.Equal(t, "₹15000 per function", FormatCurrency(" 15,000 ", "per function"))
	assert.Equal(t, "₹5000", FormatCurrency("5000", ""))
}
