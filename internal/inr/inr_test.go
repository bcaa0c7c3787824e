package inr

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "₹1,500,000", Format(decimal.NewFromInt(1_500_000)))
	assert.Equal(t, "₹23,959", Format(decimal.RequireFromString("23958.64")))
	assert.Equal(t, "₹0", Format(decimal.Zero))
	assert.Equal(t, "-₹1,000", Format(decimal.NewFromInt(-1000)))
}

func TestFormatExact(t *testing.T) {
	assert.Equal(t, "₹23,958.64", FormatExact(decimal.RequireFromString("23958.638")))
	assert.Equal(t, "₹0.50", FormatExact(decimal.RequireFromString("0.5")))
}

func TestCompact(t *testing.T) {
	tests := []struct {
		amount   string
		decimals bool
		want     string
	}{
		{"97969692.16", false, "₹9.8Cr"},
		{"97969692.16", true, "₹9.80Cr"},
		{"1200000", false, "₹12.0L"},
		{"150000", true, "₹1.50L"},
		{"23958.64", false, "₹24.0K"},
		{"999", false, "₹999"},
		{"999.5", true, "₹999.50"},
		{"-2500000", false, "-₹25.0L"},
		{"0", false, "₹0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Compact(decimal.RequireFromString(tt.amount), tt.decimals), tt.amount)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"₹12L", "1200000"},
		{"1.5cr", "15000000"},
		{"1.5 Cr", "15000000"},
		{"80,000", "80000"},
		{"25k", "25000"},
		{"  ", "0"},
		{"4000000", "4000000"},
	}
	for _, tt := range tests {
		got, err := Parse(tt.input)
		require.NoError(t, err, tt.input)
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "%q: got %s", tt.input, got)
	}

	_, err := Parse("lots")
	assert.Error(t, err)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "12.00%", Percent(decimal.RequireFromString("0.12"), 2))
	assert.Equal(t, "5.0%", Percent(decimal.RequireFromString("0.05"), 1))
}
