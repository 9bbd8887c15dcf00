package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmountText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"4000", "4000"},
		{"$4,250.50", "4250.5"},
		{"  12 ", "12"},
		{"abc", "0"},
		{"", "0"},
		{"12.5.3", "12.5"},
		{"-300", "300"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseAmountText(tt.input)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ParseAmountText(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatMoney(t *testing.T) {
	if got := FormatMoney(decimal.RequireFromString("100")); got != "100.00" {
		t.Errorf("FormatMoney(100) = %q", got)
	}
	if got := FormatMoney(decimal.RequireFromString("0.305")); got != "0.31" {
		t.Errorf("FormatMoney(0.305) = %q", got)
	}
}
