package utils

import (
	"regexp"

	"github.com/shopspring/decimal"
)

var nonAmountChars = regexp.MustCompile(`[^0-9.]`)

// ParseAmountText turns user-typed text into an amount. Everything except
// digits and dots is dropped; anything unparseable becomes zero.
func ParseAmountText(text string) decimal.Decimal {
	cleaned := nonAmountChars.ReplaceAllString(text, "")
	if cleaned == "" {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return leadingNumber(cleaned)
	}
	return amount
}

// leadingNumber mimics parseFloat on inputs like "12.5.3": it keeps the
// longest valid prefix.
func leadingNumber(s string) decimal.Decimal {
	for end := len(s); end > 0; end-- {
		if d, err := decimal.NewFromString(s[:end]); err == nil {
			return d
		}
	}
	return decimal.Zero
}

// FormatMoney renders an amount with two decimals.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}
