// Package money parses and formats currency amounts the way users type them
// in chat: grouping commas, an optional "$" symbol, and the local "S/" prefix
// are all tolerated on input.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrInvalidAmount is returned for input that does not parse to a positive
// amount. Callers re-prompt rather than abort on it.
var ErrInvalidAmount = errors.New("invalid amount")

// currencyPrefixes are stripped from the front of the input before parsing.
var currencyPrefixes = []string{"S/", "s/"}

// Parse extracts a positive decimal amount from user-supplied text.
// "150" → 150, "1,500.50" → 1500.50, "S/45" and "$45" → 45.
// Non-positive values and anything unparsable return ErrInvalidAmount.
func Parse(input string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(input), ",", "")
	for _, prefix := range currencyPrefixes {
		cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, prefix))
	}
	cleaned = strings.TrimSpace(strings.ReplaceAll(cleaned, "$", ""))

	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, input)
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, input)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %q is not positive", ErrInvalidAmount, input)
	}

	return amount, nil
}

// printer groups thousands with commas ("1,234.56") regardless of the
// host locale, matching the chat messages and the spreadsheet.
var printer = message.NewPrinter(language.English)

// Format renders an amount with two decimals and thousands separators.
func Format(amount decimal.Decimal) string {
	f, _ := amount.Float64()
	return printer.Sprintf("%.2f", f)
}
