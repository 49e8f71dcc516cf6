package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// decorated input like "$1,250.50" or "€ 900" is accepted; the stored value
// is always the normalized exact decimal.
var amountDecoration = strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "")

// ParseAmount parses a monetary input into an exact decimal value.
// Never a float: currency comparisons and aggregates stay exact.
func ParseAmount(raw string) (decimal.Decimal, error) {
	cleaned := amountDecoration.Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	if amount.Sign() <= 0 {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	// Storage carries two decimal places; sub-cent precision rejects here
	// rather than being rounded on write.
	if !amount.Equal(amount.Round(2)) {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return amount, nil
}
