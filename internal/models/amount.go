package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a bank-export amount string to decimal.Decimal.
// It normalizes the decimal comma to a dot and strips plain and non-breaking
// spaces, currency symbols and thousand separators before parsing.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	amount := strings.TrimSpace(amountStr)
	if amount == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	amount = strings.ReplaceAll(amount, ",", ".")
	amount = strings.ReplaceAll(amount, " ", "")
	amount = strings.ReplaceAll(amount, " ", "")
	amount = strings.ReplaceAll(amount, "'", "")
	amount = strings.ReplaceAll(amount, "EUR", "")
	amount = strings.ReplaceAll(amount, "€", "")
	amount = strings.TrimPrefix(amount, "+")

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", amountStr, err)
	}
	return dec, nil
}

// TypeFromAmount derives the transaction direction from the raw amount sign.
// Negative means money out; zero and positive mean money in.
func TypeFromAmount(amount decimal.Decimal) TransactionType {
	if amount.IsNegative() {
		return TypeDebit
	}
	return TypeCredit
}
