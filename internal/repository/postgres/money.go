package postgres

import (
	"fmt"
	"strings"

	"github.com/cassiomorais/pawapay/internal/domain/payment"
	"github.com/shopspring/decimal"
)

// numericToAmount reads a NUMERIC column rendered as text, dropping the
// trailing zeros PostgreSQL may add.
func numericToAmount(s string) (payment.Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty numeric string")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", fmt.Errorf("parse numeric %q: %w", s, err)
	}

	return payment.Amount(d.String()), nil
}

// amountToNumeric renders an amount for a NUMERIC parameter.
func amountToNumeric(a payment.Amount) (string, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(string(a)))
	if err != nil {
		return "", fmt.Errorf("parse amount %q: %w", a, err)
	}
	return d.String(), nil
}
