package payment

import (
	"regexp"

	"github.com/cassiomorais/pawapay/internal/domain/catalog"
	"github.com/cassiomorais/pawapay/internal/domain/errors"
	"github.com/shopspring/decimal"
)

var amountPattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// Amount is a decimal string as the gateway expects it, for example "1500"
// or "25.50". The original text is kept so it is sent back unchanged.
type Amount string

// ParseAmount validates raw and returns it as an Amount.
func ParseAmount(raw string) (Amount, error) {
	a := Amount(raw)
	if err := a.Validate(); err != nil {
		return "", err
	}
	return a, nil
}

// Validate checks the wire format: digits with at most two fraction digits,
// no sign and no exponent. Zero is well formed.
func (a Amount) Validate() error {
	if !amountPattern.MatchString(string(a)) {
		return errors.NewValidationError("amount", "must be a decimal with at most two fraction digits")
	}
	return nil
}

// IsPositive reports whether a is well formed and greater than zero.
func (a Amount) IsPositive() bool {
	return a.Validate() == nil && a.Decimal().IsPositive()
}

// Decimal returns the numeric value of a. It returns zero for an invalid amount.
func (a Amount) Decimal() decimal.Decimal {
	d, err := decimal.NewFromString(string(a))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (a Amount) String() string { return string(a) }

// Money pairs an amount with its currency.
type Money struct {
	Amount   Amount           `json:"amount"`
	Currency catalog.Currency `json:"currency"`
}

// Validate checks both the amount and the currency.
func (m Money) Validate() error {
	if err := m.Amount.Validate(); err != nil {
		return err
	}
	if !m.Currency.IsValid() {
		return errors.NewValidationError("currency", "unsupported currency "+string(m.Currency))
	}
	return nil
}

func (m Money) String() string {
	return string(m.Amount) + " " + string(m.Currency)
}
