// Package catalog holds the closed vocabularies accepted by the gateway:
// currencies, countries, providers, languages and failure codes.
package catalog

import (
	"fmt"

	domainerrors "github.com/cassiomorais/pawapay/internal/domain/errors"
)

// Currency is an ISO 4217 code supported by the gateway.
type Currency string

const (
	CurrencyXOF Currency = "XOF" // Benin, Burkina Faso, Côte d'Ivoire, Senegal
	CurrencyXAF Currency = "XAF" // Cameroon, Republic of the Congo, Gabon
	CurrencyCDF Currency = "CDF"
	CurrencyUSD Currency = "USD" // DR Congo
	CurrencyETB Currency = "ETB"
	CurrencyGHS Currency = "GHS"
	CurrencyKES Currency = "KES"
	CurrencyLSL Currency = "LSL"
	CurrencyMWK Currency = "MWK"
	CurrencyMZN Currency = "MZN"
	CurrencyNGN Currency = "NGN"
	CurrencyRWF Currency = "RWF"
	CurrencySLE Currency = "SLE"
	CurrencyTZS Currency = "TZS"
	CurrencyUGX Currency = "UGX"
	CurrencyZMW Currency = "ZMW"
)

var currencies = []Currency{
	CurrencyXOF, CurrencyXAF, CurrencyCDF, CurrencyUSD, CurrencyETB, CurrencyGHS,
	CurrencyKES, CurrencyLSL, CurrencyMWK, CurrencyMZN, CurrencyNGN, CurrencyRWF,
	CurrencySLE, CurrencyTZS, CurrencyUGX, CurrencyZMW,
}

// Currencies returns every supported currency.
func Currencies() []Currency {
	return append([]Currency(nil), currencies...)
}

func (c Currency) String() string { return string(c) }

// IsValid reports whether c belongs to the supported set.
func (c Currency) IsValid() bool {
	for _, v := range currencies {
		if v == c {
			return true
		}
	}
	return false
}

// ParseCurrency converts a wire value to a Currency.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(s)
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", domainerrors.ErrUnknownCurrency, s)
	}
	return c, nil
}
