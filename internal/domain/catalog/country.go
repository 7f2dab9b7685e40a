package catalog

import (
	"fmt"

	domainerrors "github.com/cassiomorais/pawapay/internal/domain/errors"
)

// Country is an ISO 3166-1 alpha-3 code of a country served by the gateway.
type Country string

const (
	CountryBenin       Country = "BEN"
	CountryBurkinaFaso Country = "BFA"
	CountryCameroon    Country = "CMR"
	CountryIvoryCoast  Country = "CIV"
	CountryDRCongo     Country = "COD"
	CountryEthiopia    Country = "ETH"
	CountryGabon       Country = "GAB"
	CountryGhana       Country = "GHA"
	CountryKenya       Country = "KEN"
	CountryLesotho     Country = "LSO"
	CountryMalawi      Country = "MWI"
	CountryMozambique  Country = "MOZ"
	CountryNigeria     Country = "NGA"
	CountryCongo       Country = "COG"
	CountryRwanda      Country = "RWA"
	CountrySenegal     Country = "SEN"
	CountrySierraLeone Country = "SLE"
	CountryTanzania    Country = "TZA"
	CountryUganda      Country = "UGA"
	CountryZambia      Country = "ZMB"
)

var countries = []Country{
	CountryBenin, CountryBurkinaFaso, CountryCameroon, CountryIvoryCoast, CountryDRCongo,
	CountryEthiopia, CountryGabon, CountryGhana, CountryKenya, CountryLesotho,
	CountryMalawi, CountryMozambique, CountryNigeria, CountryCongo, CountryRwanda,
	CountrySenegal, CountrySierraLeone, CountryTanzania, CountryUganda, CountryZambia,
}

// Countries returns every supported country.
func Countries() []Country {
	return append([]Country(nil), countries...)
}

func (c Country) String() string { return string(c) }

// IsValid reports whether c belongs to the supported set.
func (c Country) IsValid() bool {
	for _, v := range countries {
		if v == c {
			return true
		}
	}
	return false
}

// Providers returns the providers operating in c, in catalog order.
func (c Country) Providers() []Provider {
	var out []Provider
	for _, p := range providers {
		if p.Country() == c {
			out = append(out, p)
		}
	}
	return out
}

// ParseCountry converts a wire value to a Country.
func ParseCountry(s string) (Country, error) {
	c := Country(s)
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", domainerrors.ErrUnknownCountry, s)
	}
	return c, nil
}
