package catalog

import (
	"fmt"

	domainerrors "github.com/cassiomorais/pawapay/internal/domain/errors"
)

// Provider identifies a mobile network operator. Every identifier ends with
// the alpha-3 code of the country it operates in.
type Provider string

const (
	ProviderMTNMoMoBEN      Provider = "MTN_MOMO_BEN"
	ProviderMoovBEN         Provider = "MOOV_BEN"
	ProviderMoovBFA         Provider = "MOOV_BFA"
	ProviderOrangeBFA       Provider = "ORANGE_BFA"
	ProviderMTNMoMoCMR      Provider = "MTN_MOMO_CMR"
	ProviderOrangeCMR       Provider = "ORANGE_CMR"
	ProviderMTNMoMoCIV      Provider = "MTN_MOMO_CIV"
	ProviderOrangeCIV       Provider = "ORANGE_CIV"
	ProviderWaveCIV         Provider = "WAVE_CIV"
	ProviderVodacomMPesaCOD Provider = "VODACOM_MPESA_COD"
	ProviderAirtelCOD       Provider = "AIRTEL_COD"
	ProviderOrangeCOD       Provider = "ORANGE_COD"
	ProviderMPesaETH        Provider = "MPESA_ETH"
	ProviderAirtelGAB       Provider = "AIRTEL_GAB"
	ProviderMTNMoMoGHA      Provider = "MTN_MOMO_GHA"
	ProviderAirtelTigoGHA   Provider = "AIRTELTIGO_GHA"
	ProviderVodafoneGHA     Provider = "VODAFONE_GHA"
	ProviderMPesaKEN        Provider = "MPESA_KEN"
	ProviderMPesaLSO        Provider = "MPESA_LSO"
	ProviderAirtelMWI       Provider = "AIRTEL_MWI"
	ProviderTNMMWI          Provider = "TNM_MWI"
	ProviderMovitelMOZ      Provider = "MOVITEL_MOZ"
	ProviderVodacomMOZ      Provider = "VODACOM_MOZ"
	ProviderAirtelNGA       Provider = "AIRTEL_NGA"
	ProviderMTNMoMoNGA      Provider = "MTN_MOMO_NGA"
	ProviderAirtelCOG       Provider = "AIRTEL_COG"
	ProviderMTNMoMoCOG      Provider = "MTN_MOMO_COG"
	ProviderAirtelRWA       Provider = "AIRTEL_RWA"
	ProviderMTNMoMoRWA      Provider = "MTN_MOMO_RWA"
	ProviderFreeSEN         Provider = "FREE_SEN"
	ProviderOrangeSEN       Provider = "ORANGE_SEN"
	ProviderWaveSEN         Provider = "WAVE_SEN"
	ProviderOrangeSLE       Provider = "ORANGE_SLE"
	ProviderAirtelTZA       Provider = "AIRTEL_TZA"
	ProviderVodacomTZA      Provider = "VODACOM_TZA"
	ProviderTigoTZA         Provider = "TIGO_TZA"
	ProviderHalotelTZA      Provider = "HALOTEL_TZA"
	ProviderAirtelOAPIUGA   Provider = "AIRTEL_OAPI_UGA"
	ProviderMTNMoMoUGA      Provider = "MTN_MOMO_UGA"
	ProviderAirtelOAPIZMB   Provider = "AIRTEL_OAPI_ZMB"
	ProviderMTNMoMoZMB      Provider = "MTN_MOMO_ZMB"
	ProviderZamtelZMB       Provider = "ZAMTEL_ZMB"
)

var providers = []Provider{
	ProviderMTNMoMoBEN, ProviderMoovBEN,
	ProviderMoovBFA, ProviderOrangeBFA,
	ProviderMTNMoMoCMR, ProviderOrangeCMR,
	ProviderMTNMoMoCIV, ProviderOrangeCIV, ProviderWaveCIV,
	ProviderVodacomMPesaCOD, ProviderAirtelCOD, ProviderOrangeCOD,
	ProviderMPesaETH,
	ProviderAirtelGAB,
	ProviderMTNMoMoGHA, ProviderAirtelTigoGHA, ProviderVodafoneGHA,
	ProviderMPesaKEN,
	ProviderMPesaLSO,
	ProviderAirtelMWI, ProviderTNMMWI,
	ProviderMovitelMOZ, ProviderVodacomMOZ,
	ProviderAirtelNGA, ProviderMTNMoMoNGA,
	ProviderAirtelCOG, ProviderMTNMoMoCOG,
	ProviderAirtelRWA, ProviderMTNMoMoRWA,
	ProviderFreeSEN, ProviderOrangeSEN, ProviderWaveSEN,
	ProviderOrangeSLE,
	ProviderAirtelTZA, ProviderVodacomTZA, ProviderTigoTZA, ProviderHalotelTZA,
	ProviderAirtelOAPIUGA, ProviderMTNMoMoUGA,
	ProviderAirtelOAPIZMB, ProviderMTNMoMoZMB, ProviderZamtelZMB,
}

// Providers returns every supported provider.
func Providers() []Provider {
	return append([]Provider(nil), providers...)
}

func (p Provider) String() string { return string(p) }

// IsValid reports whether p belongs to the supported set.
func (p Provider) IsValid() bool {
	return p.Country() != ""
}

// Country returns the country p operates in, or "" for an unknown provider.
// Adding a provider without extending this switch breaks TestProviderCountryPartition.
func (p Provider) Country() Country {
	switch p {
	case ProviderMTNMoMoBEN, ProviderMoovBEN:
		return CountryBenin
	case ProviderMoovBFA, ProviderOrangeBFA:
		return CountryBurkinaFaso
	case ProviderMTNMoMoCMR, ProviderOrangeCMR:
		return CountryCameroon
	case ProviderMTNMoMoCIV, ProviderOrangeCIV, ProviderWaveCIV:
		return CountryIvoryCoast
	case ProviderVodacomMPesaCOD, ProviderAirtelCOD, ProviderOrangeCOD:
		return CountryDRCongo
	case ProviderMPesaETH:
		return CountryEthiopia
	case ProviderAirtelGAB:
		return CountryGabon
	case ProviderMTNMoMoGHA, ProviderAirtelTigoGHA, ProviderVodafoneGHA:
		return CountryGhana
	case ProviderMPesaKEN:
		return CountryKenya
	case ProviderMPesaLSO:
		return CountryLesotho
	case ProviderAirtelMWI, ProviderTNMMWI:
		return CountryMalawi
	case ProviderMovitelMOZ, ProviderVodacomMOZ:
		return CountryMozambique
	case ProviderAirtelNGA, ProviderMTNMoMoNGA:
		return CountryNigeria
	case ProviderAirtelCOG, ProviderMTNMoMoCOG:
		return CountryCongo
	case ProviderAirtelRWA, ProviderMTNMoMoRWA:
		return CountryRwanda
	case ProviderFreeSEN, ProviderOrangeSEN, ProviderWaveSEN:
		return CountrySenegal
	case ProviderOrangeSLE:
		return CountrySierraLeone
	case ProviderAirtelTZA, ProviderVodacomTZA, ProviderTigoTZA, ProviderHalotelTZA:
		return CountryTanzania
	case ProviderAirtelOAPIUGA, ProviderMTNMoMoUGA:
		return CountryUganda
	case ProviderAirtelOAPIZMB, ProviderMTNMoMoZMB, ProviderZamtelZMB:
		return CountryZambia
	}
	return ""
}

// CountryFromProvider is the free-function form of Provider.Country.
func CountryFromProvider(p Provider) Country {
	return p.Country()
}

// ParseProvider converts a wire value to a Provider.
func ParseProvider(s string) (Provider, error) {
	p := Provider(s)
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", domainerrors.ErrUnknownProvider, s)
	}
	return p, nil
}
