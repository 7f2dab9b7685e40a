package payment

import "github.com/cassiomorais/pawapay/internal/domain/catalog"

// PredictProviderResult is either a ProviderPrediction or a PredictionFailure.
type PredictProviderResult interface {
	isPredictProviderResult()
}

// ProviderPrediction is the provider the gateway resolved for a phone
// number, together with the number in its sanitized form.
type ProviderPrediction struct {
	Country     catalog.Country  `json:"country"`
	Provider    catalog.Provider `json:"provider"`
	PhoneNumber string           `json:"phoneNumber"`
}

// PredictionFailure is the gateway declining to resolve a provider.
type PredictionFailure struct {
	FailureReason FailureReason `json:"failureReason"`
}

func (ProviderPrediction) isPredictProviderResult() {}
func (PredictionFailure) isPredictProviderResult()  {}
