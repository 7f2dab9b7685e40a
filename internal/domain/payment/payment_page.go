package payment

import (
	"net/url"

	"github.com/cassiomorais/pawapay/internal/domain/catalog"
	"github.com/cassiomorais/pawapay/internal/domain/errors"
)

// PaymentPageRequest creates a hosted page where the customer completes the deposit.
type PaymentPageRequest struct {
	DepositID       string
	ReturnURL       string
	CustomerMessage Optional[string]
	AmountDetails   Optional[Money]
	PhoneNumber     Optional[string]
	Language        Optional[catalog.Language]
	Country         Optional[catalog.Country]
	Reason          Optional[string]
	Metadata        Optional[Metadata]
}

// Validate checks every field that can be verified locally, using profile
// for the metadata rules.
func (r PaymentPageRequest) Validate(profile MetadataProfile) error {
	if err := ValidateDepositID(r.DepositID); err != nil {
		return err
	}
	u, err := url.Parse(r.ReturnURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.NewValidationError("returnUrl", "must be an absolute URL")
	}
	if money, ok := r.AmountDetails.Get(); ok {
		if err := money.Validate(); err != nil {
			return err
		}
	}
	if phone, ok := r.PhoneNumber.Get(); ok {
		if _, err := NormalizePhoneNumber(phone); err != nil {
			return err
		}
	}
	if lang, ok := r.Language.Get(); ok && !lang.IsValid() {
		return errors.NewValidationError("language", "unsupported language "+string(lang))
	}
	if country, ok := r.Country.Get(); ok && !country.IsValid() {
		return errors.NewValidationError("country", "unsupported country "+string(country))
	}
	if md, ok := r.Metadata.Get(); ok {
		if err := md.Validate(profile); err != nil {
			return err
		}
	}
	return nil
}

// PaymentPageResult is either a PaymentPageSuccess or a PaymentPageFailure.
type PaymentPageResult interface {
	isPaymentPageResult()
}

// PaymentPageSuccess carries the URL the customer is sent to.
type PaymentPageSuccess struct {
	RedirectURL string `json:"redirectUrl"`
}

// PaymentPageFailure always carries a FailureReason.
type PaymentPageFailure struct {
	DepositID     Optional[string]            `json:"depositId,omitzero"`
	Status        Optional[TransactionStatus] `json:"status,omitzero"`
	FailureReason FailureReason               `json:"failureReason"`
}

func (PaymentPageSuccess) isPaymentPageResult() {}
func (PaymentPageFailure) isPaymentPageResult() {}
