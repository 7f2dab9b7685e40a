package payment

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/cassiomorais/pawapay/internal/domain/catalog"
	"github.com/cassiomorais/pawapay/internal/domain/errors"
	"github.com/google/uuid"
)

// PayerType is the kind of account funds are collected from.
type PayerType string

const PayerTypeMMO PayerType = "MMO"

// AccountDetails identifies a mobile money wallet.
type AccountDetails struct {
	PhoneNumber string           `json:"phoneNumber"`
	Provider    catalog.Provider `json:"provider"`
}

// UnmarshalJSON strips a leading '+' from the phone number and accepts the
// "phoneNUmber" spelling some gateway responses use.
func (a *AccountDetails) UnmarshalJSON(data []byte) error {
	var raw struct {
		PhoneNumber     *string          `json:"phoneNumber"`
		PhoneNumberTypo *string          `json:"phoneNUmber"`
		Provider        catalog.Provider `json:"provider"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var phone string
	switch {
	case raw.PhoneNumber != nil:
		phone = *raw.PhoneNumber
	case raw.PhoneNumberTypo != nil:
		phone = *raw.PhoneNumberTypo
	}
	*a = AccountDetails{
		PhoneNumber: strings.TrimPrefix(phone, "+"),
		Provider:    raw.Provider,
	}
	return nil
}

// Payer is the party a deposit is collected from.
type Payer struct {
	Type           PayerType      `json:"type"`
	AccountDetails AccountDetails `json:"accountDetails"`
}

// NewMMOPayer returns a mobile money payer.
func NewMMOPayer(phoneNumber string, provider catalog.Provider) Payer {
	return Payer{
		Type: PayerTypeMMO,
		AccountDetails: AccountDetails{
			PhoneNumber: phoneNumber,
			Provider:    provider,
		},
	}
}

// Validate checks the payer and returns it with a normalized phone number.
func (p Payer) Validate() (Payer, error) {
	if p.Type != PayerTypeMMO {
		return Payer{}, errors.NewValidationError("payer.type", "must be MMO")
	}
	phone, err := NormalizePhoneNumber(p.AccountDetails.PhoneNumber)
	if err != nil {
		return Payer{}, errors.NewValidationError("payer.accountDetails.phoneNumber", "must contain 6 to 14 digits")
	}
	if !p.AccountDetails.Provider.IsValid() {
		return Payer{}, errors.NewValidationError("payer.accountDetails.provider", "unsupported provider "+string(p.AccountDetails.Provider))
	}
	p.AccountDetails.PhoneNumber = phone
	return p, nil
}

// DepositRequest asks the gateway to collect Amount from Payer. DepositID is
// chosen by the caller and doubles as the idempotency key: resubmitting the
// same id yields DUPLICATE_IGNORED instead of a second collection.
type DepositRequest struct {
	DepositID            string
	Payer                Payer
	Amount               Amount
	Currency             catalog.Currency
	PreAuthorisationCode Optional[string]
	ClientReferenceID    Optional[string]
	CustomerMessage      Optional[string]
	Metadata             Optional[Metadata]
}

// Validate checks every field that can be verified locally.
func (r DepositRequest) Validate() error {
	if err := ValidateDepositID(r.DepositID); err != nil {
		return err
	}
	if _, err := r.Payer.Validate(); err != nil {
		return err
	}
	if err := (Money{Amount: r.Amount, Currency: r.Currency}).Validate(); err != nil {
		return err
	}
	if md, ok := r.Metadata.Get(); ok {
		if err := md.Validate(MetadataFlat); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDepositID checks that id is a UUID.
func ValidateDepositID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.NewValidationError("depositId", "must be a UUID")
	}
	return nil
}

// DepositResult is the gateway's answer to a deposit initiation.
type DepositResult struct {
	DepositID     Optional[string]        `json:"depositId,omitzero"`
	Status        TransactionStatus       `json:"status"`
	Created       Optional[time.Time]     `json:"created,omitzero"`
	FailureReason Optional[FailureReason] `json:"failureReason,omitzero"`
}

func (r DepositResult) IsAccepted() bool {
	return r.Status == StatusAccepted
}

func (r DepositResult) IsRejected() bool {
	return r.Status == StatusRejected
}

func (r DepositResult) IsDuplicateIgnored() bool {
	return r.Status == StatusDuplicateIgnored
}

// IsSuccessful reports whether the gateway holds the deposit, either newly
// accepted or from an earlier identical request.
func (r DepositResult) IsSuccessful() bool {
	return r.Status.IsSuccessfulInitiation()
}
