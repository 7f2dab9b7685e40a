package testutil

import (
	"time"

	"github.com/cassiomorais/pawapay/internal/domain/catalog"
	"github.com/cassiomorais/pawapay/internal/domain/payment"
	"github.com/google/uuid"
)

func NewTestDepositRequest() payment.DepositRequest {
	return payment.DepositRequest{
		DepositID:         uuid.NewString(),
		Payer:             payment.NewMMOPayer("260763456789", catalog.ProviderMTNMoMoZMB),
		Amount:            "15",
		Currency:          catalog.CurrencyZMW,
		ClientReferenceID: payment.Some("REF-4514"),
		CustomerMessage:   payment.Some("Note of 4 to 22 chars"),
	}
}

// NewTestDeposit returns a journal entry in the given status.
func NewTestDeposit(status payment.TransactionStatus) *payment.Deposit {
	now := time.Now()
	return &payment.Deposit{
		ID:          uuid.New(),
		Provider:    catalog.ProviderMTNMoMoZMB,
		PhoneNumber: "260763456789",
		Amount:      "15",
		Currency:    catalog.CurrencyZMW,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// FoundResult is a FOUND status lookup for depositID in the given status.
func FoundResult(depositID string, status payment.TransactionStatus) payment.DepositStatusResult {
	d := payment.DepositDetails{
		DepositID: depositID,
		Status:    status,
		Amount:    "15",
		Currency:  catalog.CurrencyZMW,
		Country:   catalog.CountryZambia,
		Payer:     payment.NewMMOPayer("260763456789", catalog.ProviderMTNMoMoZMB),
		Created:   payment.Some(time.Now()),
	}
	if status == payment.StatusFailed {
		d.FailureReason = payment.Some(payment.NewFailureReason(string(catalog.FailurePaymentNotApproved), ""))
	}
	return payment.DepositStatusResult{Status: payment.StatusFound, Data: payment.Some(d)}
}
