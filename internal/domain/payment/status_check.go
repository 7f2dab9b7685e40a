package payment

import (
	"time"

	"github.com/cassiomorais/pawapay/internal/domain/catalog"
)

// DepositStatusResult is the outcome of a status lookup. Data is present only
// when Status is FOUND.
type DepositStatusResult struct {
	Status TransactionStatus        `json:"status"`
	Data   Optional[DepositDetails] `json:"data,omitzero"`
}

// NotFoundResult is the lookup outcome for an unknown deposit id.
func NotFoundResult() DepositStatusResult {
	return DepositStatusResult{Status: StatusNotFound}
}

func (r DepositStatusResult) IsFound() bool {
	return r.Status == StatusFound
}

func (r DepositStatusResult) IsNotFound() bool {
	return r.Status == StatusNotFound
}

// IsFinal reports whether the deposit was found in a terminal status.
func (r DepositStatusResult) IsFinal() bool {
	d, ok := r.Data.Get()
	return ok && d.IsFinal()
}

// DepositDetails is the gateway's view of a deposit.
type DepositDetails struct {
	DepositID             string                  `json:"depositId"`
	Status                TransactionStatus       `json:"status"`
	Amount                Amount                  `json:"amount"`
	Currency              catalog.Currency        `json:"currency"`
	Country               catalog.Country         `json:"country"`
	Payer                 Payer                   `json:"payer"`
	CustomerMessage       Optional[string]        `json:"customerMessage,omitzero"`
	ClientReferenceID     Optional[string]        `json:"clientReferenceId,omitzero"`
	ProviderTransactionID Optional[string]        `json:"providerTransactionId,omitzero"`
	Created               Optional[time.Time]     `json:"created,omitzero"`
	FailureReason         Optional[FailureReason] `json:"failureReason,omitzero"`
	Metadata              Optional[Metadata]      `json:"metadata,omitzero"`
}

func (d DepositDetails) IsFinal() bool {
	return d.Status.IsFinal()
}

func (d DepositDetails) IsProcessing() bool {
	return d.Status.IsProcessing()
}
