package controller

import (
	"time"

	"github.com/cassiomorais/pawapay/internal/domain/catalog"
	"github.com/cassiomorais/pawapay/internal/domain/payment"
)

// Response is the envelope every gateway-backed endpoint answers with.
type Response struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

type PredictProviderRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,msisdn"`
}

type MoneyRequest struct {
	Amount   string `json:"amount" validate:"required,amount"`
	Currency string `json:"currency" validate:"required,currency"`
}

type PaymentPageRequest struct {
	DepositID       string           `json:"depositId" validate:"required,uuid"`
	ReturnURL       string           `json:"returnUrl" validate:"required,url,max=500"`
	CustomerMessage *string          `json:"customerMessage" validate:"omitempty,min=4,max=22"`
	AmountDetails   *MoneyRequest    `json:"amountDetails" validate:"required"`
	PhoneNumber     *string          `json:"phoneNumber" validate:"omitempty,msisdn"`
	Language        *string          `json:"language" validate:"omitempty,language"`
	Country         *string          `json:"country" validate:"omitempty,country"`
	Reason          *string          `json:"reason" validate:"omitempty,max=255"`
	Metadata        []map[string]any `json:"metadata" validate:"omitempty,max=10"`

	// Session selects metadata items that wrap their fields under "data".
	Session bool `json:"session"`
}

func (r PaymentPageRequest) toDomain() payment.PaymentPageRequest {
	req := payment.PaymentPageRequest{
		DepositID:       r.DepositID,
		ReturnURL:       r.ReturnURL,
		CustomerMessage: payment.FromPtr(r.CustomerMessage),
		PhoneNumber:     payment.FromPtr(r.PhoneNumber),
		Reason:          payment.FromPtr(r.Reason),
	}
	if r.AmountDetails != nil {
		req.AmountDetails = payment.Some(payment.Money{
			Amount:   payment.Amount(r.AmountDetails.Amount),
			Currency: catalog.Currency(r.AmountDetails.Currency),
		})
	}
	if r.Language != nil {
		req.Language = payment.Some(catalog.Language(*r.Language))
	}
	if r.Country != nil {
		req.Country = payment.Some(catalog.Country(*r.Country))
	}
	if r.Metadata != nil {
		req.Metadata = payment.Some(toMetadata(r.Metadata))
	}
	return req
}

type AccountDetailsRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,msisdn"`
	Provider    string `json:"provider" validate:"required,provider"`
}

type PayerRequest struct {
	Type           string                `json:"type" validate:"required,oneof=MMO"`
	AccountDetails AccountDetailsRequest `json:"accountDetails" validate:"required"`
}

type InitiateDepositRequest struct {
	DepositID            string           `json:"depositId" validate:"required,uuid"`
	Payer                PayerRequest     `json:"payer" validate:"required"`
	Amount               string           `json:"amount" validate:"required,amount"`
	Currency             string           `json:"currency" validate:"required,currency"`
	PreAuthorisationCode *string          `json:"preAuthorisationCode" validate:"omitempty,max=255"`
	ClientReferenceID    *string          `json:"clientReferenceId" validate:"omitempty,max=255"`
	CustomerMessage      *string          `json:"customerMessage" validate:"omitempty,min=4,max=22"`
	Metadata             []map[string]any `json:"metadata" validate:"omitempty,max=10"`
}

func (r InitiateDepositRequest) toDomain() payment.DepositRequest {
	req := payment.DepositRequest{
		DepositID: r.DepositID,
		Payer: payment.Payer{
			Type: payment.PayerType(r.Payer.Type),
			AccountDetails: payment.AccountDetails{
				PhoneNumber: r.Payer.AccountDetails.PhoneNumber,
				Provider:    catalog.Provider(r.Payer.AccountDetails.Provider),
			},
		},
		Amount:               payment.Amount(r.Amount),
		Currency:             catalog.Currency(r.Currency),
		PreAuthorisationCode: payment.FromPtr(r.PreAuthorisationCode),
		ClientReferenceID:    payment.FromPtr(r.ClientReferenceID),
		CustomerMessage:      payment.FromPtr(r.CustomerMessage),
	}
	if r.Metadata != nil {
		req.Metadata = payment.Some(toMetadata(r.Metadata))
	}
	return req
}

// toMetadata keeps items as sent. They are checked against the metadata
// profile of the operation they are used for.
func toMetadata(items []map[string]any) payment.Metadata {
	md := make(payment.Metadata, len(items))
	for i, item := range items {
		md[i] = payment.MetadataItem(item)
	}
	return md
}

// DepositResponse is a journal entry as the API exposes it.
type DepositResponse struct {
	DepositID             string                 `json:"depositId"`
	Status                string                 `json:"status"`
	Provider              string                 `json:"provider"`
	PhoneNumber           string                 `json:"phoneNumber"`
	Amount                string                 `json:"amount"`
	Currency              string                 `json:"currency"`
	FailureCode           *string                `json:"failureCode,omitempty"`
	FailureMessage        *string                `json:"failureMessage,omitempty"`
	ProviderTransactionID *string                `json:"providerTransactionId,omitempty"`
	ClientReferenceID     *string                `json:"clientReferenceId,omitempty"`
	Settled               bool                   `json:"settled"`
	CheckCount            int                    `json:"checkCount"`
	LastCheckedAt         *time.Time             `json:"lastCheckedAt,omitempty"`
	DeadLetteredAt        *time.Time             `json:"deadLetteredAt,omitempty"`
	CreatedAt             time.Time              `json:"createdAt"`
	UpdatedAt             time.Time              `json:"updatedAt"`
	CompletedAt           *time.Time             `json:"completedAt,omitempty"`
	Events                []DepositEventResponse `json:"events"`
}

type DepositEventResponse struct {
	Type      string         `json:"type"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

func toDepositResponse(d *payment.Deposit, events []*payment.DepositEvent) DepositResponse {
	resp := DepositResponse{
		DepositID:             d.ID.String(),
		Status:                string(d.Status),
		Provider:              string(d.Provider),
		PhoneNumber:           d.PhoneNumber,
		Amount:                d.Amount.String(),
		Currency:              string(d.Currency),
		FailureMessage:        d.FailureMessage,
		ProviderTransactionID: d.ProviderTransactionID,
		ClientReferenceID:     d.ClientReferenceID,
		Settled:               d.IsSettled(),
		CheckCount:            d.CheckCount,
		LastCheckedAt:         d.LastCheckedAt,
		DeadLetteredAt:        d.DeadLetteredAt,
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
		CompletedAt:           d.CompletedAt,
		Events:                make([]DepositEventResponse, 0, len(events)),
	}
	if d.FailureCode != nil {
		code := string(*d.FailureCode)
		resp.FailureCode = &code
	}
	for _, e := range events {
		resp.Events = append(resp.Events, DepositEventResponse{
			Type:      e.EventType,
			Data:      e.EventData,
			CreatedAt: e.CreatedAt,
		})
	}
	return resp
}
