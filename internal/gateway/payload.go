package gateway

import (
	"github.com/cassiomorais/pawapay/internal/domain/catalog"
	"github.com/cassiomorais/pawapay/internal/domain/payment"
)

// Payload is an outbound JSON object. It only holds keys that were set:
// absent optional fields never appear, not even as null.
type Payload map[string]any

func putOptional[T any](p Payload, key string, o payment.Optional[T], conv func(T) any) {
	if v, ok := o.Get(); ok {
		p[key] = conv(v)
	}
}

func str[T ~string](v T) any { return string(v) }

// BuildPredictProviderPayload returns the body of a provider prediction.
func BuildPredictProviderPayload(phoneNumber string) (Payload, error) {
	phone, err := payment.NormalizePhoneNumber(phoneNumber)
	if err != nil {
		return nil, err
	}
	return Payload{"phoneNumber": phone}, nil
}

// BuildDepositPayload validates req and returns the body of a deposit initiation.
func BuildDepositPayload(req payment.DepositRequest) (Payload, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	payer, err := req.Payer.Validate()
	if err != nil {
		return nil, err
	}

	p := Payload{
		"depositId": req.DepositID,
		"payer": map[string]any{
			"type": string(payer.Type),
			"accountDetails": map[string]any{
				"phoneNumber": payer.AccountDetails.PhoneNumber,
				"provider":    string(payer.AccountDetails.Provider),
			},
		},
		"amount":   string(req.Amount),
		"currency": string(req.Currency),
	}
	putOptional(p, "preAuthorisationCode", req.PreAuthorisationCode, str[string])
	putOptional(p, "clientReferenceId", req.ClientReferenceID, str[string])
	putOptional(p, "customerMessage", req.CustomerMessage, str[string])
	if md, ok := req.Metadata.Get(); ok {
		items, err := md.Wire(payment.MetadataFlat)
		if err != nil {
			return nil, err
		}
		p["metadata"] = items
	}
	return p, nil
}

// BuildPaymentPagePayload validates req and returns the body of a payment
// page creation, shaping metadata according to profile.
func BuildPaymentPagePayload(req payment.PaymentPageRequest, profile payment.MetadataProfile) (Payload, error) {
	if err := req.Validate(profile); err != nil {
		return nil, err
	}

	p := Payload{
		"depositId": req.DepositID,
		"returnUrl": req.ReturnURL,
	}
	putOptional(p, "customerMessage", req.CustomerMessage, str[string])
	putOptional(p, "amountDetails", req.AmountDetails, func(m payment.Money) any {
		return map[string]any{
			"amount":   string(m.Amount),
			"currency": string(m.Currency),
		}
	})
	if phone, ok := req.PhoneNumber.Get(); ok {
		normalized, err := payment.NormalizePhoneNumber(phone)
		if err != nil {
			return nil, err
		}
		p["phoneNumber"] = normalized
	}
	putOptional(p, "language", req.Language, str[catalog.Language])
	putOptional(p, "country", req.Country, str[catalog.Country])
	putOptional(p, "reason", req.Reason, str[string])
	if md, ok := req.Metadata.Get(); ok {
		items, err := md.Wire(profile)
		if err != nil {
			return nil, err
		}
		p["metadata"] = items
	}
	return p, nil
}
