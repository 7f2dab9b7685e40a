package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cassiomorais/pawapay/internal/domain/catalog"
	domainerrors "github.com/cassiomorais/pawapay/internal/domain/errors"
	"github.com/cassiomorais/pawapay/internal/domain/payment"
)

// object is a decoded JSON object whose values are decoded lazily, once a
// shape has been chosen from the keys present.
type object map[string]json.RawMessage

var errNotObject = errors.New("response body is not a JSON object")

func parseObject(body []byte) (object, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errNotObject
	}
	var obj object
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// has reports whether key is present with a non-null value.
func (o object) has(key string) bool {
	raw, ok := o[key]
	return ok && !isNull(raw)
}

// hasKey reports whether key is present, whatever its value.
func (o object) hasKey(key string) bool {
	_, ok := o[key]
	return ok
}

func (o object) hasAll(keys ...string) bool {
	for _, k := range keys {
		if !o.has(k) {
			return false
		}
	}
	return true
}

func (o object) hasAny(keys ...string) bool {
	for _, k := range keys {
		if o.has(k) {
			return true
		}
	}
	return false
}

// into decodes the whole object into v.
func (o object) into(v any) error {
	data, err := json.Marshal(o)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (o object) text(key string) (string, error) {
	var s string
	if !o.has(key) {
		return "", nil
	}
	if err := json.Unmarshal(o[key], &s); err != nil {
		return "", fmt.Errorf("field %s: %w", key, err)
	}
	return s, nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// shape is one recognizable response layout. Shapes are tried in order and
// the first whose match succeeds builds the result.
type shape[T any] struct {
	name  string
	match func(object) bool
	build func(object) (T, error)
}

var errNoShape = errors.New("no response shape matched")

func discriminate[T any](obj object, shapes []shape[T]) (T, error) {
	var zero T
	for _, s := range shapes {
		if !s.match(obj) {
			continue
		}
		v, err := s.build(obj)
		if err != nil {
			return zero, fmt.Errorf("%w: %s: %w", domainerrors.ErrMalformedResponse, s.name, err)
		}
		return v, nil
	}
	return zero, errNoShape
}

var predictProviderShapes = []shape[payment.PredictProviderResult]{
	{
		name:  "prediction",
		match: func(o object) bool { return o.hasAll("provider", "phoneNumber", "country") },
		build: func(o object) (payment.PredictProviderResult, error) {
			var p payment.ProviderPrediction
			if err := o.into(&p); err != nil {
				return nil, err
			}
			if _, err := catalog.ParseProvider(string(p.Provider)); err != nil {
				return nil, err
			}
			if _, err := catalog.ParseCountry(string(p.Country)); err != nil {
				return nil, err
			}
			return p, nil
		},
	},
	{
		name:  "prediction failure",
		match: func(o object) bool { return o.hasAny("failureMessage", "failureReason", "failureCode") },
		build: func(o object) (payment.PredictProviderResult, error) {
			fr, err := failureReasonOf(o)
			if err != nil {
				return nil, err
			}
			return payment.PredictionFailure{FailureReason: fr}, nil
		},
	},
}

var paymentPageShapes = []shape[payment.PaymentPageResult]{
	{
		name:  "payment page",
		match: func(o object) bool { return o.has("redirectUrl") },
		build: func(o object) (payment.PaymentPageResult, error) {
			var s payment.PaymentPageSuccess
			if err := o.into(&s); err != nil {
				return nil, err
			}
			return s, nil
		},
	},
	{
		name:  "payment page failure",
		match: func(o object) bool { return o.hasKey("failureReason") },
		build: func(o object) (payment.PaymentPageResult, error) {
			var raw struct {
				DepositID payment.Optional[string] `json:"depositId"`
				Status    payment.Optional[string] `json:"status"`
			}
			if err := o.into(&raw); err != nil {
				return nil, err
			}
			f := payment.PaymentPageFailure{DepositID: raw.DepositID}
			if s, ok := raw.Status.Get(); ok {
				status, err := payment.ParseTransactionStatus(s)
				if err != nil {
					return nil, err
				}
				f.Status = payment.Some(status)
			}
			fr, err := nestedFailureReason(o)
			if err != nil {
				return nil, err
			}
			f.FailureReason = fr
			return f, nil
		},
	},
}

var depositShapes = []shape[payment.DepositResult]{
	{
		name:  "deposit",
		match: func(o object) bool { return o.has("status") },
		build: func(o object) (payment.DepositResult, error) {
			var r payment.DepositResult
			if err := o.into(&r); err != nil {
				return r, err
			}
			if r.Status.Phase() != payment.PhaseInitiation {
				return r, fmt.Errorf("%w: %q is not an initiation outcome", domainerrors.ErrUnknownStatus, r.Status)
			}
			return r, nil
		},
	},
}

var depositStatusShapes = []shape[payment.DepositStatusResult]{
	{
		name: "deposit status",
		match: func(o object) bool {
			s, err := o.text("status")
			return err == nil && (s == string(payment.StatusFound) || s == string(payment.StatusNotFound))
		},
		build: func(o object) (payment.DepositStatusResult, error) {
			s, _ := o.text("status")
			result := payment.DepositStatusResult{Status: payment.TransactionStatus(s)}
			if result.Status != payment.StatusFound || !o.has("data") {
				return result, nil
			}
			var d payment.DepositDetails
			if err := json.Unmarshal(o["data"], &d); err != nil {
				return result, err
			}
			switch d.Status.Phase() {
			case payment.PhaseInitiation, payment.PhaseIntermediate, payment.PhaseTerminal:
			default:
				return result, fmt.Errorf("%w: %q", domainerrors.ErrUnknownStatus, d.Status)
			}
			result.Data = payment.Some(d)
			return result, nil
		},
	},
}

// failureReasonOf reads a failure reported either as a nested failureReason
// object or as top-level failureCode and failureMessage keys.
func failureReasonOf(o object) (payment.FailureReason, error) {
	if raw, ok := o["failureReason"]; ok && isObject(raw) {
		return nestedFailureReason(o)
	}
	code, err := o.text("failureCode")
	if err != nil {
		return payment.FailureReason{}, err
	}
	message, err := o.text("failureMessage")
	if err != nil {
		return payment.FailureReason{}, err
	}
	if message == "" && o.has("failureReason") {
		// a plain string reason
		message, _ = o.text("failureReason")
	}
	return payment.NewFailureReason(code, message), nil
}

// nestedFailureReason decodes the failureReason object; null or missing
// yields the defaults.
func nestedFailureReason(o object) (payment.FailureReason, error) {
	raw, ok := o["failureReason"]
	if !ok || isNull(raw) {
		return payment.NewFailureReason("", ""), nil
	}
	var fr payment.FailureReason
	if err := json.Unmarshal(raw, &fr); err != nil {
		return fr, err
	}
	return fr, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
