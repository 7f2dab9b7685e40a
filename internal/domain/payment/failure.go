package payment

import (
	"encoding/json"

	"github.com/cassiomorais/pawapay/internal/domain/catalog"
)

// DefaultFailureMessage is used when the gateway omits failureMessage.
const DefaultFailureMessage = "Unknown error"

// FailureReason describes why the gateway rejected or failed an operation.
type FailureReason struct {
	FailureCode    catalog.FailureCode `json:"failureCode"`
	FailureMessage string              `json:"failureMessage"`
}

// NewFailureReason applies the decode defaults: an empty or unknown code
// becomes UNKNOWN_ERROR and an empty message becomes DefaultFailureMessage.
func NewFailureReason(code, message string) FailureReason {
	if message == "" {
		message = DefaultFailureMessage
	}
	return FailureReason{
		FailureCode:    catalog.ParseFailureCode(code),
		FailureMessage: message,
	}
}

// UnmarshalJSON applies the same defaults as NewFailureReason.
func (f *FailureReason) UnmarshalJSON(data []byte) error {
	var raw struct {
		FailureCode    *string `json:"failureCode"`
		FailureMessage *string `json:"failureMessage"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var code, message string
	if raw.FailureCode != nil {
		code = *raw.FailureCode
	}
	if raw.FailureMessage != nil {
		message = *raw.FailureMessage
	}
	*f = NewFailureReason(code, message)
	return nil
}

func (f FailureReason) Error() string {
	return string(f.FailureCode) + ": " + f.FailureMessage
}
