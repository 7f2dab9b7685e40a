package payment

import (
	"regexp"
	"strings"

	"github.com/cassiomorais/pawapay/internal/domain/errors"
)

var msisdnPattern = regexp.MustCompile(`^\d{6,14}$`)

var phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")

// NormalizePhoneNumber strips a leading '+' and common separators and
// returns the remaining digits. The result must hold 6 to 14 digits.
func NormalizePhoneNumber(raw string) (string, error) {
	phone := strings.TrimSpace(raw)
	phone = strings.TrimPrefix(phone, "+")
	phone = phoneSeparators.Replace(phone)
	if !msisdnPattern.MatchString(phone) {
		return "", errors.NewValidationError("phoneNumber", "must contain 6 to 14 digits")
	}
	return phone, nil
}
