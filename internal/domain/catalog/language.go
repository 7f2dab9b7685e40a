package catalog

import (
	"fmt"

	domainerrors "github.com/cassiomorais/pawapay/internal/domain/errors"
)

// Language of the hosted payment page.
type Language string

const (
	LanguageEN Language = "EN"
	LanguageFR Language = "FR"
)

func (l Language) String() string { return string(l) }

func (l Language) IsValid() bool {
	return l == LanguageEN || l == LanguageFR
}

// ParseLanguage converts a wire value to a Language.
func ParseLanguage(s string) (Language, error) {
	l := Language(s)
	if !l.IsValid() {
		return "", fmt.Errorf("%w: %q", domainerrors.ErrUnknownLanguage, s)
	}
	return l, nil
}
