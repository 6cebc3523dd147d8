package enums

import "fmt"

// CurrencyCode is the ISO 4217 currency the shop trades in.
type CurrencyCode string

const (
	CurrencyIDR CurrencyCode = "IDR"
	CurrencyUSD CurrencyCode = "USD"
	CurrencySGD CurrencyCode = "SGD"
)

var validCurrencyCodes = []CurrencyCode{
	CurrencyIDR,
	CurrencyUSD,
	CurrencySGD,
}

// String implements fmt.Stringer.
func (c CurrencyCode) String() string {
	return string(c)
}

// IsValid reports whether the value is a supported CurrencyCode.
func (c CurrencyCode) IsValid() bool {
	for _, candidate := range validCurrencyCodes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCurrencyCode converts raw input into a CurrencyCode.
func ParseCurrencyCode(value string) (CurrencyCode, error) {
	for _, candidate := range validCurrencyCodes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid currency code %q", value)
}
