// utils/phone.go
package utils

import (
	"os"
	"strings"
)

// DefaultCountryCode returns the country code prefixed onto bare 10-digit
// numbers. India unless overridden.
func DefaultCountryCode() string {
	if cc := os.Getenv("WHATSAPP_COUNTRY_CODE"); cc != "" {
		return cc
	}
	return "91"
}

// FormatPhoneNumber normalizes a phone number for the WhatsApp API, which
// wants the country code with no plus sign. Spaces, dashes, parentheses and
// a leading + are stripped; a bare 10-digit local number gets the country
// code prefixed. Already-prefixed numbers pass through unchanged.
func FormatPhoneNumber(phone, countryCode string) string {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", "+", "").Replace(phone)

	if len(cleaned) == 10 && !strings.HasPrefix(cleaned, countryCode) {
		cleaned = countryCode + cleaned
	}

	return cleaned
}
