// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "US"

var separatorReplacer = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")

// NormalizeInternational formats a phone number to the international layout
// (e.g. "+1 650-253-0000"). Invalid numbers are retried once with separators
// stripped and a "+" prefix; if still invalid, the trimmed input is returned
// unchanged.
func NormalizeInternational(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	if formatted, ok := format(trimmed, phonenumbers.INTERNATIONAL); ok {
		return formatted
	}

	cleaned := separatorReplacer.Replace(trimmed)
	if !strings.HasPrefix(cleaned, "+") {
		cleaned = "+" + cleaned
	}
	if formatted, ok := format(cleaned, phonenumbers.INTERNATIONAL); ok {
		return formatted
	}

	return trimmed
}

// NormalizeE164 formats a phone number to E.164 ("+16502530000"). Returns an
// empty string when the number cannot be parsed as a valid number, so callers
// can treat the result as absent.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	if formatted, ok := format(trimmed, phonenumbers.E164); ok {
		return formatted
	}

	cleaned := separatorReplacer.Replace(trimmed)
	if !strings.HasPrefix(cleaned, "+") {
		cleaned = "+" + cleaned
	}
	if formatted, ok := format(cleaned, phonenumbers.E164); ok {
		return formatted
	}

	return ""
}

func format(input string, layout phonenumbers.PhoneNumberFormat) (string, bool) {
	number, err := phonenumbers.Parse(input, defaultRegion)
	if err != nil {
		return "", false
	}
	if !phonenumbers.IsValidNumber(number) {
		return "", false
	}
	return phonenumbers.Format(number, layout), true
}
