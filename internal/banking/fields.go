// Package banking validates IBAN and BIC payment fields.
package banking

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Expected IBAN length per ISO 3166 country code. Countries outside the table
// only get the checksum test.
var ibanLengths = map[string]int{
	"GB": 22,
	"DE": 22,
	"FR": 27,
	"NL": 18,
	"ES": 24,
	"IT": 27,
	"CH": 21,
	"AT": 20,
	"BE": 16,
	"SE": 24,
}

// BIC: 8 or 11 characters. Position 7 excludes O and 0/1, position 8 excludes O.
var bicRegex = regexp.MustCompile(`^[A-Z]{6}[A-Z2-9][A-NP-Z0-9]([A-Z0-9]{3})?$`)

// NormalizeIBAN strips spaces and upper-cases the IBAN.
func NormalizeIBAN(iban string) string {
	return strings.ToUpper(strings.ReplaceAll(iban, " ", ""))
}

// ValidateIBAN checks structure, country length and the ISO 7064 mod-97
// checksum. Returns nil for a valid IBAN.
func ValidateIBAN(iban string) error {
	iban = NormalizeIBAN(iban)
	if len(iban) < 4 {
		return errors.New("IBAN too short")
	}
	country := iban[:2]
	if !isAlpha(country) {
		return errors.New("IBAN must start with 2-letter country code")
	}
	if expected, ok := ibanLengths[country]; ok && len(iban) != expected {
		return fmt.Errorf("IBAN length %d invalid for %s (expected %d)", len(iban), country, expected)
	}
	rem, err := ibanMod97(iban)
	if err != nil {
		return err
	}
	if rem != 1 {
		return errors.New("IBAN check digits failed MOD-97")
	}
	return nil
}

// ValidateBIC checks the SWIFT BIC structural format (8 or 11 characters).
func ValidateBIC(bic string) error {
	if !bicRegex.MatchString(strings.ToUpper(bic)) {
		return fmt.Errorf("BIC %q does not match expected format", bic)
	}
	return nil
}

// ibanMod97 computes the ISO 7064 check: move the first four characters to
// the end, substitute letters with 10..35 and reduce the numeral mod 97.
// The modulo is folded in per character so the numeral never materializes.
func ibanMod97(iban string) (int, error) {
	rearranged := iban[4:] + iban[:4]
	rem := 0
	for _, c := range rearranged {
		switch {
		case c >= '0' && c <= '9':
			rem = (rem*10 + int(c-'0')) % 97
		case c >= 'A' && c <= 'Z':
			rem = (rem*100 + int(c-'A') + 10) % 97
		default:
			return 0, fmt.Errorf("IBAN contains invalid character %q", c)
		}
	}
	return rem, nil
}

func isAlpha(s string) bool {
	for _, c := range s {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}
