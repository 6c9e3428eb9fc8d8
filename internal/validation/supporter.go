package validation

import (
	"regexp"
	"strings"

	"consortial/internal/country"
)

// ROR IDs are a zero, six characters of Crockford base32 without i, l, o or u,
// and a two digit checksum.
var rorRegex = regexp.MustCompile(`^0[0-9a-hjkmnp-tv-z]{6}[0-9]{2}$`)

var currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// NormalizeROR trims whitespace and the ror.org URL prefix from an identifier.
func NormalizeROR(ror string) string {
	ror = strings.TrimSpace(ror)
	ror = strings.TrimPrefix(ror, RORPrefix)
	ror = strings.TrimPrefix(ror, "http://ror.org/")
	return strings.ToLower(ror)
}

// ROR validates an optional ROR identifier.
func (v *Validator) ROR(field, ror string) {
	if ror == "" {
		return
	}
	v.Check(rorRegex.MatchString(NormalizeROR(ror)), field, "must be a valid ROR identifier")
}

// Country validates an ISO 3166 alpha-2 code.
func (v *Validator) Country(field, code string) {
	if code == "" {
		v.AddError(field, "is required")
		return
	}
	v.Check(country.Valid(country.Normalize(code)), field, "is not an ISO 3166 alpha-2 code")
}

// CurrencyCode validates an ISO 4217 style code.
func (v *Validator) CurrencyCode(field, code string) {
	v.Check(currencyRegex.MatchString(code), field, "must be a three letter currency code")
}

// Supporter validates the descriptive fields of a supporter.
func (v *Validator) Supporter(name, ror, countryCode, address, postalCode, notes string) {
	v.Required("name", name)
	v.MaxLength("name", name, MaxNameLength)
	v.ROR("ror", ror)
	if countryCode != "" {
		v.Country("country", countryCode)
	}
	v.MaxLength("address", address, MaxAddressLength)
	v.MaxLength("postal_code", postalCode, MaxPostalCodeLength)
	v.MaxLength("internal_notes", notes, MaxNotesLength)
}
