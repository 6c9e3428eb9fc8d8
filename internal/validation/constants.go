package validation

const (
	// RORPrefix is stripped from ROR identifiers given as URLs.
	RORPrefix = "https://ror.org/"

	MaxNameLength       = 200
	MaxAddressLength    = 500
	MaxPostalCodeLength = 20
	MaxNotesLength      = 5000
)
