// Package country converts ISO 3166-1 alpha-2 codes, as stored on bands and
// billing agents, into the alpha-3 codes and names used by World Bank data.
package country

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Normalize upper-cases and trims an alpha-2 code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Valid reports whether code is an assigned alpha-2 country code.
func Valid(code string) bool {
	code = Normalize(code)
	if len(code) != 2 {
		return false
	}
	region, err := language.ParseRegion(code)
	if err != nil {
		return false
	}
	return region.IsCountry()
}

// Alpha3 returns the alpha-3 code for an alpha-2 code, or an empty string
// when the code is unknown.
func Alpha3(code string) string {
	region, err := language.ParseRegion(Normalize(code))
	if err != nil {
		return ""
	}
	return region.ISO3()
}

// Name returns the English name of the country, falling back to the code.
func Name(code string) string {
	code = Normalize(code)
	region, err := language.ParseRegion(code)
	if err != nil {
		return code
	}
	if name := display.English.Regions().Name(region); name != "" {
		return name
	}
	return code
}
