// Package labels formats human-readable labels for addresses and admin
// stacks, following the per-country house-number/street ordering convention
// mentioned in spec §4.D: French-like conventions put the house number
// first, German-like conventions put the street first. Grounded on the
// references to mimirsbrunn::labels::format_addr_name_and_label and
// format_street_label in original_source/src/addresses.rs — that crate
// isn't in the retrieval pack, so the actual formatting rules are
// reconstructed here as a small data table per the spec's instruction that
// "the exact per-country rules are data, not code".
package labels

import "fmt"

// Convention is the house-number/street word order for a country.
type Convention int

const (
	// FrenchOrder formats "<house_number> <street> (<city>)".
	FrenchOrder Convention = iota
	// GermanOrder formats "<street> <house_number> (<city>)".
	GermanOrder
)

// countryConventions lists every country code known to use the German-like
// ordering; everything else defaults to the (more common, worldwide)
// French-like ordering.
var countryConventions = map[string]Convention{
	"DE": GermanOrder,
	"AT": GermanOrder,
	"CH": GermanOrder,
	"NL": GermanOrder,
	"PL": GermanOrder,
	"CZ": GermanOrder,
	"HU": GermanOrder,
	"DK": GermanOrder,
	"SE": GermanOrder,
	"NO": GermanOrder,
	"FI": GermanOrder,
}

// ConventionFor returns the formatting convention for a country code.
func ConventionFor(country string) Convention {
	if c, ok := countryConventions[country]; ok {
		return c
	}
	return FrenchOrder
}

// FormatAddr builds the "<n> <street> (<city>)" / "<street> <n> (<city>)"
// label for a full address. city may be empty, in which case the
// parenthesised suffix is omitted.
func FormatAddr(country, houseNumber, street, city string) string {
	var core string
	switch ConventionFor(country) {
	case GermanOrder:
		core = fmt.Sprintf("%s %s", street, houseNumber)
	default:
		core = fmt.Sprintf("%s %s", houseNumber, street)
	}
	if city == "" {
		return core
	}
	return fmt.Sprintf("%s (%s)", core, city)
}

// FormatStreet builds a label for a street-only address (no house number
// known), e.g. from a reverse-geocode hit precise only to street level.
func FormatStreet(street, city string) string {
	if city == "" {
		return street
	}
	return fmt.Sprintf("%s (%s)", street, city)
}

// FormatAdminStack builds a label out of an ordered most-specific-first
// admin name stack, e.g. "Paris, Île-de-France, France". Admins with an
// empty name are skipped.
func FormatAdminStack(names []string) string {
	out := ""
	for _, n := range names {
		if n == "" {
			continue
		}
		if out == "" {
			out = n
		} else {
			out = out + ", " + n
		}
	}
	return out
}
