// Package langs holds the process-wide, read-only ISO-3166 country-code to
// preferred-language table used to pick a localised name/label/address out
// of a multilingual record (spec §6 "Language coverage"). Grounded on
// original_source's langs.rs::COUNTRIES_LANGS, filled from the same
// Wikipedia ISO-3166-1 reference.
package langs

// CountryLanguages maps an ISO-3166 alpha-2 country code to its ordered
// list of preferred language codes. Loaded once at startup, read-only
// thereafter: a plain package-level map is sufficient, no lazy
// initialization guard is needed since Go initializes package-level vars
// before main runs.
var CountryLanguages = map[string][]string{
	"AU": {"en"},
	"AT": {"de"},
	"BY": {"be", "ru"},
	"BE": {"fr", "de", "nl"},
	"BR": {"pt"},
	"BG": {"bg"},
	"CA": {"en", "fr"},
	"CN": {"zh"},
	"HR": {"hr"},
	"CZ": {"cs"},
	"DK": {"da"},
	"EE": {"et"},
	"FR": {"fr"},
	"DE": {"de"},
	"GR": {"el"},
	"IE": {"ga", "en"},
	"IT": {"it"},
	"JP": {"ja"},
	"KR": {"ko"},
	"LV": {"lv"},
	"LT": {"lt"},
	"LU": {"lb", "fr", "de"},
	"MX": {"es"},
	"MD": {"ro"},
	"NL": {"nl"},
	"NZ": {"en", "mi"},
	"MK": {"mk", "sq"},
	"NO": {"no"},
	"PL": {"pl"},
	"PT": {"pt"},
	"RO": {"ro"},
	"RU": {"ru"},
	"RS": {"sr"},
	"SG": {"en", "ms", "ta"},
	"SK": {"sk"},
	"SI": {"sl"},
	"ES": {"es"},
	"SE": {"sv"},
	"CH": {"de", "fr", "it", "rm"},
	"TH": {"th"},
	"TN": {"ar"},
	"TR": {"tr"},
	"UA": {"uk"},
	"GB": {"en"},
	"US": {"en"},
	"UY": {"es"},
	"UZ": {"uz"},
	"VE": {"es"},
	"VN": {"vi"},
}

// fallbackLang is appended to every country's preference list before the
// "first available" step, per spec §6: local-country languages → English →
// first available.
const fallbackLang = "en"

// PreferredLanguages returns country's preferred language list followed by
// English, deduplicated, for use as a selection order over a multilingual
// name/label map. An unknown country code yields just {"en"}.
func PreferredLanguages(country string) []string {
	base := CountryLanguages[country]
	out := make([]string, 0, len(base)+1)
	seen := make(map[string]bool, len(base)+1)
	for _, l := range base {
		if !seen[l] {
			out = append(out, l)
			seen[l] = true
		}
	}
	if !seen[fallbackLang] {
		out = append(out, fallbackLang)
	}
	return out
}

// Select picks a value out of a lang->value map following country's
// preference order, then English, then the first available value in
// unspecified order. Returns "" if names is empty.
func Select(country string, names map[string]string) string {
	if len(names) == 0 {
		return ""
	}
	for _, lang := range PreferredLanguages(country) {
		if v, ok := names[lang]; ok && v != "" {
			return v
		}
	}
	for _, v := range names {
		if v != "" {
			return v
		}
	}
	return ""
}
