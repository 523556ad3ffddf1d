package service

import (
	"regexp"
	"strings"
)

// UnknownLocation is the sentinel returned when no location resolves.
const UnknownLocation = "Unknown Location"

// countryNames expands ISO-3166 alpha-2 codes seen in carrier scan lines.
var countryNames = map[string]string{
	"AE": "United Arab Emirates",
	"AT": "Austria",
	"AU": "Australia",
	"BE": "Belgium",
	"BR": "Brazil",
	"CA": "Canada",
	"CH": "Switzerland",
	"CN": "China",
	"CZ": "Czechia",
	"DE": "Germany",
	"DK": "Denmark",
	"ES": "Spain",
	"FI": "Finland",
	"FR": "France",
	"GB": "United Kingdom",
	"HK": "Hong Kong",
	"HU": "Hungary",
	"IE": "Ireland",
	"IN": "India",
	"IT": "Italy",
	"JP": "Japan",
	"KR": "South Korea",
	"LU": "Luxembourg",
	"MX": "Mexico",
	"NL": "Netherlands",
	"NO": "Norway",
	"NZ": "New Zealand",
	"PL": "Poland",
	"PT": "Portugal",
	"RO": "Romania",
	"SE": "Sweden",
	"SG": "Singapore",
	"TR": "Turkey",
	"US": "United States",
}

var (
	// cityCountryRe matches "LEIPZIG - DE" and "Leipzig-DE" scan forms.
	cityCountryRe = regexp.MustCompile(`([A-Z][A-Za-z.']*(?:\s[A-Z][A-Za-z.']*)*)\s*-\s*([A-Z]{2})\b`)
	// atInCityRe matches trailing "at Koeln Hub" / "in Memphis" forms.
	atInCityRe = regexp.MustCompile(`(?i)\b(?:at|in)\s+([A-Z][A-Za-z][A-Za-z .'-]*)`)
)

// ResolveLocation chooses the authoritative current location for a shipment.
// Priority: the structured latest-location field, then the location supplied
// by the model-assisted classifier, then best-effort extraction from the raw
// update text. The last match in the text wins since carriers append the most
// recent scan last. Returns UnknownLocation when nothing resolves.
func ResolveLocation(structuredLocation, modelLocation, updateText string) string {
	if loc := strings.TrimSpace(structuredLocation); loc != "" {
		return loc
	}

	if loc := strings.TrimSpace(modelLocation); loc != "" {
		return loc
	}

	if loc := ExtractLocation(updateText); loc != "" {
		return loc
	}

	return UnknownLocation
}

// ExtractLocation pulls a location out of free-form carrier text, expanding
// country codes to full names. Empty when no pattern matches.
func ExtractLocation(updateText string) string {
	if matches := cityCountryRe.FindAllStringSubmatch(updateText, -1); len(matches) > 0 {
		last := matches[len(matches)-1]
		city := strings.TrimSpace(last[1])
		if country, ok := countryNames[last[2]]; ok {
			return city + ", " + country
		}
		return city + ", " + last[2]
	}

	if matches := atInCityRe.FindAllStringSubmatch(updateText, -1); len(matches) > 0 {
		last := matches[len(matches)-1]
		return strings.TrimSpace(strings.TrimRight(last[1], ".,;"))
	}

	return ""
}
