package presets

import (
	"sort"
	"strings"
)

// Enum preset sets backing the enum column test's preset tier. Values are
// stored uppercase; matching against them is case-insensitive by default.

var usState2Letter = newEnumSet(
	"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "DC", "FL",
	"GA", "HI", "ID", "IL", "IN", "IA", "KS", "KY", "LA", "ME",
	"MD", "MA", "MI", "MN", "MS", "MO", "MT", "NE", "NV", "NH",
	"NJ", "NM", "NY", "NC", "ND", "OH", "OK", "OR", "PA", "RI",
	"SC", "SD", "TN", "TX", "UT", "VT", "VA", "WA", "WV", "WI", "WY",
)

var usStateFullName = newEnumSet(
	"ALABAMA", "ALASKA", "ARIZONA", "ARKANSAS", "CALIFORNIA",
	"COLORADO", "CONNECTICUT", "DELAWARE", "DISTRICT OF COLUMBIA",
	"FLORIDA", "GEORGIA", "HAWAII", "IDAHO", "ILLINOIS", "INDIANA",
	"IOWA", "KANSAS", "KENTUCKY", "LOUISIANA", "MAINE", "MARYLAND",
	"MASSACHUSETTS", "MICHIGAN", "MINNESOTA", "MISSISSIPPI", "MISSOURI",
	"MONTANA", "NEBRASKA", "NEVADA", "NEW HAMPSHIRE", "NEW JERSEY",
	"NEW MEXICO", "NEW YORK", "NORTH CAROLINA", "NORTH DAKOTA", "OHIO",
	"OKLAHOMA", "OREGON", "PENNSYLVANIA", "RHODE ISLAND", "SOUTH CAROLINA",
	"SOUTH DAKOTA", "TENNESSEE", "TEXAS", "UTAH", "VERMONT", "VIRGINIA",
	"WASHINGTON", "WEST VIRGINIA", "WISCONSIN", "WYOMING",
)

var countryISO3166Alpha2 = newEnumSet(
	"AD", "AE", "AF", "AG", "AI", "AL", "AM", "AO", "AQ", "AR", "AS", "AT", "AU", "AW", "AX", "AZ",
	"BA", "BB", "BD", "BE", "BF", "BG", "BH", "BI", "BJ", "BL", "BM", "BN", "BO", "BQ", "BR", "BS",
	"BT", "BV", "BW", "BY", "BZ",
	"CA", "CC", "CD", "CF", "CG", "CH", "CI", "CK", "CL", "CM", "CN", "CO", "CR", "CU", "CV", "CW",
	"CX", "CY", "CZ",
	"DE", "DJ", "DK", "DM", "DO", "DZ",
	"EC", "EE", "EG", "EH", "ER", "ES", "ET",
	"FI", "FJ", "FK", "FM", "FO", "FR",
	"GA", "GB", "GD", "GE", "GF", "GG", "GH", "GI", "GL", "GM", "GN", "GP", "GQ", "GR", "GS", "GT",
	"GU", "GW", "GY",
	"HK", "HM", "HN", "HR", "HT", "HU",
	"ID", "IE", "IL", "IM", "IN", "IO", "IQ", "IR", "IS", "IT",
	"JE", "JM", "JO", "JP",
	"KE", "KG", "KH", "KI", "KM", "KN", "KP", "KR", "KW", "KY", "KZ",
	"LA", "LB", "LC", "LI", "LK", "LR", "LS", "LT", "LU", "LV", "LY",
	"MA", "MC", "MD", "ME", "MF", "MG", "MH", "MK", "ML", "MM", "MN", "MO", "MP", "MQ", "MR", "MS",
	"MT", "MU", "MV", "MW", "MX", "MY", "MZ",
	"NA", "NC", "NE", "NF", "NG", "NI", "NL", "NO", "NP", "NR", "NU", "NZ",
	"OM",
	"PA", "PE", "PF", "PG", "PH", "PK", "PL", "PM", "PN", "PR", "PS", "PT", "PW", "PY",
	"QA",
	"RE", "RO", "RS", "RU", "RW",
	"SA", "SB", "SC", "SD", "SE", "SG", "SH", "SI", "SJ", "SK", "SL", "SM", "SN", "SO", "SR", "SS",
	"ST", "SV", "SX", "SY", "SZ",
	"TC", "TD", "TF", "TG", "TH", "TJ", "TK", "TL", "TM", "TN", "TO", "TR", "TT", "TV", "TW", "TZ",
	"UA", "UG", "UM", "US", "UY", "UZ",
	"VA", "VC", "VE", "VG", "VI", "VN", "VU",
	"WF", "WS",
	"YE", "YT",
	"ZA", "ZM", "ZW",
)

var uomANSIPackaging = newEnumSet(
	"EA", "PK", "CT", "CS", "BX", "BG", "RL", "TU", "CN", "BT", "JR",
	"PL", "SK", "DR", "TN", "LB", "KG",
	"VL", "AM", "SY", "KT", "TR", "DV",
	"FT", "IN", "YD",
)

var uomANSIX12 = mergeEnumSets(uomANSIPackaging, newEnumSet(
	"DZ", "GR", "PR", "SET",
	"GL", "QT", "PT", "OZ", "ML", "LT",
	"MG",
	"SF", "SY",
	"HR", "DA", "WK", "MO", "YR",
))

var enumPresets = map[string]map[string]struct{}{
	"us_state_2_letter":      usState2Letter,
	"us_state_full_name":     usStateFullName,
	"us_state_code_or_name":  mergeEnumSets(usState2Letter, usStateFullName),
	"country_iso3166_alpha2": countryISO3166Alpha2,
	"uom_ansi_packaging":     uomANSIPackaging,
	"uom_ansi_x12":           uomANSIX12,
}

var enumPresetDescriptions = map[string]string{
	"us_state_2_letter":      "US state 2-letter codes (TX, CA, etc.)",
	"us_state_full_name":     "US state full names (Texas, California, etc.)",
	"us_state_code_or_name":  "US state codes or full names",
	"country_iso3166_alpha2": "ISO 3166-1 alpha-2 country codes",
	"uom_ansi_packaging":     "ANSI packaging units of measure",
	"uom_ansi_x12":           "ANSI X12 units of measure (extended)",
}

func newEnumSet(values ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}

func mergeEnumSets(sets ...map[string]struct{}) map[string]struct{} {
	out := map[string]struct{}{}
	for _, set := range sets {
		for v := range set {
			out[v] = struct{}{}
		}
	}
	return out
}

// LookupEnumPreset returns the sorted values of a named enum preset.
func LookupEnumPreset(name string) ([]string, bool) {
	set, ok := enumPresets[name]
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, true
}

// EnumPresetNames returns the available preset names, sorted.
func EnumPresetNames() []string {
	out := make([]string, 0, len(enumPresets))
	for name := range enumPresets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// EnumPresetDescription returns the human-readable description of a preset.
func EnumPresetDescription(name string) string {
	return enumPresetDescriptions[name]
}

// MatchEnumPreset reports whether value belongs to the named preset.
// The value is trimmed first; matching is case-insensitive unless
// caseSensitive is set.
func MatchEnumPreset(value, name string, caseSensitive bool) bool {
	set, ok := enumPresets[name]
	if !ok {
		return false
	}
	trimmed := strings.TrimSpace(value)
	if !caseSensitive {
		trimmed = strings.ToUpper(trimmed)
	}
	_, found := set[trimmed]
	return found
}

// MatchEnum reports whether value belongs to a custom allowed list. Both
// sides are trimmed; matching folds case unless caseInsensitive is false.
func MatchEnum(value string, allowed []string, caseInsensitive bool) bool {
	candidate := strings.TrimSpace(value)
	if caseInsensitive {
		candidate = strings.ToUpper(candidate)
	}
	for _, a := range allowed {
		entry := strings.TrimSpace(a)
		if caseInsensitive {
			entry = strings.ToUpper(entry)
		}
		if candidate == entry {
			return true
		}
	}
	return false
}
