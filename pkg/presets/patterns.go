package presets

import (
	"fmt"
	"regexp"
	"strings"
)

// PatternPreset is one entry in the named regex library.
type PatternPreset struct {
	Name        string
	Pattern     string
	Description string
	Example     string
}

// patternPresets is the fixed library backing the pattern column test's
// preset tier. All patterns are anchored; the engine matches full strings.
var patternPresets = map[string]PatternPreset{
	"email": {
		Name:        "email",
		Pattern:     `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`,
		Description: "Email address",
		Example:     "user@example.com",
	},
	"phone_us": {
		Name:        "phone_us",
		Pattern:     `^(\+1[-.\s]?)?(\(?\d{3}\)?[-.\s]?)?\d{3}[-.\s]?\d{4}$`,
		Description: "US phone number (with optional country code and formatting)",
		Example:     "(555) 123-4567 or +1-555-123-4567",
	},
	"zip_us_5": {
		Name:        "zip_us_5",
		Pattern:     `^\d{5}$`,
		Description: "US 5-digit ZIP code",
		Example:     "12345",
	},
	"zip_us_9": {
		Name:        "zip_us_9",
		Pattern:     `^\d{5}(-\d{4})?$`,
		Description: "US ZIP+4 code (5 digits or 5+4 format)",
		Example:     "12345-6789",
	},
	"url": {
		Name:        "url",
		Pattern:     `^https?://[^\s/$.?#].[^\s]*$`,
		Description: "URL (HTTP or HTTPS)",
		Example:     "https://example.com/path",
	},
	"uuid": {
		Name:        "uuid",
		Pattern:     `^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`,
		Description: "Universally Unique Identifier (UUID)",
		Example:     "550e8400-e29b-41d4-a716-446655440000",
	},
	"ipv4": {
		Name:        "ipv4",
		Pattern:     `^((25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)$`,
		Description: "IPv4 address",
		Example:     "192.168.1.1",
	},
	"ipv6": {
		Name: "ipv6",
		Pattern: `^(([0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}|([0-9a-fA-F]{1,4}:){1,7}:|` +
			`([0-9a-fA-F]{1,4}:){1,6}:[0-9a-fA-F]{1,4}|([0-9a-fA-F]{1,4}:){1,5}` +
			`(:[0-9a-fA-F]{1,4}){1,2}|([0-9a-fA-F]{1,4}:){1,4}(:[0-9a-fA-F]{1,4}){1,3}|` +
			`([0-9a-fA-F]{1,4}:){1,3}(:[0-9a-fA-F]{1,4}){1,4}|([0-9a-fA-F]{1,4}:){1,2}` +
			`(:[0-9a-fA-F]{1,4}){1,5}|[0-9a-fA-F]{1,4}:((:[0-9a-fA-F]{1,4}){1,6})|` +
			`:((:[0-9a-fA-F]{1,4}){1,7}|:)|fe80:(:[0-9a-fA-F]{0,4}){0,4}%[0-9a-zA-Z]+|` +
			`::(ffff(:0{1,4})?:)?((25[0-5]|(2[0-4]|1?[0-9])?[0-9])\.){3}` +
			`(25[0-5]|(2[0-4]|1?[0-9])?[0-9])|([0-9a-fA-F]{1,4}:){1,4}:` +
			`((25[0-5]|(2[0-4]|1?[0-9])?[0-9])\.){3}(25[0-5]|(2[0-4]|1?[0-9])?[0-9]))$`,
		Description: "IPv6 address",
		Example:     "2001:0db8:85a3:0000:0000:8a2e:0370:7334",
	},
	"numeric_only": {
		Name:        "numeric_only",
		Pattern:     `^\d+$`,
		Description: "Numbers only (0-9)",
		Example:     "12345",
	},
	"alphanumeric_only": {
		Name:        "alphanumeric_only",
		Pattern:     `^[a-zA-Z0-9]+$`,
		Description: "Letters and numbers only",
		Example:     "ABC123",
	},
	"letters_only": {
		Name:        "letters_only",
		Pattern:     `^[a-zA-Z]+$`,
		Description: "Letters only (A-Z, a-z)",
		Example:     "Hello",
	},
}

// patternPresetOrder lists preset names in display order.
var patternPresetOrder = []string{
	"email", "phone_us", "zip_us_5", "zip_us_9", "url", "uuid",
	"ipv4", "ipv6", "numeric_only", "alphanumeric_only", "letters_only",
}

// LookupPattern returns the named preset.
func LookupPattern(name string) (PatternPreset, bool) {
	p, ok := patternPresets[name]
	return p, ok
}

// PatternNames returns all preset names in display order.
func PatternNames() []string {
	return append([]string(nil), patternPresetOrder...)
}

// PatternBuilder composes a regex from structured parameters, the middle tier
// between named presets and raw user regexes.
type PatternBuilder struct {
	// AllowedCharacters accepts: digits, letters, alphanumeric, uppercase,
	// lowercase. Unknown entries are ignored; an empty list means any rune.
	AllowedCharacters []string
	LengthExact       *int
	LengthMin         *int
	LengthMax         *int
	StartsWith        string
	EndsWith          string
}

// Build renders the anchored pattern string.
func (b PatternBuilder) Build() string {
	var class strings.Builder
	for _, kind := range b.AllowedCharacters {
		switch kind {
		case "digits":
			class.WriteString("0-9")
		case "letters":
			class.WriteString("a-zA-Z")
		case "alphanumeric":
			class.WriteString("a-zA-Z0-9")
		case "uppercase":
			class.WriteString("A-Z")
		case "lowercase":
			class.WriteString("a-z")
		}
	}

	charClass := "."
	if class.Len() > 0 {
		charClass = "[" + class.String() + "]"
	}

	var quantifier string
	switch {
	case b.LengthExact != nil:
		quantifier = fmt.Sprintf("{%d}", *b.LengthExact)
	case b.LengthMin != nil && b.LengthMax != nil:
		quantifier = fmt.Sprintf("{%d,%d}", *b.LengthMin, *b.LengthMax)
	case b.LengthMin != nil:
		quantifier = fmt.Sprintf("{%d,}", *b.LengthMin)
	case b.LengthMax != nil:
		quantifier = fmt.Sprintf("{0,%d}", *b.LengthMax)
	default:
		quantifier = "*"
	}

	var out strings.Builder
	out.WriteString("^")
	if b.StartsWith != "" {
		out.WriteString(regexp.QuoteMeta(b.StartsWith))
	}
	out.WriteString(charClass)
	out.WriteString(quantifier)
	if b.EndsWith != "" {
		out.WriteString(regexp.QuoteMeta(b.EndsWith))
	}
	out.WriteString("$")
	return out.String()
}
