// Package presets bundles the lookup tables the engines share: human-readable
// date format tokens, the named regex pattern library, and categorical enum
// value sets. Everything here is pure data plus small parsing helpers.
package presets

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ExcelDateSystem selects the serial-date epoch used by spreadsheet files.
type ExcelDateSystem string

const (
	// Excel1900 is the Windows epoch, day 0 = 1899-12-30 (the Lotus 1-2-3
	// leap-year bug shifts it back two days from 1900-01-01).
	Excel1900 ExcelDateSystem = "1900"
	// Excel1904 is the legacy Mac epoch, day 0 = 1904-01-01.
	Excel1904 ExcelDateSystem = "1904"
)

// Serial numbers outside this range are not treated as dates (covers
// 1900-01-01 through 9999-12-31 in the 1900 system).
const (
	ExcelSerialMin = 1
	ExcelSerialMax = 2958465
)

// ExcelSerialFormat is the sentinel format name reported when a value parsed
// as an Excel serial number rather than through a layout.
const ExcelSerialFormat = "EXCEL_SERIAL"

// DefaultDateFormat is assumed whenever a date rule or coercion omits its
// target format.
const DefaultDateFormat = "YYYY-MM-DD"

// dateTokens maps human-readable format tokens to Go reference layout
// fragments. Longest token wins during translation.
var dateTokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"dddd", "Monday"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"ddd", "Mon"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"hh", "03"},
	{"mm", "04"},
	{"ss", "05"},
	{"ZZ", "Z07:00"},
	{"M", "1"},
	{"D", "2"},
	// Go has no no-leading-zero 24-hour fragment; H falls back to 15.
	{"H", "15"},
	{"h", "3"},
	{"m", "4"},
	{"s", "5"},
	{"A", "PM"},
	{"a", "pm"},
	{"Z", "Z0700"},
}

// commonDateFormats pins the translations for the formats offered in the
// contract tooling, in display order.
var commonDateFormats = []struct {
	human  string
	layout string
}{
	{"YYYY-MM-DD", "2006-01-02"},
	{"YYYY/MM/DD", "2006/01/02"},
	{"YYYYMMDD", "20060102"},
	{"MM/DD/YYYY", "01/02/2006"},
	{"DD/MM/YYYY", "02/01/2006"},
	{"MM-DD-YYYY", "01-02-2006"},
	{"DD-MM-YYYY", "02-01-2006"},
	{"DD-MMM-YYYY", "02-Jan-2006"},
	{"MMM DD, YYYY", "Jan 02, 2006"},
	{"MMMM DD, YYYY", "January 02, 2006"},
	{"YYYY-MM-DD HH:mm:ss", "2006-01-02 15:04:05"},
	{"YYYY-MM-DDTHH:mm:ssZ", "2006-01-02T15:04:05Z07:00"},
	{"MM/DD/YY", "01/02/06"},
	{"DD/MM/YY", "02/01/06"},
	{"MMDDYY", "010206"},
	{"DDMMYY", "020106"},
}

// DefaultAcceptedDateFormats is the input-format list date coercion falls
// back to when a contract does not declare its own.
var DefaultAcceptedDateFormats = []string{
	"YYYY-MM-DD", "MM/DD/YYYY", "DD/MM/YYYY", "YYYY/MM/DD",
	"MM-DD-YYYY", "DD-MM-YYYY", "YYYYMMDD",
	"MM/DD/YY", "DD/MM/YY", "MMM DD, YYYY", "MMMM DD, YYYY",
	"DD-MMM-YYYY",
}

// ToGoLayout converts a human-readable format such as "YYYY-MM-DD" into a Go
// reference layout such as "2006-01-02". Known common formats use their
// pinned translation; anything else is scanned token by token, longest token
// first, with unrecognized runes copied through as literals.
func ToGoLayout(humanFormat string) string {
	for _, f := range commonDateFormats {
		if f.human == humanFormat {
			return f.layout
		}
	}

	var out strings.Builder
	i := 0
	for i < len(humanFormat) {
		matched := false
		for _, tok := range dateTokens {
			if strings.HasPrefix(humanFormat[i:], tok.token) {
				out.WriteString(tok.layout)
				i += len(tok.token)
				matched = true
				break
			}
		}
		if !matched {
			out.WriteByte(humanFormat[i])
			i++
		}
	}
	return out.String()
}

// CommonDateFormatNames returns the supported common format names in display
// order.
func CommonDateFormatNames() []string {
	out := make([]string, len(commonDateFormats))
	for i, f := range commonDateFormats {
		out[i] = f.human
	}
	return out
}

// ParseDate parses value against a single human-readable format.
func ParseDate(value, humanFormat string) (time.Time, error) {
	layout := ToGoLayout(humanFormat)
	t, err := time.Parse(layout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("presets: does not match format %s: %w", humanFormat, err)
	}
	return t, nil
}

// FormatDate renders t using a human-readable format.
func FormatDate(t time.Time, humanFormat string) string {
	return t.Format(ToGoLayout(humanFormat))
}

// ValidateDateFormat reports whether a human-readable format translates into
// a usable layout: the translated layout must round-trip a known timestamp.
func ValidateDateFormat(humanFormat string) error {
	layout := ToGoLayout(humanFormat)
	if strings.TrimSpace(layout) == "" {
		return fmt.Errorf("presets: empty date format")
	}
	ref := time.Date(2025, time.January, 7, 14, 32, 10, 0, time.UTC)
	rendered := ref.Format(layout)
	if _, err := time.Parse(layout, rendered); err != nil {
		return fmt.Errorf("presets: invalid date format %q: %w", humanFormat, err)
	}
	return nil
}

// ParseExcelSerial converts an Excel serial day number into a timestamp.
// Fractional days carry time of day.
func ParseExcelSerial(serial float64, system ExcelDateSystem) (time.Time, bool) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) {
		return time.Time{}, false
	}
	if serial < ExcelSerialMin || serial > ExcelSerialMax {
		return time.Time{}, false
	}
	base := time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	if system == Excel1904 {
		base = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	days := math.Trunc(serial)
	frac := serial - days
	out := base.AddDate(0, 0, int(days))
	if frac > 0 {
		out = out.Add(time.Duration(frac * 24 * float64(time.Hour)))
	}
	return out, true
}

// ParseDateRobust tries, in order: the Excel serial interpretation when
// enabled and the trimmed value is numeric in range, then each accepted
// format in list order. It returns the parsed time and the name of the
// format that matched.
func ParseDateRobust(value string, acceptedFormats []string, excelSerialEnabled bool) (time.Time, string, bool) {
	trimmed := strings.TrimSpace(value)

	if excelSerialEnabled {
		if serial, err := strconv.ParseFloat(trimmed, 64); err == nil {
			if t, ok := ParseExcelSerial(serial, Excel1900); ok {
				return t, ExcelSerialFormat, true
			}
		}
	}

	for _, format := range acceptedFormats {
		if t, err := ParseDate(trimmed, format); err == nil {
			return t, format, true
		}
	}
	return time.Time{}, "", false
}

// CoerceDate parses value with any accepted format and re-renders it in the
// target format.
func CoerceDate(value, targetFormat string, acceptedFormats []string, excelSerialEnabled bool) (string, error) {
	t, _, ok := ParseDateRobust(value, acceptedFormats, excelSerialEnabled)
	if !ok {
		return "", fmt.Errorf("presets: could not parse %q with any accepted format", value)
	}
	return FormatDate(t, targetFormat), nil
}

// flexibleLayouts are tried in order by ParseFlexible. Month-first layouts
// precede day-first ones, so ambiguous dates resolve month-first and
// day-first only wins when the day field exceeds 12.
var flexibleLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006-1-2",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"2/1/2006",
	"1-2-2006",
	"2-1-2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"20060102",
}

// ParseFlexible parses a date or timestamp without a declared format, trying
// a fixed ladder of common layouts. It backs the loose date checks: type
// conformance, date windows, and cross-field comparisons.
func ParseFlexible(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range flexibleLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateFormatExamples renders each common format against a fixed reference
// timestamp, for display in contract tooling.
func DateFormatExamples() map[string]string {
	ref := time.Date(2025, time.January, 7, 14, 32, 10, 0, time.UTC)
	out := make(map[string]string, len(commonDateFormats))
	for _, f := range commonDateFormats {
		out[f.human] = ref.Format(f.layout)
	}
	return out
}

