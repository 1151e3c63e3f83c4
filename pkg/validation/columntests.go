package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goliatone/go-tablecheck/pkg/contract"
	"github.com/goliatone/go-tablecheck/pkg/presets"
	"github.com/goliatone/go-tablecheck/pkg/table"
)

// Result payloads are capped so a column with millions of bad cells stays
// reportable. FailedCount always carries the true total.
const (
	maxFailedSamples = 100
	maxErrorDetails  = 10
)

// failureCollector accumulates per-row failures with the sample caps applied.
type failureCollector struct {
	count   int
	indices []int
	values  []table.Value
	details []string
}

func (f *failureCollector) add(row int, v table.Value, detail string) {
	f.count++
	if len(f.indices) < maxFailedSamples {
		f.indices = append(f.indices, row)
		f.values = append(f.values, v)
	}
	if detail != "" && len(f.details) < maxErrorDetails {
		f.details = append(f.details, detail)
	}
}

func (f *failureCollector) result(columnName string, testType contract.ColumnTestType, severity contract.Severity, total int) ColumnTestResult {
	return ColumnTestResult{
		ColumnName:    columnName,
		TestType:      testType,
		Severity:      severity,
		Passed:        f.count == 0,
		TotalValues:   total,
		FailedCount:   f.count,
		FailedIndices: f.indices,
		FailedValues:  f.values,
		ErrorDetails:  f.details,
	}
}

// runColumnTest dispatches one configured test against a column's values.
// Unknown test types produce a failed result with a warning message instead
// of an error so a newer contract degrades visibly rather than silently.
func runColumnTest(values []table.Value, columnName string, dataType contract.DataType, cfg contract.TestConfig) ColumnTestResult {
	severity := cfg.Severity
	switch cfg.Type {
	case contract.TestNotNull:
		return testNotNull(values, columnName, severity)
	case contract.TestTypeConformance:
		return testTypeConformance(values, columnName, dataType, severity)
	case contract.TestRange:
		p, _ := cfg.Params.(*contract.RangeParams)
		return testRange(values, columnName, severity, p)
	case contract.TestLength:
		p, _ := cfg.Params.(*contract.LengthParams)
		return testLength(values, columnName, severity, p)
	case contract.TestEnum:
		p, _ := cfg.Params.(*contract.EnumParams)
		return testEnum(values, columnName, severity, p)
	case contract.TestUniqueness:
		p, _ := cfg.Params.(*contract.UniquenessParams)
		return testUniqueness(values, columnName, severity, p)
	case contract.TestMonotonic:
		p, _ := cfg.Params.(*contract.MonotonicParams)
		return testMonotonic(values, columnName, severity, p)
	case contract.TestCardinalityWarning:
		p, _ := cfg.Params.(*contract.CardinalityParams)
		return testCardinality(values, columnName, p)
	case contract.TestPattern:
		p, _ := cfg.Params.(*contract.PatternParams)
		return testPattern(values, columnName, severity, p)
	case contract.TestDateRule:
		p, _ := cfg.Params.(*contract.DateRuleParams)
		return testDateRule(values, columnName, severity, p)
	case contract.TestDateWindow:
		p, _ := cfg.Params.(*contract.DateWindowParams)
		return testDateWindow(values, columnName, severity, p)
	}
	return ColumnTestResult{
		ColumnName:     columnName,
		TestType:       cfg.Type,
		Severity:       severity,
		Passed:         false,
		TotalValues:    len(values),
		WarningMessage: fmt.Sprintf("Unknown test type: %s", cfg.Type),
	}
}

func testNotNull(values []table.Value, columnName string, severity contract.Severity) ColumnTestResult {
	var fc failureCollector
	for i, v := range values {
		if v.IsNull() {
			fc.add(i, v, fmt.Sprintf("Row %d: value is null", i))
		}
	}
	return fc.result(columnName, contract.TestNotNull, severity, len(values))
}

func testTypeConformance(values []table.Value, columnName string, dataType contract.DataType, severity contract.Severity) ColumnTestResult {
	var fc failureCollector
	for i, v := range values {
		if v.IsNull() {
			continue
		}
		if !conformsTo(v.Raw, dataType) {
			fc.add(i, v, fmt.Sprintf("Row %d: '%s' is not a valid %s", i, v.Raw, dataType))
		}
	}
	return fc.result(columnName, contract.TestTypeConformance, severity, len(values))
}

func conformsTo(raw string, dataType contract.DataType) bool {
	switch dataType {
	case contract.TypeInteger:
		s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
		_, err := strconv.ParseInt(s, 10, 64)
		return err == nil
	case contract.TypeFloat:
		s := strings.ReplaceAll(raw, ",", "")
		s = strings.TrimSpace(strings.ReplaceAll(s, "$", ""))
		_, err := strconv.ParseFloat(s, 64)
		return err == nil
	case contract.TypeBoolean:
		return presets.IsBooleanToken(raw)
	case contract.TypeDate, contract.TypeTimestamp:
		_, ok := presets.ParseFlexible(raw)
		return ok
	}
	// string and unrecognized types accept anything
	return true
}

// parseNumericLoose strips grouping commas, currency, and percent signs
// before parsing. Range checks skip values it cannot parse.
func parseNumericLoose(raw string) (float64, bool) {
	s := strings.NewReplacer(",", "", "$", "", "%", "").Replace(raw)
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func testRange(values []table.Value, columnName string, severity contract.Severity, params *contract.RangeParams) ColumnTestResult {
	if params == nil {
		params = &contract.RangeParams{}
	}
	var fc failureCollector
	for i, v := range values {
		if v.IsNull() {
			continue
		}
		f, ok := parseNumericLoose(v.Raw)
		if !ok {
			continue
		}
		switch {
		case params.Min != nil && f < *params.Min:
			fc.add(i, v, fmt.Sprintf("Row %d: %s is below minimum %s", i, v.Raw, formatBound(*params.Min)))
		case params.Max != nil && f > *params.Max:
			fc.add(i, v, fmt.Sprintf("Row %d: %s is above maximum %s", i, v.Raw, formatBound(*params.Max)))
		}
	}
	return fc.result(columnName, contract.TestRange, severity, len(values))
}

func testLength(values []table.Value, columnName string, severity contract.Severity, params *contract.LengthParams) ColumnTestResult {
	if params == nil {
		params = &contract.LengthParams{}
	}
	var fc failureCollector
	for i, v := range values {
		if v.IsNull() {
			continue
		}
		n := utf8.RuneCountInString(v.Raw)
		switch {
		case params.Min != nil && n < *params.Min:
			fc.add(i, v, fmt.Sprintf("Row %d: length %d is below minimum %d", i, n, *params.Min))
		case params.Max != nil && n > *params.Max:
			fc.add(i, v, fmt.Sprintf("Row %d: length %d is above maximum %d", i, n, *params.Max))
		}
	}
	return fc.result(columnName, contract.TestLength, severity, len(values))
}

func testEnum(values []table.Value, columnName string, severity contract.Severity, params *contract.EnumParams) ColumnTestResult {
	if params == nil {
		params = &contract.EnumParams{CaseInsensitive: true}
	}
	allowed := params.AllowedValues
	if params.Preset != "" {
		if preset, ok := presets.LookupEnumPreset(params.Preset); ok {
			allowed = preset
		}
	}
	var fc failureCollector
	for i, v := range values {
		if v.IsNull() {
			continue
		}
		if !presets.MatchEnum(v.Raw, allowed, params.CaseInsensitive) {
			fc.add(i, v, fmt.Sprintf("Row %d: '%s' is not in allowed values", i, v.Raw))
		}
	}
	return fc.result(columnName, contract.TestEnum, severity, len(values))
}

func testUniqueness(values []table.Value, columnName string, severity contract.Severity, params *contract.UniquenessParams) ColumnTestResult {
	if params == nil {
		params = &contract.UniquenessParams{AllowNulls: true}
	}

	// Nulls either drop out entirely or group together as equal values.
	const nullKey = "\x00null"
	key := func(v table.Value) (string, bool) {
		if v.IsNull() {
			if params.AllowNulls {
				return "", false
			}
			return nullKey, true
		}
		return v.Raw, true
	}

	counts := make(map[string]int)
	for _, v := range values {
		if k, ok := key(v); ok {
			counts[k]++
		}
	}

	var fc failureCollector
	detailed := make(map[string]struct{})
	for i, v := range values {
		k, ok := key(v)
		if !ok || counts[k] < 2 {
			continue
		}
		detail := ""
		if _, seen := detailed[k]; !seen && len(detailed) < maxErrorDetails {
			detailed[k] = struct{}{}
			detail = fmt.Sprintf("Value '%s' appears multiple times", v.Text())
		}
		fc.add(i, v, detail)
	}
	return fc.result(columnName, contract.TestUniqueness, severity, len(values))
}

func testMonotonic(values []table.Value, columnName string, severity contract.Severity, params *contract.MonotonicParams) ColumnTestResult {
	if params == nil {
		params = &contract.MonotonicParams{Direction: contract.Ascending}
	}
	type point struct {
		row int
		v   table.Value
	}
	var series []point
	for i, v := range values {
		if !v.IsNull() {
			series = append(series, point{row: i, v: v})
		}
	}
	if len(series) < 2 {
		return ColumnTestResult{
			ColumnName:     columnName,
			TestType:       contract.TestMonotonic,
			Severity:       severity,
			Passed:         true,
			TotalValues:    len(values),
			WarningMessage: "Not enough non-null values to check monotonicity",
		}
	}

	ascending := params.Direction != contract.Descending
	var fc failureCollector
	prev := series[0]
	for _, curr := range series[1:] {
		pf, pok := parseNumericLoose(prev.v.Raw)
		cf, cok := parseNumericLoose(curr.v.Raw)
		if pok && cok {
			if ascending && cf < pf {
				fc.add(curr.row, curr.v, fmt.Sprintf("Row %d: %s is less than previous %s", curr.row, curr.v.Raw, prev.v.Raw))
			} else if !ascending && cf > pf {
				fc.add(curr.row, curr.v, fmt.Sprintf("Row %d: %s is greater than previous %s", curr.row, curr.v.Raw, prev.v.Raw))
			}
		} else {
			// Lexicographic fallback when either side is non-numeric. No
			// per-row details in this branch.
			if ascending && curr.v.Raw < prev.v.Raw {
				fc.add(curr.row, curr.v, "")
			} else if !ascending && curr.v.Raw > prev.v.Raw {
				fc.add(curr.row, curr.v, "")
			}
		}
		prev = curr
	}
	return fc.result(columnName, contract.TestMonotonic, severity, len(values))
}

// testCardinality always reports at warning severity and never flags
// individual rows.
func testCardinality(values []table.Value, columnName string, params *contract.CardinalityParams) ColumnTestResult {
	if params == nil {
		params = &contract.CardinalityParams{Min: 1}
	}
	distinct := make(map[string]struct{})
	total := 0
	for _, v := range values {
		if v.IsNull() {
			continue
		}
		total++
		distinct[v.Raw] = struct{}{}
	}
	card := len(distinct)

	result := ColumnTestResult{
		ColumnName:  columnName,
		TestType:    contract.TestCardinalityWarning,
		Severity:    contract.SeverityWarning,
		Passed:      true,
		TotalValues: len(values),
	}
	switch {
	case card < params.Min:
		result.Passed = false
		result.FailedCount = 1
		result.WarningMessage = fmt.Sprintf("Low cardinality: %d unique values (minimum expected: %d)", card, params.Min)
	case params.Max != nil && card > *params.Max:
		result.Passed = false
		result.FailedCount = 1
		result.WarningMessage = fmt.Sprintf("High cardinality: %d unique values (maximum expected: %d)", card, *params.Max)
	case card == total && total > 10:
		result.WarningMessage = fmt.Sprintf("All %d values are unique - this may be an ID column or free text", card)
	}
	return result
}

func testPattern(values []table.Value, columnName string, severity contract.Severity, params *contract.PatternParams) ColumnTestResult {
	pattern := ""
	if params != nil {
		pattern = params.Resolve()
	}
	if pattern == "" {
		return ColumnTestResult{
			ColumnName:     columnName,
			TestType:       contract.TestPattern,
			Severity:       severity,
			Passed:         false,
			TotalValues:    len(values),
			WarningMessage: "No pattern specified",
		}
	}

	// Patterns must match the whole value, not a fragment inside it.
	// A pattern that does not compile fails every value.
	re, err := regexp.Compile(`\A(?:` + pattern + `)\z`)
	var fc failureCollector
	for i, v := range values {
		if v.IsNull() {
			continue
		}
		if err != nil || !re.MatchString(v.Raw) {
			fc.add(i, v, fmt.Sprintf("Row %d: '%s' does not match pattern", i, v.Raw))
		}
	}
	return fc.result(columnName, contract.TestPattern, severity, len(values))
}

func testDateRule(values []table.Value, columnName string, severity contract.Severity, params *contract.DateRuleParams) ColumnTestResult {
	if params == nil {
		params = &contract.DateRuleParams{Mode: contract.DateRuleSimple}
	}
	target := params.TargetFormat
	if target == "" {
		target = presets.DefaultDateFormat
	}
	accepted := params.AcceptedInputFormats
	if params.Mode != contract.DateRuleRobust || len(accepted) == 0 {
		accepted = []string{target}
	}

	var fc failureCollector
	for i, v := range values {
		if v.IsNull() {
			continue
		}
		if _, _, ok := presets.ParseDateRobust(v.Raw, accepted, params.ExcelSerialEnabled); !ok {
			fc.add(i, v, fmt.Sprintf("Row %d: '%s' is not a valid date", i, v.Raw))
		}
	}
	return fc.result(columnName, contract.TestDateRule, severity, len(values))
}

func testDateWindow(values []table.Value, columnName string, severity contract.Severity, params *contract.DateWindowParams) ColumnTestResult {
	if params == nil {
		params = &contract.DateWindowParams{}
	}
	var (
		minT, maxT     time.Time
		hasMin, hasMax bool
	)
	if params.MinDate != "" {
		minT, hasMin = presets.ParseFlexible(params.MinDate)
	}
	if params.MaxDate != "" {
		maxT, hasMax = presets.ParseFlexible(params.MaxDate)
	}

	var fc failureCollector
	for i, v := range values {
		if v.IsNull() {
			continue
		}
		t, ok := presets.ParseFlexible(v.Raw)
		if !ok {
			continue
		}
		switch {
		case hasMin && t.Before(minT):
			fc.add(i, v, fmt.Sprintf("Row %d: %s is before minimum date %s", i, v.Raw, params.MinDate))
		case hasMax && t.After(maxT):
			fc.add(i, v, fmt.Sprintf("Row %d: %s is after maximum date %s", i, v.Raw, params.MaxDate))
		}
	}
	return fc.result(columnName, contract.TestDateWindow, severity, len(values))
}
