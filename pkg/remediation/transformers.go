// Package remediation rewrites a dataset into a cleaned copy according to a
// contract's declared transforms, resolves post-validation failure policies,
// and reports every change as a structured diff. The caller's table is never
// mutated.
package remediation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-tablecheck/pkg/contract"
	"github.com/goliatone/go-tablecheck/pkg/presets"
	"github.com/goliatone/go-tablecheck/pkg/table"
	"github.com/goliatone/go-tablecheck/pkg/validation"
)

// transformValue rewrites one cell for the column-scoped remediation types.
// Nulls pass through untouched; unknown types are rejected by ValidateConfigs
// and act as the identity here.
func transformValue(v table.Value, cfg contract.RemediationConfig) table.Value {
	if v.IsNull() {
		return v
	}
	switch cfg.Type {
	case contract.RemediateTrimWhitespace:
		return table.String(strings.TrimSpace(v.Raw))
	case contract.RemediateStandardizeNulls:
		p, _ := cfg.Params.(*contract.StandardizeNullsParams)
		return standardizeNulls(v, p)
	case contract.RemediateNormalizeCase:
		p, _ := cfg.Params.(*contract.NormalizeCaseParams)
		return normalizeCase(v, p)
	case contract.RemediateRemoveNonPrintable:
		return table.String(validation.StripNonPrintable(v.Raw))
	case contract.RemediateNumericCleanup:
		p, _ := cfg.Params.(*contract.NumericCleanupParams)
		return numericCleanup(v, p)
	case contract.RemediateBooleanNormalization:
		p, _ := cfg.Params.(*contract.BooleanNormalizationParams)
		return booleanNormalize(v, p)
	case contract.RemediateDateCoerce:
		p, _ := cfg.Params.(*contract.DateCoerceParams)
		return dateCoerce(v, p)
	case contract.RemediateCategoricalStandardize:
		p, _ := cfg.Params.(*contract.CategoricalStandardizeParams)
		return categoricalStandardize(v, p)
	}
	return v
}

// isColumnTransform reports whether the type rewrites single cells (as
// opposed to restructuring the table or deduplicating rows).
func isColumnTransform(t contract.RemediationType) bool {
	switch t {
	case contract.RemediateTrimWhitespace, contract.RemediateStandardizeNulls,
		contract.RemediateNormalizeCase, contract.RemediateRemoveNonPrintable,
		contract.RemediateNumericCleanup, contract.RemediateBooleanNormalization,
		contract.RemediateDateCoerce, contract.RemediateCategoricalStandardize:
		return true
	}
	return false
}

func standardizeNulls(v table.Value, p *contract.StandardizeNullsParams) table.Value {
	tokens := contract.CommonNullTokens()
	if p != nil && p.NullTokens != nil {
		tokens = p.NullTokens
	}
	trimmed := strings.TrimSpace(v.Raw)
	for _, tok := range tokens {
		if trimmed == tok {
			return table.Null()
		}
	}
	return v
}

func normalizeCase(v table.Value, p *contract.NormalizeCaseParams) table.Value {
	mode := contract.CaseLower
	if p != nil && p.Case != "" {
		mode = p.Case
	}
	return table.String(validation.ApplyCase(v.Raw, mode))
}

// currencyRunes are stripped by numeric cleanup alongside the dollar sign.
const currencyRunes = "$£€¥"

func numericCleanup(v table.Value, p *contract.NumericCleanupParams) table.Value {
	if p == nil {
		p = &contract.NumericCleanupParams{
			RemoveCommas:          true,
			RemoveCurrencySymbols: true,
			ParenthesesAsNegative: true,
			OnParseError:          contract.OnParseErrorKeep,
		}
	}

	s := strings.TrimSpace(v.Raw)
	if p.ParenthesesAsNegative && strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") && len(s) > 2 {
		s = "-" + s[1:len(s)-1]
	}
	if p.RemoveCurrencySymbols {
		s = strings.Map(func(r rune) rune {
			if strings.ContainsRune(currencyRunes, r) {
				return -1
			}
			return r
		}, s)
	}
	if p.RemoveCommas {
		s = strings.ReplaceAll(s, ",", "")
	}

	// Integers re-render without a decimal point; everything else keeps the
	// float form.
	if !strings.Contains(s, ".") {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return table.String(strconv.FormatInt(n, 10))
		}
	} else if f, err := strconv.ParseFloat(s, 64); err == nil {
		return table.String(strconv.FormatFloat(f, 'f', -1, 64))
	}

	if p.OnParseError == contract.OnParseErrorSetNull {
		return table.Null()
	}
	return v
}

func booleanNormalize(v table.Value, p *contract.BooleanNormalizationParams) table.Value {
	trueTokens := presets.TrueTokens()
	falseTokens := presets.FalseTokens()
	if p != nil {
		if p.TrueTokens != nil {
			trueTokens = p.TrueTokens
		}
		if p.FalseTokens != nil {
			falseTokens = p.FalseTokens
		}
	}

	token := strings.ToLower(strings.TrimSpace(v.Raw))
	for _, t := range trueTokens {
		if token == strings.ToLower(t) {
			return table.String("true")
		}
	}
	for _, t := range falseTokens {
		if token == strings.ToLower(t) {
			return table.String("false")
		}
	}
	// Unrecognized tokens pass through unchanged.
	return v
}

func dateCoerce(v table.Value, p *contract.DateCoerceParams) table.Value {
	target := presets.DefaultDateFormat
	accepted := presets.DefaultAcceptedDateFormats
	excelSerial := false
	onError := contract.OnParseErrorKeep
	if p != nil {
		if p.TargetFormat != "" {
			target = p.TargetFormat
		}
		if len(p.AcceptedInputFormats) > 0 {
			accepted = p.AcceptedInputFormats
		}
		excelSerial = p.ExcelSerialEnabled
		if p.OnParseError != "" {
			onError = p.OnParseError
		}
	}

	out, err := presets.CoerceDate(v.Raw, target, accepted, excelSerial)
	if err != nil {
		if onError == contract.OnParseErrorSetNull {
			return table.Null()
		}
		return v
	}
	return table.String(out)
}

func categoricalStandardize(v table.Value, p *contract.CategoricalStandardizeParams) table.Value {
	if p == nil || len(p.Mapping) == 0 {
		return v
	}
	caseInsensitive := p.CaseInsensitive

	key := strings.TrimSpace(v.Raw)
	if caseInsensitive {
		key = strings.ToLower(key)
	}
	for from, to := range p.Mapping {
		mapped := strings.TrimSpace(from)
		if caseInsensitive {
			mapped = strings.ToLower(mapped)
		}
		if key == mapped {
			return table.String(to)
		}
	}
	return v
}

// splitColumn appends the split parts of the source column as new columns.
// Unsupplied names auto-generate as "<source>_part_N".
func splitColumn(tbl *table.Table, columnName string, p *contract.SplitColumnParams) {
	delimiter := ","
	var names []string
	maxSplits := -1
	if p != nil {
		if p.Delimiter != "" {
			delimiter = p.Delimiter
		}
		names = p.NewColumnNames
		maxSplits = p.MaxSplits
	}

	idx, ok := tbl.ColumnIndex(columnName)
	if !ok {
		return
	}

	parts := make([][]string, tbl.NumRows())
	width := 0
	for row := 0; row < tbl.NumRows(); row++ {
		v := tbl.AtIndex(row, idx)
		if v.IsNull() {
			continue
		}
		var split []string
		if maxSplits > 0 {
			split = strings.SplitN(v.Raw, delimiter, maxSplits+1)
		} else {
			split = strings.Split(v.Raw, delimiter)
		}
		parts[row] = split
		if len(split) > width {
			width = len(split)
		}
	}

	for part := 0; part < width; part++ {
		name := fmt.Sprintf("%s_part_%d", columnName, part+1)
		if part < len(names) && names[part] != "" {
			name = names[part]
		}
		values := make([]table.Value, tbl.NumRows())
		for row := 0; row < tbl.NumRows(); row++ {
			if part < len(parts[row]) {
				values[row] = table.String(parts[row][part])
			} else {
				values[row] = table.Null()
			}
		}
		if tbl.HasColumn(name) {
			for row := range values {
				tbl.Set(row, name, values[row])
			}
			continue
		}
		tbl.AddColumn(name, values)
	}
}

// customCalculation writes a derived column from a whitelisted operation over
// named operand columns. There is no expression evaluation here; the
// operation set is closed for safety.
func customCalculation(tbl *table.Table, columnName string, p *contract.CustomCalculationParams) {
	operation := contract.CalcConcat
	var operands []string
	separator := " "
	if p != nil {
		if p.Operation != "" {
			operation = p.Operation
		}
		operands = p.OperandColumns
		separator = p.Separator
	}
	if len(operands) == 0 {
		return
	}

	cols := make([]int, 0, len(operands))
	for _, name := range operands {
		idx, ok := tbl.ColumnIndex(name)
		if !ok {
			// Missing operand columns leave the table untouched.
			return
		}
		cols = append(cols, idx)
	}

	values := make([]table.Value, tbl.NumRows())
	for row := 0; row < tbl.NumRows(); row++ {
		values[row] = calculateRow(tbl, row, cols, operation, separator)
	}

	if tbl.HasColumn(columnName) {
		for row := range values {
			tbl.Set(row, columnName, values[row])
		}
		return
	}
	tbl.AddColumn(columnName, values)
}

func calculateRow(tbl *table.Table, row int, cols []int, operation contract.CalcOperation, separator string) table.Value {
	if operation == contract.CalcConcat {
		parts := make([]string, len(cols))
		for i, c := range cols {
			parts[i] = tbl.AtIndex(row, c).Text()
		}
		return table.String(strings.Join(parts, separator))
	}

	acc := 0.0
	for i, c := range cols {
		v := tbl.AtIndex(row, c)
		if v.IsNull() {
			return table.Null()
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Raw), 64)
		if err != nil {
			return table.Null()
		}
		if i == 0 {
			acc = f
			continue
		}
		switch operation {
		case contract.CalcAdd:
			acc += f
		case contract.CalcSubtract:
			acc -= f
		case contract.CalcMultiply:
			acc *= f
		case contract.CalcDivide:
			if f == 0 {
				return table.Null()
			}
			acc /= f
		}
	}
	return table.String(strconv.FormatFloat(acc, 'f', -1, 64))
}

// deduplicateRows drops duplicate rows over the configured subset. Keep
// selects which member of each group survives; KeepNone drops whole groups.
func deduplicateRows(tbl *table.Table, p *contract.DeduplicateRowsParams) *table.Table {
	var subset []string
	keep := contract.KeepFirst
	if p != nil {
		subset = p.Subset
		if p.Keep != "" {
			keep = p.Keep
		}
	}

	var cols []int
	for _, name := range subset {
		if idx, ok := tbl.ColumnIndex(name); ok {
			cols = append(cols, idx)
		}
	}
	if len(cols) == 0 {
		cols = make([]int, tbl.NumColumns())
		for i := range cols {
			cols[i] = i
		}
	}

	keys := make([]string, tbl.NumRows())
	counts := make(map[string]int)
	lastIndex := make(map[string]int)
	for row := 0; row < tbl.NumRows(); row++ {
		k := dedupKey(tbl, row, cols)
		keys[row] = k
		counts[k]++
		lastIndex[k] = row
	}

	seen := make(map[string]struct{})
	return tbl.Filter(func(row int) bool {
		k := keys[row]
		if counts[k] < 2 {
			return true
		}
		switch keep {
		case contract.KeepLast:
			return row == lastIndex[k]
		case contract.KeepNone:
			return false
		default:
			_, dup := seen[k]
			seen[k] = struct{}{}
			return !dup
		}
	})
}

func dedupKey(tbl *table.Table, row int, cols []int) string {
	var b strings.Builder
	for i, c := range cols {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		v := tbl.AtIndex(row, c)
		if v.IsNull() {
			b.WriteByte('\x00')
		} else {
			b.WriteByte('\x01')
			b.WriteString(v.Raw)
		}
	}
	return b.String()
}

// treatmentNames maps remediation types to the display names the diff and
// reports use.
var treatmentNames = map[contract.RemediationType]string{
	contract.RemediateTrimWhitespace:         "Trim Whitespace",
	contract.RemediateStandardizeNulls:       "Standardize Null Values",
	contract.RemediateNormalizeCase:          "Normalize Case",
	contract.RemediateRemoveNonPrintable:     "Remove Non-Printable Characters",
	contract.RemediateNumericCleanup:         "Clean Numeric Formatting",
	contract.RemediateBooleanNormalization:   "Standardize Boolean",
	contract.RemediateDateCoerce:             "Standardize Date Format",
	contract.RemediateCategoricalStandardize: "Standardize Category Values",
	contract.RemediateSplitColumn:            "Split Column",
	contract.RemediateCustomCalculation:      "Calculated Column",
	contract.RemediateDeduplicateRows:        "Remove Duplicate Rows",
}

// TreatmentName returns the human-readable name for a remediation type.
// Unknown types title-case their snake_case form.
func TreatmentName(t contract.RemediationType) string {
	if name, ok := treatmentNames[t]; ok {
		return name
	}
	words := strings.Split(string(t), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
