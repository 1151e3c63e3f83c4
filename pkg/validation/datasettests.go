package validation

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/goliatone/go-tablecheck/pkg/contract"
	"github.com/goliatone/go-tablecheck/pkg/table"
)

// Dataset results list at most this many affected row indices.
const maxAffectedRows = 1000

// runDatasetTest dispatches one dataset-level test. Unknown types produce a
// failed result rather than an error.
func runDatasetTest(t *table.Table, cfg contract.DatasetTest) DatasetTestResult {
	severity := cfg.Severity
	switch cfg.Type {
	case contract.DatasetTestDuplicateRows:
		p, _ := cfg.Params.(*contract.DuplicateRowsParams)
		return testDuplicateRows(t, severity, p)
	case contract.DatasetTestPrimaryKeyCompleteness:
		p, _ := cfg.Params.(*contract.KeyColumnsParams)
		return testPrimaryKeyCompleteness(t, severity, p)
	case contract.DatasetTestPrimaryKeyUniqueness:
		p, _ := cfg.Params.(*contract.KeyColumnsParams)
		return testKeyUniqueness(t, contract.DatasetTestPrimaryKeyUniqueness, "Primary key", severity, p)
	case contract.DatasetTestCompositeKeyUniqueness:
		p, _ := cfg.Params.(*contract.KeyColumnsParams)
		return testKeyUniqueness(t, contract.DatasetTestCompositeKeyUniqueness, "Composite key", severity, p)
	case contract.DatasetTestCrossFieldRule:
		p, _ := cfg.Params.(*contract.CrossFieldRuleParams)
		return testCrossFieldRule(t, severity, p)
	case contract.DatasetTestOutliersIQR:
		p, _ := cfg.Params.(*contract.OutlierIQRParams)
		return testOutliersIQR(t, severity, p)
	case contract.DatasetTestOutliersZScore:
		p, _ := cfg.Params.(*contract.OutlierZScoreParams)
		return testOutliersZScore(t, severity, p)
	}
	return DatasetTestResult{
		TestType: cfg.Type,
		Severity: severity,
		Passed:   false,
		Message:  fmt.Sprintf("Unknown test type: %s", cfg.Type),
		Details:  map[string]any{},
	}
}

// rowKey builds a grouping key over the given column indices. Nulls group
// together as equal values.
func rowKey(t *table.Table, row int, cols []int) string {
	var b strings.Builder
	for i, c := range cols {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		v := t.AtIndex(row, c)
		if v.IsNull() {
			b.WriteByte('\x00')
		} else {
			b.WriteByte('\x01')
			b.WriteString(v.Raw)
		}
	}
	return b.String()
}

func capRows(rows []int) []int {
	if len(rows) > maxAffectedRows {
		return rows[:maxAffectedRows]
	}
	return rows
}

// quotedList renders a string list as ['a', 'b'] for report messages.
func quotedList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "'" + s + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// displayFloat renders a float the way reports show thresholds: integral
// values keep one decimal place.
func displayFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return fmt.Sprintf("%.1f", f)
	}
	return fmt.Sprintf("%v", f)
}

func testDuplicateRows(t *table.Table, severity contract.Severity, params *contract.DuplicateRowsParams) DatasetTestResult {
	var subset []string
	if params != nil {
		subset = params.Subset
	}

	cols := keyColumnIndices(t, subset)
	counts := make(map[string]int)
	keys := make([]string, t.NumRows())
	for row := 0; row < t.NumRows(); row++ {
		k := rowKey(t, row, cols)
		keys[row] = k
		counts[k]++
	}

	var duplicateRows []int
	groups := make(map[string]struct{})
	for row, k := range keys {
		if counts[k] > 1 {
			duplicateRows = append(duplicateRows, row)
			groups[k] = struct{}{}
		}
	}

	message := "No duplicate rows found"
	if len(duplicateRows) > 0 {
		message = fmt.Sprintf("Found %d rows in %d duplicate groups", len(duplicateRows), len(groups))
	}

	var subsetDetail any
	if len(subset) > 0 {
		subsetDetail = subset
	}
	return DatasetTestResult{
		TestType: contract.DatasetTestDuplicateRows,
		Severity: severity,
		Passed:   len(duplicateRows) == 0,
		Message:  message,
		Details: map[string]any{
			"duplicate_count": len(duplicateRows),
			"subset":          subsetDetail,
		},
		AffectedRows: capRows(duplicateRows),
	}
}

// keyColumnIndices maps a subset to column indices, falling back to the full
// column list when the subset is empty or names nothing the table has.
func keyColumnIndices(t *table.Table, subset []string) []int {
	var cols []int
	for _, name := range subset {
		if idx, ok := t.ColumnIndex(name); ok {
			cols = append(cols, idx)
		}
	}
	if len(cols) == 0 {
		cols = make([]int, t.NumColumns())
		for i := range cols {
			cols[i] = i
		}
	}
	return cols
}

func testPrimaryKeyCompleteness(t *table.Table, severity contract.Severity, params *contract.KeyColumnsParams) DatasetTestResult {
	var keyColumns []string
	if params != nil {
		keyColumns = params.KeyColumns
	}
	if len(keyColumns) == 0 {
		return DatasetTestResult{
			TestType: contract.DatasetTestPrimaryKeyCompleteness,
			Severity: severity,
			Passed:   false,
			Message:  "No key columns specified",
			Details:  map[string]any{},
		}
	}

	nullCounts := make(map[string]int)
	affectedSet := make(map[int]struct{})
	totalNulls := 0
	for _, name := range keyColumns {
		idx, ok := t.ColumnIndex(name)
		if !ok {
			continue
		}
		count := 0
		for row := 0; row < t.NumRows(); row++ {
			if t.AtIndex(row, idx).IsNull() {
				count++
				affectedSet[row] = struct{}{}
			}
		}
		nullCounts[name] = count
		totalNulls += count
	}

	affected := make([]int, 0, len(affectedSet))
	for row := range affectedSet {
		affected = append(affected, row)
	}
	sort.Ints(affected)

	message := "Primary key is complete (no null values)"
	if totalNulls > 0 {
		message = fmt.Sprintf("Primary key has %d null values across key columns", totalNulls)
	}
	return DatasetTestResult{
		TestType: contract.DatasetTestPrimaryKeyCompleteness,
		Severity: severity,
		Passed:   totalNulls == 0,
		Message:  message,
		Details: map[string]any{
			"key_columns": keyColumns,
			"null_counts": nullCounts,
		},
		AffectedRows: capRows(affected),
	}
}

func testKeyUniqueness(t *table.Table, testType contract.DatasetTestType, keyLabel string, severity contract.Severity, params *contract.KeyColumnsParams) DatasetTestResult {
	var keyColumns []string
	if params != nil {
		keyColumns = params.KeyColumns
	}
	if len(keyColumns) == 0 {
		return DatasetTestResult{
			TestType: testType,
			Severity: severity,
			Passed:   false,
			Message:  "No key columns specified",
			Details:  map[string]any{},
		}
	}

	var cols []int
	var missing []string
	for _, name := range keyColumns {
		if idx, ok := t.ColumnIndex(name); ok {
			cols = append(cols, idx)
		} else {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return DatasetTestResult{
			TestType: testType,
			Severity: severity,
			Passed:   false,
			Message:  fmt.Sprintf("Key columns not found: %s", quotedList(missing)),
			Details:  map[string]any{"missing_columns": missing},
		}
	}

	counts := make(map[string]int)
	keys := make([]string, t.NumRows())
	for row := 0; row < t.NumRows(); row++ {
		k := rowKey(t, row, cols)
		keys[row] = k
		counts[k]++
	}

	var duplicateRows []int
	sampleKeys := []map[string]any{}
	sampled := make(map[string]struct{})
	for row, k := range keys {
		if counts[k] < 2 {
			continue
		}
		duplicateRows = append(duplicateRows, row)
		if _, seen := sampled[k]; !seen && len(sampleKeys) < 10 {
			sampled[k] = struct{}{}
			record := make(map[string]any, len(keyColumns))
			for i, name := range keyColumns {
				v := t.AtIndex(row, cols[i])
				if v.IsNull() {
					record[name] = nil
				} else {
					record[name] = v.Raw
				}
			}
			sampleKeys = append(sampleKeys, record)
		}
	}

	message := keyLabel + " is unique"
	if len(duplicateRows) > 0 {
		message = fmt.Sprintf("%s has %d duplicate rows", keyLabel, len(duplicateRows))
	}
	return DatasetTestResult{
		TestType: testType,
		Severity: severity,
		Passed:   len(duplicateRows) == 0,
		Message:  message,
		Details: map[string]any{
			"key_columns":           keyColumns,
			"duplicate_count":       len(duplicateRows),
			"sample_duplicate_keys": sampleKeys,
		},
		AffectedRows: capRows(duplicateRows),
	}
}

func testCrossFieldRule(t *table.Table, severity contract.Severity, params *contract.CrossFieldRuleParams) DatasetTestResult {
	ruleName := "unnamed_rule"
	var gate []string
	expression := ""
	if params != nil {
		ruleName = params.RuleName
		gate = params.If.AllNotNull
		expression = params.Assert.Expression
	}

	if expression == "" {
		return DatasetTestResult{
			TestType: contract.DatasetTestCrossFieldRule,
			Severity: severity,
			Passed:   false,
			Message:  fmt.Sprintf("Rule '%s': No expression specified", ruleName),
			Details:  map[string]any{"rule_name": ruleName},
		}
	}

	// Gate columns the table lacks do not restrict anything.
	var gateCols []int
	for _, name := range gate {
		if idx, ok := t.ColumnIndex(name); ok {
			gateCols = append(gateCols, idx)
		}
	}
	var rowsToCheck []int
	for row := 0; row < t.NumRows(); row++ {
		keep := true
		for _, c := range gateCols {
			if t.AtIndex(row, c).IsNull() {
				keep = false
				break
			}
		}
		if keep {
			rowsToCheck = append(rowsToCheck, row)
		}
	}

	if len(rowsToCheck) == 0 {
		return DatasetTestResult{
			TestType: contract.DatasetTestCrossFieldRule,
			Severity: severity,
			Passed:   true,
			Message:  fmt.Sprintf("Rule '%s': No rows to check (all filtered by conditions)", ruleName),
			Details:  map[string]any{"rule_name": ruleName, "rows_checked": 0},
		}
	}

	cmp, err := ParseComparison(expression)
	if err != nil {
		return DatasetTestResult{
			TestType: contract.DatasetTestCrossFieldRule,
			Severity: severity,
			Passed:   false,
			Message:  fmt.Sprintf("Rule '%s': Error evaluating expression: %s", ruleName, err),
			Details:  map[string]any{"rule_name": ruleName, "expression": expression},
		}
	}

	var failed []int
	for _, row := range rowsToCheck {
		ok := cmp.Eval(func(name string) (table.Value, bool) {
			idx, found := t.ColumnIndex(name)
			if !found {
				return table.Value{}, false
			}
			return t.AtIndex(row, idx), true
		})
		if !ok {
			failed = append(failed, row)
		}
	}

	message := fmt.Sprintf("Rule '%s': All %d rows passed", ruleName, len(rowsToCheck))
	if len(failed) > 0 {
		message = fmt.Sprintf("Rule '%s': %d rows failed the assertion", ruleName, len(failed))
	}
	return DatasetTestResult{
		TestType: contract.DatasetTestCrossFieldRule,
		Severity: severity,
		Passed:   len(failed) == 0,
		Message:  message,
		Details: map[string]any{
			"rule_name":    ruleName,
			"expression":   expression,
			"rows_checked": len(rowsToCheck),
			"rows_failed":  len(failed),
		},
		AffectedRows: capRows(failed),
	}
}

// numericColumn parses a column leniently, pairing each parsed value with its
// row. Unparsable and null cells drop out.
func numericColumn(t *table.Table, idx int) ([]float64, []int) {
	var vals []float64
	var rows []int
	for row := 0; row < t.NumRows(); row++ {
		v := t.AtIndex(row, idx)
		if v.IsNull() {
			continue
		}
		if f, ok := parseNumericLoose(v.Raw); ok {
			vals = append(vals, f)
			rows = append(rows, row)
		}
	}
	return vals, rows
}

// quantileLinear computes the q-th quantile with linear interpolation over a
// sorted sample.
func quantileLinear(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	frac := pos - float64(lo)
	if lo+1 >= n {
		return sorted[n-1]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

func testOutliersIQR(t *table.Table, severity contract.Severity, params *contract.OutlierIQRParams) DatasetTestResult {
	column := ""
	multiplier := 1.5
	if params != nil {
		column = params.Column
		multiplier = params.Multiplier
	}
	idx, ok := t.ColumnIndex(column)
	if column == "" || !ok {
		return DatasetTestResult{
			TestType: contract.DatasetTestOutliersIQR,
			Severity: severity,
			Passed:   true,
			Message:  "No valid column specified for outlier detection",
			Details:  map[string]any{},
		}
	}

	vals, rows := numericColumn(t, idx)
	details := map[string]any{
		"column":        column,
		"multiplier":    multiplier,
		"q1":            nil,
		"q3":            nil,
		"iqr":           nil,
		"lower_bound":   nil,
		"upper_bound":   nil,
		"outlier_count": 0,
	}
	if len(vals) == 0 {
		return DatasetTestResult{
			TestType: contract.DatasetTestOutliersIQR,
			Severity: contract.SeverityWarning,
			Passed:   true,
			Message:  fmt.Sprintf("No outliers detected in '%s' using IQR method", column),
			Details:  details,
		}
	}

	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	q1 := quantileLinear(sorted, 0.25)
	q3 := quantileLinear(sorted, 0.75)
	iqr := q3 - q1
	lower := q1 - multiplier*iqr
	upper := q3 + multiplier*iqr

	var outliers []int
	for i, f := range vals {
		if f < lower || f > upper {
			outliers = append(outliers, rows[i])
		}
	}

	message := fmt.Sprintf("No outliers detected in '%s' using IQR method", column)
	if len(outliers) > 0 {
		message = fmt.Sprintf("Found %d potential outliers in '%s' (outside %.2f to %.2f)", len(outliers), column, lower, upper)
	}
	details["q1"] = q1
	details["q3"] = q3
	details["iqr"] = iqr
	details["lower_bound"] = lower
	details["upper_bound"] = upper
	details["outlier_count"] = len(outliers)

	// Outliers are informational and never fail the dataset.
	return DatasetTestResult{
		TestType:     contract.DatasetTestOutliersIQR,
		Severity:     contract.SeverityWarning,
		Passed:       true,
		Message:      message,
		Details:      details,
		AffectedRows: capRows(outliers),
	}
}

func testOutliersZScore(t *table.Table, severity contract.Severity, params *contract.OutlierZScoreParams) DatasetTestResult {
	column := ""
	threshold := 3.0
	if params != nil {
		column = params.Column
		threshold = params.Threshold
	}
	idx, ok := t.ColumnIndex(column)
	if column == "" || !ok {
		return DatasetTestResult{
			TestType: contract.DatasetTestOutliersZScore,
			Severity: severity,
			Passed:   true,
			Message:  "No valid column specified for outlier detection",
			Details:  map[string]any{},
		}
	}

	vals, rows := numericColumn(t, idx)
	mean, std, ok := sampleMeanStd(vals)
	if !ok || std == 0 {
		return DatasetTestResult{
			TestType: contract.DatasetTestOutliersZScore,
			Severity: severity,
			Passed:   true,
			Message:  fmt.Sprintf("Column '%s' has zero variance", column),
			Details:  map[string]any{"column": column},
		}
	}

	var outliers []int
	for i, f := range vals {
		if math.Abs((f-mean)/std) > threshold {
			outliers = append(outliers, rows[i])
		}
	}

	message := fmt.Sprintf("No outliers detected in '%s' using Z-score method", column)
	if len(outliers) > 0 {
		message = fmt.Sprintf("Found %d potential outliers in '%s' (Z-score > %s)", len(outliers), column, displayFloat(threshold))
	}
	return DatasetTestResult{
		TestType: contract.DatasetTestOutliersZScore,
		Severity: contract.SeverityWarning,
		Passed:   true,
		Message:  message,
		Details: map[string]any{
			"column":        column,
			"threshold":     threshold,
			"mean":          mean,
			"std":           std,
			"outlier_count": len(outliers),
		},
		AffectedRows: capRows(outliers),
	}
}

// sampleMeanStd returns the mean and sample standard deviation. It reports
// false when fewer than two values are available.
func sampleMeanStd(vals []float64) (mean, std float64, ok bool) {
	if len(vals) < 2 {
		return 0, 0, false
	}
	sum := 0.0
	for _, f := range vals {
		sum += f
	}
	mean = sum / float64(len(vals))
	sq := 0.0
	for _, f := range vals {
		d := f - mean
		sq += d * d
	}
	std = math.Sqrt(sq / float64(len(vals)-1))
	return mean, std, true
}
