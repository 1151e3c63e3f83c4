package validation

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-tablecheck/pkg/contract"
	"github.com/goliatone/go-tablecheck/pkg/table"
)

// FK result caps keep the payload bounded on large mismatches.
const (
	maxMissingValues     = 100
	maxMissingRowIndices = 1000
)

// CheckForeignKey tests membership of the dataset column's values in the
// reference column. When a normalizer is given it is applied to both sides
// before the reference set is built, so a contract's dataset-column
// normalization carries over to the reference values. Null handling follows
// allowNulls: disallowed nulls are reported as missing.
func CheckForeignKey(
	datasetValues []table.Value,
	referenceValues []table.Value,
	name, datasetColumn, fkColumn string,
	allowNulls bool,
	normalizer *Normalizer,
) ForeignKeyCheckResult {
	normalize := func(v table.Value) table.Value {
		if normalizer == nil {
			return v
		}
		return normalizer.Value(v)
	}

	refSet := make(map[string]struct{}, len(referenceValues))
	for _, v := range referenceValues {
		if nv := normalize(v); !nv.IsNull() {
			refSet[nv.Raw] = struct{}{}
		}
	}

	var missingRows []int
	missingSeen := make(map[string]struct{})
	var missingValues []string
	addMissing := func(row int, display string) {
		missingRows = append(missingRows, row)
		if _, dup := missingSeen[display]; dup {
			return
		}
		missingSeen[display] = struct{}{}
		if len(missingValues) < maxMissingValues {
			missingValues = append(missingValues, display)
		}
	}

	for row, v := range datasetValues {
		nv := normalize(v)
		if nv.IsNull() {
			if !allowNulls {
				addMissing(row, "(null)")
			}
			continue
		}
		if _, ok := refSet[nv.Raw]; !ok {
			addMissing(row, nv.Raw)
		}
	}

	missingCount := len(missingRows)
	if len(missingRows) > maxMissingRowIndices {
		missingRows = missingRows[:maxMissingRowIndices]
	}

	return ForeignKeyCheckResult{
		Name:              name,
		DatasetColumn:     datasetColumn,
		FKColumn:          fkColumn,
		Passed:            missingCount == 0,
		TotalValues:       len(datasetValues),
		MissingCount:      missingCount,
		MissingValues:     missingValues,
		MissingRowIndices: missingRows,
	}
}

// runForeignKeyChecks executes every declared FK check against the normalized
// table. Missing reference material blocks the affected check only; the
// failure lands in blocking and the remaining checks still run.
func runForeignKeyChecks(
	normalized *table.Table,
	c *contract.Contract,
	reference *table.Table,
) (results []ForeignKeyCheckResult, blocking []string) {
	for i := range c.ForeignKeyChecks {
		fk := &c.ForeignKeyChecks[i]

		if reference == nil {
			results = append(results, ForeignKeyCheckResult{
				Name:          fk.Name,
				DatasetColumn: fk.DatasetColumn,
				FKColumn:      fk.FKColumn,
			})
			blocking = append(blocking, fmt.Sprintf("FK check '%s' failed: no FK file provided", fk.Name))
			continue
		}

		datasetValues, ok := normalized.Column(fk.DatasetColumn)
		if !ok {
			blocking = append(blocking, fmt.Sprintf("FK check '%s': column '%s' not found in dataset", fk.Name, fk.DatasetColumn))
			continue
		}
		referenceValues, ok := reference.Column(fk.FKColumn)
		if !ok {
			blocking = append(blocking, fmt.Sprintf("FK check '%s': column '%s' not found in FK file", fk.Name, fk.FKColumn))
			continue
		}

		var normalizer *Normalizer
		if col := c.Column(fk.DatasetColumn); col != nil && col.Normalization != nil {
			normalizer = NewNormalizer(col.Normalization)
		}

		result := CheckForeignKey(
			datasetValues, referenceValues,
			fk.Name, fk.DatasetColumn, fk.FKColumn,
			fk.NullPolicy.AllowNulls,
			normalizer,
		)
		results = append(results, result)

		if !result.Passed && fk.OnFail.Action == contract.ActionStrictFail {
			blocking = append(blocking, fmt.Sprintf("FK check '%s' has strict_fail policy", fk.Name))
		}
	}
	return results, blocking
}

// FormatForeignKeyResult renders one FK check result for terminal display.
func FormatForeignKeyResult(r ForeignKeyCheckResult) string {
	status := "FAIL"
	if r.Passed {
		status = "PASS"
	}
	lines := []string{
		"Foreign Key Check: " + r.Name,
		"  Dataset Column: " + r.DatasetColumn,
		"  FK Column: " + r.FKColumn,
		displayPrinter.Sprintf("  Total Values: %d", r.TotalValues),
		displayPrinter.Sprintf("  Missing Count: %d", r.MissingCount),
		"  Status: " + status,
	}
	if len(r.MissingValues) > 0 {
		sample := r.MissingValues
		if len(sample) > 5 {
			sample = sample[:5]
		}
		lines = append(lines, "  Sample Missing Values: "+quotedList(sample))
	}
	return strings.Join(lines, "\n")
}
