package validation

import (
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-tablecheck/pkg/contract"
	"github.com/goliatone/go-tablecheck/pkg/table"
)

// Downstream export columns. The names are part of the compatibility surface
// with existing tooling and must not change.
const (
	ErrorLabelColumn = "__data_doctor_errors__"
	ErrorCountColumn = "__data_doctor_error_count__"
	StatusColumn     = "__data_doctor_status__"
)

// AddErrorColumns returns a copy of the table with three label columns
// appended: a pipe-joined list of test_type:column_name tokens per row, a
// per-row error count, and a PASS/FAIL status. Rows without cell errors read
// as PASS with an empty label.
func AddErrorColumns(tbl *table.Table, result *Result) *table.Table {
	out := tbl.Clone()

	rowLabels := make(map[int][]string)
	for _, ce := range result.CellErrors {
		if ce.Severity != contract.SeverityError {
			continue
		}
		rowLabels[ce.Row] = append(rowLabels[ce.Row], string(ce.TestType)+":"+ce.Column)
	}

	labels := make([]table.Value, out.NumRows())
	counts := make([]table.Value, out.NumRows())
	statuses := make([]table.Value, out.NumRows())
	for row := 0; row < out.NumRows(); row++ {
		tokens := rowLabels[row]
		labels[row] = table.String(strings.Join(tokens, "|"))
		counts[row] = table.String(strconv.Itoa(len(tokens)))
		if len(tokens) > 0 {
			statuses[row] = table.String(string(StatusFail))
		} else {
			statuses[row] = table.String(string(StatusPass))
		}
	}

	// Column names are reserved; a dataset that already carries them is
	// overwritten rather than duplicated.
	replaceOrAdd(out, ErrorLabelColumn, labels)
	replaceOrAdd(out, ErrorCountColumn, counts)
	replaceOrAdd(out, StatusColumn, statuses)
	return out
}

func replaceOrAdd(tbl *table.Table, name string, values []table.Value) {
	if _, ok := tbl.ColumnIndex(name); ok {
		for row := range values {
			tbl.Set(row, name, values[row])
		}
		return
	}
	tbl.AddColumn(name, values)
}

// RowsByStatus splits the table's rows by validation outcome: rows with at
// least one error-severity cell error, rows with only warnings, and clean
// rows. Each returned table is a fresh subset of the input.
func RowsByStatus(tbl *table.Table, result *Result) (failed, warned, passed *table.Table) {
	errorRows := make(map[int]struct{})
	warningRows := make(map[int]struct{})
	for _, ce := range result.CellErrors {
		if ce.Severity == contract.SeverityError {
			errorRows[ce.Row] = struct{}{}
		} else {
			warningRows[ce.Row] = struct{}{}
		}
	}

	var failedRows, warnedRows, passedRows []int
	for row := 0; row < tbl.NumRows(); row++ {
		if _, isErr := errorRows[row]; isErr {
			failedRows = append(failedRows, row)
			continue
		}
		if _, isWarn := warningRows[row]; isWarn {
			warnedRows = append(warnedRows, row)
			continue
		}
		passedRows = append(passedRows, row)
	}
	sort.Ints(failedRows)
	sort.Ints(warnedRows)
	sort.Ints(passedRows)

	return tbl.Subset(failedRows), tbl.Subset(warnedRows), tbl.Subset(passedRows)
}
