package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tablecheck/pkg/contract"
	"github.com/goliatone/go-tablecheck/pkg/table"
	"github.com/goliatone/go-tablecheck/pkg/testsupport"
)

func labelFixture(t *testing.T) (*table.Table, *Result) {
	t.Helper()
	tbl := testsupport.MustTable(t, []string{"a", "b"}, [][]*string{
		{testsupport.S("1"), testsupport.S("x")},
		{testsupport.S("2"), testsupport.S("y")},
		{testsupport.S("3"), testsupport.S("z")},
	})
	result := &Result{
		CellErrors: []CellError{
			{Row: 0, Column: "a", TestType: contract.TestNotNull, Severity: contract.SeverityError},
			{Row: 0, Column: "b", TestType: contract.TestPattern, Severity: contract.SeverityError},
			{Row: 1, Column: "a", TestType: contract.TestRange, Severity: contract.SeverityWarning},
		},
	}
	return tbl, result
}

func TestAddErrorColumns(t *testing.T) {
	t.Parallel()

	tbl, result := labelFixture(t)
	out := AddErrorColumns(tbl, result)

	labels, _ := out.Column(ErrorLabelColumn)
	counts, _ := out.Column(ErrorCountColumn)
	statuses, _ := out.Column(StatusColumn)

	if labels[0].Raw != "not_null:a|pattern:b" {
		t.Fatalf("row 0 label = %q", labels[0].Raw)
	}
	if counts[0].Raw != "2" || statuses[0].Raw != "FAIL" {
		t.Fatalf("row 0 count/status = %q/%q", counts[0].Raw, statuses[0].Raw)
	}

	// Warnings do not count toward the error label.
	if labels[1].Raw != "" || counts[1].Raw != "0" || statuses[1].Raw != "PASS" {
		t.Fatalf("warning-only row labeled as failure: %q/%q/%q", labels[1].Raw, counts[1].Raw, statuses[1].Raw)
	}
	if statuses[2].Raw != "PASS" {
		t.Fatalf("clean row status = %q", statuses[2].Raw)
	}

	// The input table is untouched.
	if tbl.HasColumn(ErrorLabelColumn) {
		t.Fatalf("input table was mutated")
	}
}

func TestAddErrorColumnsOverwritesReservedNames(t *testing.T) {
	t.Parallel()

	tbl := testsupport.MustTable(t, []string{"a", StatusColumn}, [][]*string{
		{testsupport.S("1"), testsupport.S("stale")},
	})
	out := AddErrorColumns(tbl, &Result{})
	if out.NumColumns() != 4 {
		t.Fatalf("columns = %d, want 4 (reserved name overwritten, not duplicated)", out.NumColumns())
	}
	statuses, _ := out.Column(StatusColumn)
	if statuses[0].Raw != "PASS" {
		t.Fatalf("reserved column not overwritten: %q", statuses[0].Raw)
	}
}

func TestRowsByStatus(t *testing.T) {
	t.Parallel()

	tbl, result := labelFixture(t)
	failed, warned, passed := RowsByStatus(tbl, result)

	if failed.NumRows() != 1 || warned.NumRows() != 1 || passed.NumRows() != 1 {
		t.Fatalf("split = %d/%d/%d, want 1/1/1", failed.NumRows(), warned.NumRows(), passed.NumRows())
	}
	if v := failed.Row(0)[0]; v.Raw != "1" {
		t.Fatalf("failed row = %q", v.Raw)
	}
	if v := warned.Row(0)[0]; v.Raw != "2" {
		t.Fatalf("warned row = %q", v.Raw)
	}
	if v := passed.Row(0)[0]; v.Raw != "3" {
		t.Fatalf("passed row = %q", v.Raw)
	}
}

func TestFailedRowsAndColumnErrorSummary(t *testing.T) {
	t.Parallel()

	_, result := labelFixture(t)

	if diff := cmp.Diff([]int{0}, result.FailedRows()); diff != "" {
		t.Fatalf("failed rows (-want +got):\n%s", diff)
	}

	want := map[string]map[string]int{
		"a": {"not_null": 1, "range": 1},
		"b": {"pattern": 1},
	}
	if diff := cmp.Diff(want, result.ColumnErrorSummary()); diff != "" {
		t.Fatalf("column error summary (-want +got):\n%s", diff)
	}
}
