package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tablecheck/pkg/contract"
	"github.com/goliatone/go-tablecheck/pkg/testsupport"
)

func TestDuplicateRowsTest(t *testing.T) {
	t.Parallel()

	tbl := testsupport.MustTable(t, []string{"a", "b"}, [][]*string{
		{testsupport.S("x"), testsupport.S("1")},
		{testsupport.S("x"), testsupport.S("1")},
		{testsupport.S("y"), testsupport.S("2")},
	})

	r := testDuplicateRows(tbl, contract.SeverityError, nil)
	if r.Passed {
		t.Fatalf("expected duplicates")
	}
	if diff := cmp.Diff([]int{0, 1}, r.AffectedRows); diff != "" {
		t.Fatalf("affected rows (-want +got):\n%s", diff)
	}

	// A subset restricting the key changes the grouping.
	subset := testDuplicateRows(tbl, contract.SeverityError, &contract.DuplicateRowsParams{Subset: []string{"b"}})
	if subset.Passed {
		t.Fatalf("subset over b still has duplicates")
	}
}

func TestDuplicateRowsNullsGroupTogether(t *testing.T) {
	t.Parallel()

	tbl := testsupport.MustTable(t, []string{"a"}, [][]*string{
		{nil},
		{nil},
	})
	r := testDuplicateRows(tbl, contract.SeverityError, nil)
	if r.Passed {
		t.Fatalf("two all-null rows are duplicates of each other")
	}
}

func TestPrimaryKeyCompletenessTest(t *testing.T) {
	t.Parallel()

	tbl := testsupport.MustTable(t, []string{"id", "v"}, [][]*string{
		{testsupport.S("1"), testsupport.S("a")},
		{nil, testsupport.S("b")},
	})

	r := testPrimaryKeyCompleteness(tbl, contract.SeverityError, &contract.KeyColumnsParams{KeyColumns: []string{"id"}})
	if r.Passed {
		t.Fatalf("null key must fail completeness")
	}
	if diff := cmp.Diff([]int{1}, r.AffectedRows); diff != "" {
		t.Fatalf("affected rows (-want +got):\n%s", diff)
	}

	empty := testPrimaryKeyCompleteness(tbl, contract.SeverityError, nil)
	if empty.Passed {
		t.Fatalf("missing key column list must fail, not silently pass")
	}
}

func TestKeyUniquenessTests(t *testing.T) {
	t.Parallel()

	tbl := testsupport.MustTable(t, []string{"id", "region"}, [][]*string{
		{testsupport.S("1"), testsupport.S("east")},
		{testsupport.S("1"), testsupport.S("west")},
		{testsupport.S("1"), testsupport.S("east")},
	})

	pk := runDatasetTest(tbl, contract.DatasetTest{
		Type:     contract.DatasetTestPrimaryKeyUniqueness,
		Severity: contract.SeverityError,
		Params:   &contract.KeyColumnsParams{KeyColumns: []string{"id"}},
	})
	if pk.Passed {
		t.Fatalf("repeated primary key must fail")
	}

	composite := runDatasetTest(tbl, contract.DatasetTest{
		Type:     contract.DatasetTestCompositeKeyUniqueness,
		Severity: contract.SeverityError,
		Params:   &contract.KeyColumnsParams{KeyColumns: []string{"id", "region"}},
	})
	if composite.Passed {
		t.Fatalf("rows 0 and 2 share the composite key")
	}

	distinct := runDatasetTest(tbl, contract.DatasetTest{
		Type:     contract.DatasetTestCompositeKeyUniqueness,
		Severity: contract.SeverityError,
		Params:   &contract.KeyColumnsParams{KeyColumns: []string{"region"}},
	})
	_ = distinct // east appears twice; composite over region alone fails too
	if distinct.Passed {
		t.Fatalf("repeated region must fail single-column composite key")
	}
}

func TestCrossFieldRuleGateExcludesNullRows(t *testing.T) {
	t.Parallel()

	tbl := testsupport.MustTable(t, []string{"a", "b"}, [][]*string{
		{testsupport.S("1"), testsupport.S("2")},
		{nil, testsupport.S("2")},
		{testsupport.S("5"), testsupport.S("2")},
	})

	r := testCrossFieldRule(tbl, contract.SeverityError, &contract.CrossFieldRuleParams{
		RuleName: "a_le_b",
		If:       contract.CrossFieldCondition{AllNotNull: []string{"a", "b"}},
		Assert:   contract.CrossFieldAssertion{Expression: "a <= b"},
	})
	if r.Passed {
		t.Fatalf("row 2 violates a <= b")
	}
	if got := r.Details["rows_checked"]; got != 2 {
		t.Fatalf("rows checked = %v, want 2 (null-gated row excluded entirely)", got)
	}
	if diff := cmp.Diff([]int{2}, r.AffectedRows); diff != "" {
		t.Fatalf("affected rows (-want +got):\n%s", diff)
	}
}

func TestCrossFieldRuleRejectsCompoundExpressions(t *testing.T) {
	t.Parallel()

	tbl := testsupport.MustTable(t, []string{"a", "b"}, [][]*string{
		{testsupport.S("1"), testsupport.S("2")},
	})

	r := testCrossFieldRule(tbl, contract.SeverityError, &contract.CrossFieldRuleParams{
		RuleName: "compound",
		Assert:   contract.CrossFieldAssertion{Expression: "a <= b AND b > 0"},
	})
	if r.Passed {
		t.Fatalf("compound expression must be reported as a parse failure")
	}
}

func TestOutliersIQR(t *testing.T) {
	t.Parallel()

	tbl := testsupport.MustTable(t, []string{"v"}, [][]*string{
		{testsupport.S("1")}, {testsupport.S("2")}, {testsupport.S("3")},
		{testsupport.S("4")}, {testsupport.S("5")}, {testsupport.S("100")},
	})

	r := testOutliersIQR(tbl, contract.SeverityError, &contract.OutlierIQRParams{Column: "v", Multiplier: 1.5})
	if !r.Passed {
		t.Fatalf("outlier scans are informational and never fail the dataset")
	}
	if r.Severity != contract.SeverityWarning {
		t.Fatalf("severity = %q, want warning", r.Severity)
	}
	if diff := cmp.Diff([]int{5}, r.AffectedRows); diff != "" {
		t.Fatalf("IQR must flag 100 and only 100 (-want +got):\n%s", diff)
	}
	if got := r.Details["outlier_count"]; got != 1 {
		t.Fatalf("outlier_count = %v, want 1", got)
	}
}

func TestOutliersZScore(t *testing.T) {
	t.Parallel()

	rows := make([][]*string, 0, 21)
	for i := 0; i < 20; i++ {
		rows = append(rows, []*string{testsupport.S("10")})
	}
	rows = append(rows, []*string{testsupport.S("1000")})
	tbl := testsupport.MustTable(t, []string{"v"}, rows)

	r := testOutliersZScore(tbl, contract.SeverityError, &contract.OutlierZScoreParams{Column: "v", Threshold: 3.0})
	if !r.Passed || r.Severity != contract.SeverityWarning {
		t.Fatalf("z-score scan must warn, not fail (passed=%v severity=%q)", r.Passed, r.Severity)
	}
	if diff := cmp.Diff([]int{20}, r.AffectedRows); diff != "" {
		t.Fatalf("affected rows (-want +got):\n%s", diff)
	}
}

func TestOutliersMissingColumnIsNoop(t *testing.T) {
	t.Parallel()

	tbl := testsupport.MustTable(t, []string{"v"}, [][]*string{{testsupport.S("1")}})
	r := testOutliersIQR(tbl, contract.SeverityError, &contract.OutlierIQRParams{Column: "absent", Multiplier: 1.5})
	if !r.Passed {
		t.Fatalf("missing outlier column must not fail the run")
	}
}
