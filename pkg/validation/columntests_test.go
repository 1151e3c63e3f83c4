package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tablecheck/pkg/contract"
	"github.com/goliatone/go-tablecheck/pkg/table"
)

func values(raws ...string) []table.Value {
	out := make([]table.Value, len(raws))
	for i, r := range raws {
		if r == "\x00" {
			out[i] = table.Null()
			continue
		}
		out[i] = table.String(r)
	}
	return out
}

const null = "\x00"

func f64(f float64) *float64 { return &f }
func i(n int) *int           { return &n }

func TestNotNullTest(t *testing.T) {
	t.Parallel()

	r := testNotNull(values("a", null, "b", null), "col", contract.SeverityError)
	if r.Passed {
		t.Fatalf("expected failure")
	}
	if r.FailedCount != 2 {
		t.Fatalf("failed count = %d, want 2", r.FailedCount)
	}
	if diff := cmp.Diff([]int{1, 3}, r.FailedIndices); diff != "" {
		t.Fatalf("failed indices (-want +got):\n%s", diff)
	}

	if r := testNotNull(values("a", "b"), "col", contract.SeverityError); !r.Passed {
		t.Fatalf("all-present column must pass")
	}
}

func TestTypeConformance(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		dataType contract.DataType
		vals     []table.Value
		failed   int
	}{
		{"integers", contract.TypeInteger, values("1", "-3", "2.5", "abc"), 2},
		{"floats accept currency and commas", contract.TypeFloat, values("1.5", "$2,000", "x"), 1},
		{"booleans", contract.TypeBoolean, values("yes", "no", "0", "maybe"), 1},
		{"dates", contract.TypeDate, values("2024-01-15", "01/15/2024", "not a date"), 1},
		{"nulls ignored", contract.TypeInteger, values(null, "1"), 0},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := testTypeConformance(tc.vals, "col", tc.dataType, contract.SeverityError)
			if r.FailedCount != tc.failed {
				t.Fatalf("failed count = %d, want %d (details %v)", r.FailedCount, tc.failed, r.ErrorDetails)
			}
		})
	}
}

func TestRangeTest(t *testing.T) {
	t.Parallel()

	p := &contract.RangeParams{Min: f64(0), Max: f64(100)}

	r := testRange(values("15%", "$50", "-1", "150"), "col", contract.SeverityError, p)
	if r.Passed {
		t.Fatalf("expected failure")
	}
	if diff := cmp.Diff([]int{2, 3}, r.FailedIndices); diff != "" {
		t.Fatalf("percent and currency forms must parse; only out-of-range fail (-want +got):\n%s", diff)
	}

	if r := testRange(values("0", "100", null), "col", contract.SeverityError, p); !r.Passed {
		t.Fatalf("inclusive bounds and nulls must pass")
	}

	// Unparseable values are skipped; type_conformance owns them.
	if r := testRange(values("abc"), "col", contract.SeverityError, p); !r.Passed {
		t.Fatalf("non-numeric value must be skipped by range, not failed")
	}
}

func TestLengthTest(t *testing.T) {
	t.Parallel()

	p := &contract.LengthParams{Min: i(2), Max: i(5)}
	r := testLength(values("ok", "toolong", "x", null), "col", contract.SeverityError, p)
	if diff := cmp.Diff([]int{1, 2}, r.FailedIndices); diff != "" {
		t.Fatalf("failed indices (-want +got):\n%s", diff)
	}
}

func TestEnumTest(t *testing.T) {
	t.Parallel()

	p := &contract.EnumParams{AllowedValues: []string{"CA", "TX"}}
	r := testEnum(values("CA", "XX", "TX", null), "col", contract.SeverityError, p)
	if r.FailedCount != 1 {
		t.Fatalf("failed count = %d, want 1", r.FailedCount)
	}

	preset := &contract.EnumParams{Preset: "us_state_2_letter"}
	if r := testEnum(values("CA", "NY"), "col", contract.SeverityError, preset); !r.Passed {
		t.Fatalf("preset states must pass: %v", r.ErrorDetails)
	}
	if r := testEnum(values("ZZ"), "col", contract.SeverityError, preset); r.Passed {
		t.Fatalf("non-state code must fail preset enum")
	}
}

func TestUniquenessTest(t *testing.T) {
	t.Parallel()

	r := testUniqueness(values("a", "b", "a", null, null), "col", contract.SeverityError, &contract.UniquenessParams{AllowNulls: true})
	if r.Passed {
		t.Fatalf("duplicate must fail")
	}
	if diff := cmp.Diff([]int{0, 2}, r.FailedIndices); diff != "" {
		t.Fatalf("every member of a duplicate group flags (-want +got):\n%s", diff)
	}

	// allow_nulls=false: repeated nulls count as duplicates too.
	r = testUniqueness(values("a", null, null), "col", contract.SeverityError, &contract.UniquenessParams{AllowNulls: false})
	if r.Passed {
		t.Fatalf("repeated nulls must fail when nulls are not allowed")
	}
}

func TestMonotonicTest(t *testing.T) {
	t.Parallel()

	asc := &contract.MonotonicParams{Direction: contract.Ascending}

	if r := testMonotonic(values("1", "2", "2", "3"), "col", contract.SeverityError, asc); !r.Passed {
		t.Fatalf("non-strict ascending must accept equal neighbors: %v", r.ErrorDetails)
	}

	r := testMonotonic(values("1", "3", "2"), "col", contract.SeverityError, asc)
	if r.Passed {
		t.Fatalf("expected failure")
	}
	if diff := cmp.Diff([]int{2}, r.FailedIndices); diff != "" {
		t.Fatalf("failure must point at the out-of-order element (-want +got):\n%s", diff)
	}

	desc := &contract.MonotonicParams{Direction: contract.Descending}
	if r := testMonotonic(values("5", "5", "3"), "col", contract.SeverityError, desc); !r.Passed {
		t.Fatalf("descending sequence must pass")
	}

	// Nulls are skipped, not treated as breaks.
	if r := testMonotonic(values("1", null, "2"), "col", contract.SeverityError, asc); !r.Passed {
		t.Fatalf("null gap must not break monotonicity")
	}
}

func TestCardinalityAlwaysWarns(t *testing.T) {
	t.Parallel()

	max := 2
	r := testCardinality(values("a", "b", "c"), "col", &contract.CardinalityParams{Min: 1, Max: &max})
	if r.Passed {
		t.Fatalf("expected cardinality breach")
	}
	if r.Severity != contract.SeverityWarning {
		t.Fatalf("cardinality is always a warning, got %q", r.Severity)
	}
}

func TestPatternTest(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		params *contract.PatternParams
		pass   []string
		fail   []string
	}{
		{
			"email preset",
			&contract.PatternParams{Tier: contract.TierPreset, PresetName: "email"},
			[]string{"ada@example.com"},
			[]string{"not-an-email", "x@"},
		},
		{
			"advanced regex matches the whole value",
			&contract.PatternParams{Tier: contract.TierAdvanced, Pattern: `[A-Z]{2}\d{3}`},
			[]string{"AB123"},
			[]string{"xAB123x", "AB123extra"},
		},
		{
			"advanced regex rejects trailing garbage",
			&contract.PatternParams{Tier: contract.TierAdvanced, Pattern: `[0-9]+`},
			[]string{"123"},
			[]string{"123abc", "abc123"},
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			for _, v := range tc.pass {
				if r := testPattern(values(v), "col", contract.SeverityError, tc.params); !r.Passed {
					t.Errorf("%q must match: %v", v, r.ErrorDetails)
				}
			}
			for _, v := range tc.fail {
				if r := testPattern(values(v), "col", contract.SeverityError, tc.params); r.Passed {
					t.Errorf("%q must not match", v)
				}
			}
		})
	}
}

func TestDateRuleTest(t *testing.T) {
	t.Parallel()

	simple := &contract.DateRuleParams{Mode: contract.DateRuleSimple, TargetFormat: "YYYY-MM-DD"}
	if r := testDateRule(values("2024-01-15"), "col", contract.SeverityError, simple); !r.Passed {
		t.Fatalf("exact-format date must pass simple mode: %v", r.ErrorDetails)
	}
	if r := testDateRule(values("01/15/2024"), "col", contract.SeverityError, simple); r.Passed {
		t.Fatalf("off-format date must fail simple mode")
	}

	robust := &contract.DateRuleParams{
		Mode:                 contract.DateRuleRobust,
		AcceptedInputFormats: []string{"YYYY-MM-DD", "MM/DD/YYYY"},
	}
	if r := testDateRule(values("2024-01-15", "01/15/2024"), "col", contract.SeverityError, robust); !r.Passed {
		t.Fatalf("both listed formats must parse: %v", r.ErrorDetails)
	}
	if r := testDateRule(values("15-Jan-2024"), "col", contract.SeverityError, robust); r.Passed {
		t.Fatalf("unlisted format must fail robust mode")
	}

	serial := &contract.DateRuleParams{Mode: contract.DateRuleRobust, ExcelSerialEnabled: true}
	if r := testDateRule(values("45306"), "col", contract.SeverityError, serial); !r.Passed {
		t.Fatalf("excel serial must parse when enabled: %v", r.ErrorDetails)
	}
	noSerial := &contract.DateRuleParams{Mode: contract.DateRuleRobust}
	if r := testDateRule(values("45306"), "col", contract.SeverityError, noSerial); r.Passed {
		t.Fatalf("excel serial must fail when disabled")
	}
}

func TestDateWindowTest(t *testing.T) {
	t.Parallel()

	p := &contract.DateWindowParams{MinDate: "2024-01-01", MaxDate: "2024-12-31"}
	r := testDateWindow(values("2024-06-01", "2023-12-31", "2025-01-01", null), "col", contract.SeverityError, p)
	if diff := cmp.Diff([]int{1, 2}, r.FailedIndices); diff != "" {
		t.Fatalf("failed indices (-want +got):\n%s", diff)
	}
}

func TestFailureCollectorCaps(t *testing.T) {
	t.Parallel()

	vals := make([]table.Value, 500)
	for i := range vals {
		vals[i] = table.Null()
	}
	r := testNotNull(vals, "col", contract.SeverityError)
	if r.FailedCount != 500 {
		t.Fatalf("failed count = %d, want full population", r.FailedCount)
	}
	if len(r.FailedIndices) != 100 {
		t.Fatalf("failed indices = %d, want capped at 100", len(r.FailedIndices))
	}
	if len(r.ErrorDetails) != 10 {
		t.Fatalf("error details = %d, want capped at 10", len(r.ErrorDetails))
	}
	if r.FailedIndices[0] != 0 || r.FailedIndices[99] != 99 {
		t.Fatalf("samples must be the first N, deterministically")
	}
}
