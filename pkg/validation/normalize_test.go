package validation

import (
	"testing"

	"github.com/goliatone/go-tablecheck/pkg/contract"
	"github.com/goliatone/go-tablecheck/pkg/table"
	"github.com/goliatone/go-tablecheck/pkg/testsupport"
)

func TestApplyCaseModes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		mode contract.CaseMode
		in   string
		want string
	}{
		{contract.CaseLower, "MiXeD", "mixed"},
		{contract.CaseUpper, "MiXeD", "MIXED"},
		{contract.CaseTitle, "new york city", "New York City"},
		{contract.CaseNone, "MiXeD", "MiXeD"},
	}
	for _, tc := range cases {
		if got := ApplyCase(tc.in, tc.mode); got != tc.want {
			t.Errorf("ApplyCase(%q, %q) = %q, want %q", tc.in, tc.mode, got, tc.want)
		}
	}
}

func TestStripNonPrintable(t *testing.T) {
	t.Parallel()

	in := "ab\x00c\td\ne\rf\x07"
	want := "abc\td\ne\rf"
	if got := StripNonPrintable(in); got != want {
		t.Fatalf("StripNonPrintable = %q, want %q", got, want)
	}
}

func TestNormalizerOrder(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(&contract.Normalization{
		TrimWhitespace: true,
		NullTokens:     []string{"N/A"},
		Case:           contract.CaseLower,
	})

	// Null tokens must match against trimmed text, before case folding.
	if got := n.Value(table.String("  N/A  ")); !got.IsNull() {
		t.Fatalf("trimmed token must null out, got %q", got.Raw)
	}
	// "n/a" is not declared; lowercasing happens after token matching so it
	// survives as text.
	if got := n.Value(table.String("n/a")); got.IsNull() {
		t.Fatalf("case folding must not create new token matches")
	}
	if got := n.Value(table.String("  HELLO  ")); got.Raw != "hello" {
		t.Fatalf("trim+lower = %q, want hello", got.Raw)
	}
}

func TestNormalizerNilConfigIsIdentity(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(nil)
	in := table.String("  AS IS  ")
	if got := n.Value(in); got != in {
		t.Fatalf("nil config must be identity, got %q", got.Raw)
	}
	if got := n.Value(table.Null()); !got.IsNull() {
		t.Fatalf("null passes through")
	}
}

func TestNormalizeTable(t *testing.T) {
	t.Parallel()

	c := testsupport.MustContract(t, `
columns:
  - name: email
    normalization:
      trim_whitespace: true
      case: lower
  - name: untouched
`)
	tbl := testsupport.MustTable(t, []string{"email", "untouched"}, [][]*string{
		{testsupport.S(" Ada@Example.COM "), testsupport.S(" RAW ")},
	})

	out := Normalize(tbl, c)
	if v := out.Row(0)[0]; v.Raw != "ada@example.com" {
		t.Fatalf("normalized email = %q", v.Raw)
	}
	if v := out.Row(0)[1]; v.Raw != " RAW " {
		t.Fatalf("column without normalization must stay untouched, got %q", v.Raw)
	}
	// Input table untouched.
	if v := tbl.Row(0)[0]; v.Raw != " Ada@Example.COM " {
		t.Fatalf("input mutated: %q", v.Raw)
	}
}
