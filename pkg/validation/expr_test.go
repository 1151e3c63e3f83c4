package validation

import (
	"testing"

	"github.com/goliatone/go-tablecheck/pkg/table"
)

func TestParseComparison(t *testing.T) {
	t.Parallel()

	cases := []struct {
		expr  string
		left  string
		op    string
		right string
	}{
		{"a <= b", "a", "<=", "b"},
		{"end_date >= start_date", "end_date", ">=", "start_date"},
		{"status == 'active'", "status", "==", "active"},
		{"amount>0", "amount", ">", "0"},
		{`name != "unknown"`, "name", "!=", "unknown"},
	}
	for _, tc := range cases {
		c, err := ParseComparison(tc.expr)
		if err != nil {
			t.Errorf("parse(%q): %v", tc.expr, err)
			continue
		}
		if c.Left.Text != tc.left || c.Op != tc.op || c.Right.Text != tc.right {
			t.Errorf("parse(%q) = %q %q %q, want %q %q %q",
				tc.expr, c.Left.Text, c.Op, c.Right.Text, tc.left, tc.op, tc.right)
		}
	}
}

func TestParseComparisonRejectsCompound(t *testing.T) {
	t.Parallel()

	for _, expr := range []string{
		"a <= b AND b > 0",
		"a <= b and b > 0",
		"a <= b || b > 0",
		"a <= b && c == d",
		"a <=",
		"<= b",
		"a = b",
	} {
		if _, err := ParseComparison(expr); err == nil {
			t.Errorf("parse(%q) should fail", expr)
		}
	}
}

func TestComparisonEval(t *testing.T) {
	t.Parallel()

	row := map[string]table.Value{
		"start": table.String("2024-01-01"),
		"end":   table.String("2024-06-30"),
		"qty":   table.String("5"),
		"name":  table.String("widget"),
	}
	resolve := func(name string) (table.Value, bool) {
		v, ok := row[name]
		return v, ok
	}

	cases := []struct {
		expr string
		want bool
	}{
		// Numeric comparison when both sides parse as numbers.
		{"qty > 0", true},
		{"qty >= 5", true},
		{"qty < 5", false},
		// Date comparison when both sides parse as dates.
		{"end >= start", true},
		{"start > end", false},
		// String comparison otherwise; quoted operands are literals.
		{"name == 'widget'", true},
		{"name != 'widget'", false},
		// Bare operands that match no column are literals.
		{"name == widget", true},
	}
	for _, tc := range cases {
		c, err := ParseComparison(tc.expr)
		if err != nil {
			t.Fatalf("parse(%q): %v", tc.expr, err)
		}
		if got := c.Eval(resolve); got != tc.want {
			t.Errorf("eval(%q) = %v, want %v", tc.expr, got, tc.want)
		}
	}
}

func TestComparisonEvalNullOperandFails(t *testing.T) {
	t.Parallel()

	resolve := func(name string) (table.Value, bool) {
		if name == "a" {
			return table.Null(), true
		}
		return table.String("1"), true
	}
	c, err := ParseComparison("a <= b")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Eval(resolve) {
		t.Fatalf("comparison against null must not hold")
	}
}
