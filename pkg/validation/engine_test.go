package validation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-tablecheck/pkg/testsupport"
)

const orderContract = `
columns:
  - name: order_id
    data_type: integer
    failure_handling:
      action: label_failure
      label_column_name: issues
    tests:
      - type: not_null
        severity: error
      - type: uniqueness
        severity: error
  - name: amount
    data_type: float
    failure_handling:
      action: label_failure
      label_column_name: issues
    normalization:
      trim_whitespace: true
    tests:
      - type: range
        severity: error
        params:
          min: 0
          max: 1000
dataset_tests:
  - type: duplicate_rows
    severity: warning
`

func TestEngineRunCollectsErrors(t *testing.T) {
	t.Parallel()

	c := testsupport.MustContract(t, orderContract)
	tbl := testsupport.MustTable(t, []string{"order_id", "amount"}, [][]*string{
		{testsupport.S("1"), testsupport.S(" 50 ")},
		{testsupport.S("2"), testsupport.S("2000")},
		{nil, testsupport.S("10")},
	})

	result, err := NewEngine().Run(context.Background(), tbl, c, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.IsValid {
		t.Fatalf("result must be invalid")
	}
	if len(result.BlockingErrors) != 0 {
		t.Fatalf("label_failure must not block: %v", result.BlockingErrors)
	}

	// Normalization trims " 50 " before the range test sees it.
	amount := result.ColumnResults["amount"]
	rangeResult := amount.TestResults[0]
	if rangeResult.FailedCount != 1 {
		t.Fatalf("range failures = %d, want 1 (only 2000)", rangeResult.FailedCount)
	}

	order := result.ColumnResults["order_id"]
	if order.OverallStatus != StatusFail {
		t.Fatalf("order_id status = %q, want FAIL", order.OverallStatus)
	}

	if result.Summary.TotalErrors == 0 {
		t.Fatalf("summary must count cell errors")
	}
	if result.Summary.HasBlockingErrors {
		t.Fatalf("no blocking errors expected")
	}
}

func TestEngineRunStrictFailBlocks(t *testing.T) {
	t.Parallel()

	c := testsupport.MustContract(t, `
columns:
  - name: id
    failure_handling:
      action: strict_fail
    tests:
      - type: not_null
        severity: error
`)
	tbl := testsupport.MustTable(t, []string{"id"}, [][]*string{{nil}})

	result, err := NewEngine().Run(context.Background(), tbl, c, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.BlockingErrors) != 1 {
		t.Fatalf("blocking = %v, want one strict_fail entry", result.BlockingErrors)
	}
	if !result.Summary.HasBlockingErrors || result.IsValid {
		t.Fatalf("blocking run must be invalid")
	}
}

func TestEngineRunMissingColumnBlocks(t *testing.T) {
	t.Parallel()

	c := testsupport.MustContract(t, `
columns:
  - name: ghost
    tests:
      - type: not_null
        severity: error
`)
	tbl := testsupport.MustTable(t, []string{"present"}, [][]*string{{testsupport.S("x")}})

	result, err := NewEngine().Run(context.Background(), tbl, c, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.BlockingErrors) != 1 || !strings.Contains(result.BlockingErrors[0], "not found in dataset") {
		t.Fatalf("blocking = %v", result.BlockingErrors)
	}
	if _, tested := result.ColumnResults["ghost"]; tested {
		t.Fatalf("missing column must not produce a column result")
	}
}

func TestEngineRunRejectsInvalidContract(t *testing.T) {
	t.Parallel()

	c := testsupport.MustContract(t, `
columns:
  - name: dup
  - name: dup
`)
	tbl := testsupport.MustTable(t, []string{"dup"}, [][]*string{{testsupport.S("x")}})

	_, err := NewEngine().Run(context.Background(), tbl, c, nil)
	if !errors.Is(err, ErrInvalidContract) {
		t.Fatalf("err = %v, want ErrInvalidContract", err)
	}
}

func TestEngineRunWarningsDoNotInvalidate(t *testing.T) {
	t.Parallel()

	c := testsupport.MustContract(t, `
columns:
  - name: id
    failure_handling:
      action: label_failure
      label_column_name: issues
    tests:
      - type: not_null
        severity: warning
`)
	tbl := testsupport.MustTable(t, []string{"id"}, [][]*string{{nil}})

	result, err := NewEngine().Run(context.Background(), tbl, c, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !result.IsValid {
		t.Fatalf("warning-only run must stay valid")
	}
	if result.Summary.TotalWarnings == 0 {
		t.Fatalf("summary must count warnings")
	}
	if result.ColumnResults["id"].OverallStatus != StatusWarning {
		t.Fatalf("column status = %q, want WARNING", result.ColumnResults["id"].OverallStatus)
	}
}

func TestEngineRunCancelledContext(t *testing.T) {
	t.Parallel()

	c := testsupport.MustContract(t, `
columns:
  - name: id
    tests:
      - type: not_null
        severity: error
`)
	tbl := testsupport.MustTable(t, []string{"id"}, [][]*string{{testsupport.S("1")}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewEngine().Run(ctx, tbl, c, nil); err == nil {
		t.Fatalf("cancelled context must abort the run")
	}
}

func TestEngineRunRejectsOverLimitDataset(t *testing.T) {
	t.Parallel()

	c := testsupport.MustContract(t, `
limits:
  max_rows: 2
columns:
  - name: a
`)
	tbl := testsupport.MustTable(t, []string{"a"}, [][]*string{
		{testsupport.S("1")},
		{testsupport.S("2")},
		{testsupport.S("3")},
	})

	_, err := NewEngine().Run(context.Background(), tbl, c, nil)
	if !errors.Is(err, ErrOverLimit) {
		t.Fatalf("err = %v, want ErrOverLimit", err)
	}
}
