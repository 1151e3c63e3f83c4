package tablecheck_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	tablecheck "github.com/goliatone/go-tablecheck"
	"github.com/goliatone/go-tablecheck/pkg/testsupport"
	"github.com/goliatone/go-tablecheck/pkg/validation"
)

const rootContract = `
columns:
  - name: amount
    data_type: float
    failure_handling:
      action: quarantine_row
      quarantine_export_name: bad_amounts
    tests:
      - type: range
        severity: error
        params:
          min: 0
`

func writeContract(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contract.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write contract: %v", err)
	}
	return path
}

func TestLoadContract(t *testing.T) {
	t.Parallel()

	c, err := tablecheck.LoadContract(writeContract(t, rootContract))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Columns) != 1 || c.Columns[0].Name != "amount" {
		t.Fatalf("unexpected columns: %+v", c.Columns)
	}
}

func TestLoadContractRejectsInvalid(t *testing.T) {
	t.Parallel()

	bad := `
columns:
  - name: amount
    failure_handling:
      action: label_failure
`
	_, err := tablecheck.LoadContract(writeContract(t, bad))
	if err == nil {
		t.Fatal("expected self-validation failure")
	}
	var ce *tablecheck.ContractError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %T, want *tablecheck.ContractError", err)
	}
}

func TestValidateAndResolve(t *testing.T) {
	t.Parallel()

	c := testsupport.MustContract(t, rootContract)
	tbl := testsupport.MustTable(t, []string{"amount"}, [][]*string{
		{testsupport.S("10")},
		{testsupport.S("-5")},
	})

	result, err := tablecheck.Validate(context.Background(), tbl, c, nil)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if result.IsValid {
		t.Fatal("negative amount must fail the range test")
	}

	_, outcome, err := tablecheck.Resolve(context.Background(), tbl, c, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if outcome.Clean.NumRows() != 1 {
		t.Fatalf("clean rows = %d, want 1", outcome.Clean.NumRows())
	}
	q, ok := outcome.Quarantines["bad_amounts"]
	if !ok {
		t.Fatalf("missing bad_amounts bucket, have %d buckets", len(outcome.Quarantines))
	}
	if q.NumRows() != 1 || q.Row(0)[0].Raw != "-5" {
		t.Fatalf("quarantine bucket holds the failing row with its original value")
	}
}

func TestValidateAcceptsEngineOptions(t *testing.T) {
	t.Parallel()

	c := testsupport.MustContract(t, rootContract)
	tbl := testsupport.MustTable(t, []string{"amount"}, [][]*string{
		{testsupport.S("1")},
	})

	result, err := tablecheck.Validate(context.Background(), tbl, c, nil, validation.WithConcurrency(1))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !result.IsValid {
		t.Fatalf("clean table must pass: %+v", result.Summary)
	}
}
