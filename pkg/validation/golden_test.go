package validation_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tablecheck/pkg/testsupport"
	"github.com/goliatone/go-tablecheck/pkg/validation"
)

// Exercises the public surface end to end from a contract fixture and pins
// the terminal summary text. Regenerate with UPDATE_GOLDENS=1.
func TestSummaryTextGolden(t *testing.T) {
	c := testsupport.MustLoadContract(t, filepath.Join("testdata", "orders_contract.yaml"))
	tbl := testsupport.MustTable(t, []string{"order_id", "amount"}, [][]*string{
		{testsupport.S("1"), testsupport.S(" 50 ")},
		{testsupport.S("2"), testsupport.S("2000")},
		{nil, testsupport.S("10")},
	})

	result, err := validation.NewEngine().Run(context.Background(), tbl, c, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	got := []byte(validation.FormatSummary(result.Summary))
	goldenPath := filepath.Join("testdata", "summary.golden")
	if testsupport.WriteMaybeGolden(t, goldenPath, got) {
		return
	}
	want := testsupport.MustReadGolden(t, goldenPath)
	if diff := cmp.Diff(string(want), string(got)); diff != "" {
		t.Fatalf("summary text (-golden +got):\n%s", diff)
	}
}
