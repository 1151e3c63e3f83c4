// Package testsupport holds fixture and golden-file helpers shared by the
// engine tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tablecheck/pkg/contract"
	"github.com/goliatone/go-tablecheck/pkg/table"
)

// MustTable builds a table from column names and rows of nullable strings. A
// nil cell is a null value. Fails the test on construction errors.
func MustTable(t *testing.T, columns []string, rows [][]*string) *table.Table {
	t.Helper()

	tbl, err := table.New(columns)
	if err != nil {
		t.Fatalf("build table: %v", err)
	}
	for i, row := range rows {
		values := make([]table.Value, len(row))
		for j, cell := range row {
			if cell == nil {
				values[j] = table.Null()
			} else {
				values[j] = table.String(*cell)
			}
		}
		if err := tbl.AppendRow(values); err != nil {
			t.Fatalf("append row %d: %v", i, err)
		}
	}
	return tbl
}

// S returns a pointer to s, for building MustTable rows inline.
func S(s string) *string {
	return &s
}

// MustContract parses a YAML contract document, failing the test on parse
// errors.
func MustContract(t *testing.T, doc string) *contract.Contract {
	t.Helper()

	c, err := contract.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse contract: %v", err)
	}
	return c
}

// MustLoadContract reads and parses a contract fixture file.
func MustLoadContract(t *testing.T, path string) *contract.Contract {
	t.Helper()

	c, err := contract.ParseFile(path)
	if err != nil {
		t.Fatalf("load contract fixture: %v", err)
	}
	return c
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (the test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// DiffTables compares two tables cell by cell and returns a cmp-style diff
// string, empty when equal.
func DiffTables(want, got *table.Table) string {
	return cmp.Diff(dumpTable(want), dumpTable(got))
}

func dumpTable(t *table.Table) map[string]any {
	if t == nil {
		return nil
	}
	rows := make([][]table.Value, t.NumRows())
	for i := range rows {
		rows[i] = t.Row(i)
	}
	return map[string]any{
		"columns": t.Columns(),
		"rows":    rows,
	}
}
