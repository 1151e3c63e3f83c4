package remediation

import (
	"errors"
	"sort"

	"github.com/goliatone/go-tablecheck/pkg/contract"
	"github.com/goliatone/go-tablecheck/pkg/table"
	"github.com/goliatone/go-tablecheck/pkg/validation"
)

// DefaultQuarantineName is the bucket for quarantined rows whose column does
// not declare a quarantine_export_name.
const DefaultQuarantineName = "quarantine"

// ErrBlockingErrors reports a validation result that carries blocking errors.
// Failure handling never runs over such a result; no output is produced.
var ErrBlockingErrors = errors.New("remediation: validation result has blocking errors")

// FailureOutcome is the result of resolving a contract's failure policies
// against a validated table.
type FailureOutcome struct {
	// Clean is the table with offending cells nulled and offending rows
	// removed.
	Clean *table.Table
	// Quarantines holds the removed rows routed to quarantine, keyed by
	// bucket name.
	Quarantines map[string]*table.Table
	// RowsDropped counts rows removed by drop_row.
	RowsDropped int
	// RowsQuarantined counts rows removed by quarantine_row.
	RowsQuarantined int
	// CellsNulled counts cells cleared by set_null.
	CellsNulled int
}

// ApplyFailureHandling resolves each cell error against its column's failure
// policy: set_null clears the cell, drop_row removes the row, quarantine_row
// removes the row and routes it to a quarantine bucket, and label_failure
// leaves the row in place for the label columns to mark. Warning-severity
// cell errors trigger their policy the same as errors do; a column that
// should keep warning rows intact uses label_failure.
//
// A row flagged by both a drop_row column and a quarantine_row column is
// removed once and also lands in the quarantine bucket; neither action takes
// precedence over the other. Rows can land in more than one named bucket.
//
// Returns ErrBlockingErrors when the result carries blocking errors; a
// strict_fail policy means no cleaned output at all.
func ApplyFailureHandling(tbl *table.Table, result *validation.Result, c *contract.Contract) (*FailureOutcome, error) {
	if len(result.BlockingErrors) > 0 {
		return nil, ErrBlockingErrors
	}

	byName := make(map[string]*contract.ColumnConfig, len(c.Columns))
	for i := range c.Columns {
		byName[c.Columns[i].Name] = &c.Columns[i]
	}

	work := tbl.Clone()
	removed := make(map[int]struct{})
	quarantineRows := make(map[string]map[int]struct{})
	outcome := &FailureOutcome{Quarantines: make(map[string]*table.Table)}

	for _, ce := range result.CellErrors {
		col, ok := byName[ce.Column]
		if !ok {
			continue
		}
		fh := col.FailureHandlingFor(ce.TestType)
		switch fh.Action {
		case contract.ActionSetNull:
			work.Set(ce.Row, ce.Column, table.Null())
			outcome.CellsNulled++
		case contract.ActionDropRow:
			if _, dup := removed[ce.Row]; !dup {
				removed[ce.Row] = struct{}{}
				outcome.RowsDropped++
			}
		case contract.ActionQuarantineRow:
			name := fh.QuarantineExportName
			if name == "" {
				name = DefaultQuarantineName
			}
			bucket := quarantineRows[name]
			if bucket == nil {
				bucket = make(map[int]struct{})
				quarantineRows[name] = bucket
			}
			bucket[ce.Row] = struct{}{}
			if _, dup := removed[ce.Row]; !dup {
				removed[ce.Row] = struct{}{}
				outcome.RowsQuarantined++
			}
		}
	}

	for name, rows := range quarantineRows {
		indices := sortedRows(rows)
		outcome.Quarantines[name] = tbl.Subset(indices)
	}

	outcome.Clean = work.Filter(func(row int) bool {
		_, gone := removed[row]
		return !gone
	})
	return outcome, nil
}

func sortedRows(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for row := range set {
		out = append(out, row)
	}
	sort.Ints(out)
	return out
}
