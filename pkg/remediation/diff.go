package remediation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-tablecheck/pkg/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// smallDatasetRows is the row count under which every change is captured in
// the diff samples. At or above it, samples cap at sampleCapPerColumn.
const (
	smallDatasetRows   = 1000
	sampleCapPerColumn = 1000
)

// CellChange records one cell rewritten by remediation.
type CellChange struct {
	RowIndex int         `json:"row_index"`
	Column   string      `json:"column"`
	Original table.Value `json:"original"`
	New      table.Value `json:"new"`
}

// ColumnDiff aggregates the changes remediation made to one column.
type ColumnDiff struct {
	Column       string       `json:"column"`
	Treatments   []string     `json:"treatments,omitempty"`
	CellsChanged int          `json:"cells_changed"`
	ChangeRate   float64      `json:"change_rate"`
	Samples      []CellChange `json:"samples,omitempty"`
}

// Diff is the full change report for a remediation run. RowChanges maps a
// row index to the number of cells rewritten in that row.
type Diff struct {
	TotalRows       int          `json:"total_rows"`
	TotalColumns    int          `json:"total_columns"`
	RowsChanged     int          `json:"rows_changed"`
	CellsChanged    int          `json:"cells_changed"`
	RowsRemoved     int          `json:"rows_removed"`
	ColumnsAdded    []string     `json:"columns_added,omitempty"`
	AffectedColumns []string     `json:"affected_columns,omitempty"`
	RowChanges      map[int]int  `json:"row_changes,omitempty"`
	Columns         []ColumnDiff `json:"columns,omitempty"`
}

// ComputeDiff compares two tables sharing a row index space and reports the
// per-column change masks. Columns present only in after are reported as
// added, not as changed cells.
func ComputeDiff(before, after *table.Table) *Diff {
	d := &Diff{
		TotalRows:    before.NumRows(),
		TotalColumns: before.NumColumns(),
		RowChanges:   make(map[int]int),
	}

	sampleCap := sampleCapPerColumn
	if before.NumRows() < smallDatasetRows {
		sampleCap = before.NumRows()
	}

	for _, name := range after.Columns() {
		beforeCol, ok := before.Column(name)
		if !ok {
			d.ColumnsAdded = append(d.ColumnsAdded, name)
			continue
		}
		afterCol, _ := after.Column(name)

		cd := ColumnDiff{Column: name}
		for row := range beforeCol {
			if row >= len(afterCol) {
				break
			}
			if beforeCol[row].Equal(afterCol[row]) {
				continue
			}
			cd.CellsChanged++
			d.RowChanges[row]++
			if len(cd.Samples) < sampleCap {
				cd.Samples = append(cd.Samples, CellChange{
					RowIndex: row,
					Column:   name,
					Original: beforeCol[row],
					New:      afterCol[row],
				})
			}
		}
		if cd.CellsChanged == 0 {
			continue
		}
		if before.NumRows() > 0 {
			cd.ChangeRate = float64(cd.CellsChanged) / float64(before.NumRows())
		}
		d.Columns = append(d.Columns, cd)
		d.AffectedColumns = append(d.AffectedColumns, name)
		d.CellsChanged += cd.CellsChanged
	}
	d.RowsChanged = len(d.RowChanges)
	return d
}

// RowsWithChanges lists the changed row indexes in ascending order.
func (d *Diff) RowsWithChanges() []int {
	rows := make([]int, 0, len(d.RowChanges))
	for row := range d.RowChanges {
		rows = append(rows, row)
	}
	sort.Ints(rows)
	return rows
}

// Statistics summarizes a diff as flat counters for reports.
type Statistics struct {
	TotalRows         int
	RowsChanged       int
	RowChangeRate     float64
	CellsChanged      int
	RowsRemoved       int
	AffectedColumns   int
	UnaffectedColumns int
}

// Stats derives summary counters from the diff.
func (d *Diff) Stats() Statistics {
	s := Statistics{
		TotalRows:       d.TotalRows,
		RowsChanged:     d.RowsChanged,
		CellsChanged:    d.CellsChanged,
		RowsRemoved:     d.RowsRemoved,
		AffectedColumns: len(d.AffectedColumns),
	}
	if d.TotalColumns > len(d.AffectedColumns) {
		s.UnaffectedColumns = d.TotalColumns - len(d.AffectedColumns)
	}
	if d.TotalRows > 0 {
		s.RowChangeRate = float64(d.RowsChanged) / float64(d.TotalRows)
	}
	return s
}

// displayValue renders a cell for human-facing diff output.
func displayValue(v table.Value) string {
	if v.IsNull() {
		return "(null)"
	}
	if v.Raw == "" {
		return "(empty)"
	}
	return v.Raw
}

// SampleTable flattens the per-column samples into Row/Column/Original/New
// display rows, ordered by row index then column, capped at limit (<=0 means
// no cap).
func (d *Diff) SampleTable(limit int) *table.Table {
	var all []CellChange
	for _, cd := range d.Columns {
		all = append(all, cd.Samples...)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].RowIndex != all[j].RowIndex {
			return all[i].RowIndex < all[j].RowIndex
		}
		return all[i].Column < all[j].Column
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	out, _ := table.New([]string{"Row", "Column", "Original", "New"})
	for _, ch := range all {
		_ = out.AppendRow([]table.Value{
			table.String(fmt.Sprintf("%d", ch.RowIndex+1)),
			table.String(ch.Column),
			table.String(displayValue(ch.Original)),
			table.String(displayValue(ch.New)),
		})
	}
	return out
}

// FormatSummary renders the diff as a short human-readable block.
func (d *Diff) FormatSummary() string {
	p := message.NewPrinter(language.English)
	var b strings.Builder
	p.Fprintf(&b, "Remediation summary: %d of %d rows changed, %d cells rewritten\n",
		d.RowsChanged, d.TotalRows, d.CellsChanged)
	if d.RowsRemoved > 0 {
		p.Fprintf(&b, "Rows removed: %d\n", d.RowsRemoved)
	}
	if len(d.ColumnsAdded) > 0 {
		fmt.Fprintf(&b, "Columns added: %s\n", strings.Join(d.ColumnsAdded, ", "))
	}
	for _, cd := range d.Columns {
		line := fmt.Sprintf("  %s: %d cells (%.1f%%)", cd.Column, cd.CellsChanged, cd.ChangeRate*100)
		if len(cd.Treatments) > 0 {
			line += " via " + strings.Join(cd.Treatments, ", ")
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
