// Package table provides the in-memory tabular dataset the validation and
// remediation engines operate on: named columns over rows of nullable text
// values. Tables are fully materialized; the engines never stream.
package table

import (
	"errors"
	"fmt"
)

var (
	// ErrNoColumns indicates a table cannot be built without columns.
	ErrNoColumns = errors.New("table: at least one column is required")
	// ErrUnknownColumn indicates a lookup for a column the table lacks.
	ErrUnknownColumn = errors.New("table: unknown column")
)

// Table is an ordered set of named columns over rows of values. Column names
// are unique. The zero value is not usable; construct with New or FromRows.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Value
}

// New builds an empty table with the given column names. Names must be
// non-empty and unique.
func New(columns []string) (*Table, error) {
	if len(columns) == 0 {
		return nil, ErrNoColumns
	}
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		if name == "" {
			return nil, fmt.Errorf("table: column %d has an empty name", i)
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("table: duplicate column name %q", name)
		}
		index[name] = i
	}
	return &Table{
		columns: append([]string(nil), columns...),
		index:   index,
	}, nil
}

// FromRows builds a table from column names and row data. Every row must
// match the column count.
func FromRows(columns []string, rows [][]Value) (*Table, error) {
	t, err := New(columns)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if err := t.AppendRow(row); err != nil {
			return nil, fmt.Errorf("table: row %d: %w", i, err)
		}
	}
	return t, nil
}

// AppendRow adds one row. The value count must match the column count.
func (t *Table) AppendRow(values []Value) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("table: row has %d values, want %d", len(values), len(t.columns))
	}
	t.rows = append(t.rows, append([]Value(nil), values...))
	return nil
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	return len(t.rows)
}

// NumColumns returns the column count.
func (t *Table) NumColumns() int {
	return len(t.columns)
}

// Columns returns a copy of the column names in declaration order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Column returns a copy of the named column's values.
func (t *Table) Column(name string) ([]Value, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	out := make([]Value, len(t.rows))
	for r := range t.rows {
		out[r] = t.rows[r][i]
	}
	return out, true
}

// At returns the value at (row, column). The second result is false when the
// column does not exist or the row is out of range.
func (t *Table) At(row int, column string) (Value, bool) {
	i, ok := t.index[column]
	if !ok || row < 0 || row >= len(t.rows) {
		return Value{}, false
	}
	return t.rows[row][i], true
}

// AtIndex returns the value at numeric (row, col). Callers are expected to
// hold indices obtained from ColumnIndex and row bounds from NumRows.
func (t *Table) AtIndex(row, col int) Value {
	return t.rows[row][col]
}

// Set replaces the value at (row, column).
func (t *Table) Set(row int, column string, v Value) error {
	i, ok := t.index[column]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	if row < 0 || row >= len(t.rows) {
		return fmt.Errorf("table: row %d out of range", row)
	}
	t.rows[row][i] = v
	return nil
}

// AddColumn appends a new column. The value count must match the row count;
// a nil slice fills the column with nulls.
func (t *Table) AddColumn(name string, values []Value) error {
	if name == "" {
		return errors.New("table: column name is required")
	}
	if _, dup := t.index[name]; dup {
		return fmt.Errorf("table: duplicate column name %q", name)
	}
	if values != nil && len(values) != len(t.rows) {
		return fmt.Errorf("table: column %q has %d values, want %d", name, len(values), len(t.rows))
	}
	t.index[name] = len(t.columns)
	t.columns = append(t.columns, name)
	for r := range t.rows {
		v := Null()
		if values != nil {
			v = values[r]
		}
		t.rows[r] = append(t.rows[r], v)
	}
	return nil
}

// RenameColumn changes a column's name in place, keeping its position.
func (t *Table) RenameColumn(oldName, newName string) error {
	i, ok := t.index[oldName]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, oldName)
	}
	if newName == "" {
		return errors.New("table: new column name is required")
	}
	if _, dup := t.index[newName]; dup && newName != oldName {
		return fmt.Errorf("table: duplicate column name %q", newName)
	}
	delete(t.index, oldName)
	t.index[newName] = i
	t.columns[i] = newName
	return nil
}

// DropColumn removes a column and its values.
func (t *Table) DropColumn(name string) error {
	i, ok := t.index[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	t.columns = append(t.columns[:i], t.columns[i+1:]...)
	delete(t.index, name)
	for name, idx := range t.index {
		if idx > i {
			t.index[name] = idx - 1
		}
	}
	for r := range t.rows {
		t.rows[r] = append(t.rows[r][:i], t.rows[r][i+1:]...)
	}
	return nil
}

// Row returns a copy of the values in row i.
func (t *Table) Row(i int) []Value {
	return append([]Value(nil), t.rows[i]...)
}

// Clone returns a deep copy. Engines clone before mutating so the caller's
// table is never touched.
func (t *Table) Clone() *Table {
	out := &Table{
		columns: append([]string(nil), t.columns...),
		index:   make(map[string]int, len(t.index)),
		rows:    make([][]Value, len(t.rows)),
	}
	for name, i := range t.index {
		out.index[name] = i
	}
	for r := range t.rows {
		out.rows[r] = append([]Value(nil), t.rows[r]...)
	}
	return out
}

// Subset returns a new table containing the given rows, in the given order.
// Row indices refer to the receiver and out-of-range indices are skipped.
func (t *Table) Subset(rows []int) *Table {
	out := &Table{
		columns: append([]string(nil), t.columns...),
		index:   make(map[string]int, len(t.index)),
	}
	for name, i := range t.index {
		out.index[name] = i
	}
	for _, r := range rows {
		if r < 0 || r >= len(t.rows) {
			continue
		}
		out.rows = append(out.rows, append([]Value(nil), t.rows[r]...))
	}
	return out
}

// Filter returns a new table keeping only rows for which keep returns true.
func (t *Table) Filter(keep func(row int) bool) *Table {
	kept := make([]int, 0, len(t.rows))
	for r := range t.rows {
		if keep(r) {
			kept = append(kept, r)
		}
	}
	return t.Subset(kept)
}
