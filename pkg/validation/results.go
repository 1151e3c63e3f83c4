// Package validation runs a contract against a dataset: per-column
// normalization, column tests, dataset tests, foreign-key membership checks,
// and cross-field rules, producing a structured result with cell-level
// errors, per-column rollups, and a dataset summary. The engine never
// mutates the caller's table.
package validation

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/goliatone/go-tablecheck/pkg/contract"
	"github.com/goliatone/go-tablecheck/pkg/table"
)

// Status is a column's aggregate verdict.
type Status string

const (
	StatusPass    Status = "PASS"
	StatusFail    Status = "FAIL"
	StatusWarning Status = "WARNING"
)

// CellError pins one failing test to one cell. The remediation engine
// resolves failure handling per cell error, so the set is capped by the
// per-test failed-index caps rather than the full failure population.
type CellError struct {
	Row      int
	Column   string
	Value    table.Value
	TestType contract.ColumnTestType
	Severity contract.Severity
	Message  string
}

// ColumnTestResult is the outcome of one test over one column.
type ColumnTestResult struct {
	ColumnName     string
	TestType       contract.ColumnTestType
	Severity       contract.Severity
	Passed         bool
	TotalValues    int
	FailedCount    int
	FailedIndices  []int
	FailedValues   []table.Value
	ErrorDetails   []string
	WarningMessage string
}

// ColumnResult aggregates all test results for one column.
type ColumnResult struct {
	ColumnName    string
	DataType      contract.DataType
	IsValid       bool
	TotalTests    int
	PassedTests   int
	FailedTests   int
	WarningCount  int
	TestResults   []ColumnTestResult
	OverallStatus Status
}

// DatasetTestResult is the outcome of one dataset-level test.
type DatasetTestResult struct {
	TestType     contract.DatasetTestType
	Severity     contract.Severity
	Passed       bool
	Message      string
	Details      map[string]any
	AffectedRows []int
}

// ForeignKeyCheckResult is the outcome of one membership check.
type ForeignKeyCheckResult struct {
	Name              string
	DatasetColumn     string
	FKColumn          string
	Passed            bool
	TotalValues       int
	MissingCount      int
	MissingValues     []string
	MissingRowIndices []int
}

// Summary is the dataset-level statistics rollup.
type Summary struct {
	TotalRows         int
	TotalColumns      int
	TotalTestsRun     int
	TotalTestsPassed  int
	TotalTestsFailed  int
	TotalWarnings     int
	TotalErrors       int
	RowsWithErrors    int
	CleanRows         int
	ErrorRatePercent  float64
	HasBlockingErrors bool
}

// Result is the complete validation outcome for one dataset.
type Result struct {
	IsValid            bool
	Summary            Summary
	ColumnResults      map[string]ColumnResult
	DatasetTestResults []DatasetTestResult
	ForeignKeyResults  []ForeignKeyCheckResult
	CellErrors         []CellError
	BlockingErrors     []string
}

// calculateSummary rolls component results up into dataset statistics.
// Column rollups contribute their own counters; each dataset test and FK
// check counts as one test run; cell errors drive the per-row error rate.
func calculateSummary(
	columnResults map[string]ColumnResult,
	datasetResults []DatasetTestResult,
	fkResults []ForeignKeyCheckResult,
	cellErrors []CellError,
	rowCount, columnCount int,
) Summary {
	var total, passed, failed, warnings, errs int

	for _, cr := range columnResults {
		total += cr.TotalTests
		passed += cr.PassedTests
		failed += cr.FailedTests
		warnings += cr.WarningCount
	}

	for _, dt := range datasetResults {
		total++
		if dt.Passed {
			passed++
			continue
		}
		failed++
		if dt.Severity == contract.SeverityWarning {
			warnings++
		} else {
			errs++
		}
	}

	for _, fk := range fkResults {
		total++
		if fk.Passed {
			passed++
		} else {
			failed++
			errs++
		}
	}

	errorRows := make(map[int]struct{})
	for _, ce := range cellErrors {
		if ce.Severity == contract.SeverityError {
			errorRows[ce.Row] = struct{}{}
			errs++
		} else {
			warnings++
		}
	}

	rowsWithErrors := len(errorRows)
	rate := 0.0
	if rowCount > 0 {
		rate = float64(rowsWithErrors) / float64(rowCount) * 100
	}

	// HasBlockingErrors is filled in by the engine once the blocking list is
	// final.
	return Summary{
		TotalRows:        rowCount,
		TotalColumns:     columnCount,
		TotalTestsRun:    total,
		TotalTestsPassed: passed,
		TotalTestsFailed: failed,
		TotalWarnings:    warnings,
		TotalErrors:      errs,
		RowsWithErrors:   rowsWithErrors,
		CleanRows:        rowCount - rowsWithErrors,
		ErrorRatePercent: math.Round(rate*100) / 100,
	}
}

// FailedRows returns the sorted row indices carrying at least one
// error-severity cell error.
func (r *Result) FailedRows() []int {
	set := make(map[int]struct{})
	for _, ce := range r.CellErrors {
		if ce.Severity == contract.SeverityError {
			set[ce.Row] = struct{}{}
		}
	}
	out := make([]int, 0, len(set))
	for row := range set {
		out = append(out, row)
	}
	sort.Ints(out)
	return out
}

// ColumnErrorSummary counts cell errors by column and test type.
func (r *Result) ColumnErrorSummary() map[string]map[string]int {
	out := make(map[string]map[string]int)
	for _, ce := range r.CellErrors {
		byTest := out[ce.Column]
		if byTest == nil {
			byTest = make(map[string]int)
			out[ce.Column] = byTest
		}
		byTest[string(ce.TestType)]++
	}
	return out
}

// displayPrinter groups row counts with thousands separators.
var displayPrinter = message.NewPrinter(language.English)

// FormatSummary renders the summary for terminal display.
func FormatSummary(s Summary) string {
	lines := []string{
		"Validation Summary",
		strings.Repeat("=", 40),
		displayPrinter.Sprintf("Total Rows: %d", s.TotalRows),
		fmt.Sprintf("Total Columns: %d", s.TotalColumns),
		fmt.Sprintf("Tests Run: %d", s.TotalTestsRun),
		fmt.Sprintf("Tests Passed: %d", s.TotalTestsPassed),
		fmt.Sprintf("Tests Failed: %d", s.TotalTestsFailed),
		fmt.Sprintf("Warnings: %d", s.TotalWarnings),
		fmt.Sprintf("Errors: %d", s.TotalErrors),
		displayPrinter.Sprintf("Rows with Errors: %d", s.RowsWithErrors),
		displayPrinter.Sprintf("Clean Rows: %d", s.CleanRows),
		fmt.Sprintf("Error Rate: %.2f%%", s.ErrorRatePercent),
	}
	if s.HasBlockingErrors {
		lines = append(lines, "Status: BLOCKED (has strict failures)")
	} else {
		lines = append(lines, "Status: OK")
	}
	return strings.Join(lines, "\n")
}
