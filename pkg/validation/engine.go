package validation

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-tablecheck/pkg/contract"
	"github.com/goliatone/go-tablecheck/pkg/table"
)

// ErrInvalidContract reports a contract that failed self-validation. A run
// never starts against such a contract; fix it and re-validate first.
var ErrInvalidContract = errors.New("validation: contract failed self-validation")

// ErrOverLimit reports a dataset that exceeds the contract's declared row or
// column bounds while reject_if_over_limit is set.
var ErrOverLimit = errors.New("validation: dataset exceeds contract limits")

// defaultConcurrency bounds the column-test fan-out.
const defaultConcurrency = 8

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's structured logger. The default is a nop
// logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithConcurrency caps how many columns are tested at once. Values below 1
// keep the default.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n >= 1 {
			e.concurrency = n
		}
	}
}

// Engine runs a contract against a dataset. Engines are safe for concurrent
// use; each run works on its own normalized copy of the input.
type Engine struct {
	logger      *zap.Logger
	concurrency int
}

// NewEngine builds an engine with the given options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger:      zap.NewNop(),
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run validates the table against the contract. The reference table backs
// foreign-key checks and may be nil when the contract declares none. The
// input table is never mutated; normalization happens on a working copy.
//
// Run returns ErrInvalidContract when the contract fails self-validation.
// Every other failure mode lands inside the Result: per-cell errors are
// collected, missing columns and strict failures become blocking errors, and
// IsValid reflects the aggregate.
func (e *Engine) Run(ctx context.Context, tbl *table.Table, c *contract.Contract, reference *table.Table) (*Result, error) {
	if cv := contract.Validate(c); !cv.IsValid {
		return nil, fmt.Errorf("%w: %d errors", ErrInvalidContract, len(cv.Errors))
	}
	if err := checkLimits(tbl, c); err != nil {
		return nil, err
	}

	e.logger.Info("validation run started",
		zap.Int("rows", tbl.NumRows()),
		zap.Int("columns", tbl.NumColumns()),
		zap.Int("declared_columns", len(c.Columns)),
		zap.Int("dataset_tests", len(c.DatasetTests)),
		zap.Int("fk_checks", len(c.ForeignKeyChecks)))

	// Normalization is a hard barrier: every test stage reads the
	// normalized copy.
	normalized := Normalize(tbl, c)
	e.logger.Debug("normalization complete")

	var blocking []string

	columnResults, cellErrors, columnBlocking, err := e.runColumnStage(ctx, normalized, c)
	if err != nil {
		return nil, err
	}
	blocking = append(blocking, columnBlocking...)
	e.logger.Debug("column tests complete", zap.Int("columns_tested", len(columnResults)))

	datasetResults, datasetBlocking := runDatasetStage(normalized, c)
	blocking = append(blocking, datasetBlocking...)
	e.logger.Debug("dataset tests complete", zap.Int("tests", len(datasetResults)))

	fkResults, fkBlocking := runForeignKeyChecks(normalized, c, reference)
	blocking = append(blocking, fkBlocking...)

	summary := calculateSummary(columnResults, datasetResults, fkResults, cellErrors, tbl.NumRows(), tbl.NumColumns())
	summary.HasBlockingErrors = len(blocking) > 0

	result := &Result{
		IsValid:            len(blocking) == 0 && summary.TotalErrors == 0,
		Summary:            summary,
		ColumnResults:      columnResults,
		DatasetTestResults: datasetResults,
		ForeignKeyResults:  fkResults,
		CellErrors:         cellErrors,
		BlockingErrors:     blocking,
	}

	if len(blocking) > 0 {
		e.logger.Warn("validation run has blocking errors",
			zap.Int("blocking_errors", len(blocking)),
			zap.Strings("first_blocking", capStrings(blocking, 3)))
	}
	e.logger.Info("validation run finished",
		zap.Bool("is_valid", result.IsValid),
		zap.Int("errors", summary.TotalErrors),
		zap.Int("warnings", summary.TotalWarnings))

	return result, nil
}

// checkLimits enforces the contract's row/column bounds when the dataset
// config asks for rejection. Absent limits mean no bound.
func checkLimits(tbl *table.Table, c *contract.Contract) error {
	if c.Limits == nil || !c.Dataset.RowLimitBehavior.RejectIfOverLimit {
		return nil
	}
	if c.Limits.MaxRows > 0 && tbl.NumRows() > c.Limits.MaxRows {
		return fmt.Errorf("%w: %d rows, limit %d", ErrOverLimit, tbl.NumRows(), c.Limits.MaxRows)
	}
	if c.Limits.MaxColumns > 0 && tbl.NumColumns() > c.Limits.MaxColumns {
		return fmt.Errorf("%w: %d columns, limit %d", ErrOverLimit, tbl.NumColumns(), c.Limits.MaxColumns)
	}
	return nil
}

// runColumnStage fans out one task per declared column. Column tests are pure
// functions of one column and its contract fragment, so the only shared state
// is the per-column result slot each task owns.
func (e *Engine) runColumnStage(ctx context.Context, normalized *table.Table, c *contract.Contract) (map[string]ColumnResult, []CellError, []string, error) {
	type columnOutcome struct {
		result ColumnResult
		cells  []CellError
	}

	outcomes := make([]*columnOutcome, len(c.Columns))
	var blocking []string

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i := range c.Columns {
		col := &c.Columns[i]
		values, ok := normalized.Column(col.Name)
		if !ok {
			blocking = append(blocking, fmt.Sprintf("Column '%s' not found in dataset", col.Name))
			continue
		}

		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, cells := validateColumn(values, col)
			outcomes[i] = &columnOutcome{result: result, cells: cells}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, nil, fmt.Errorf("validation: column tests: %w", err)
	}

	columnResults := make(map[string]ColumnResult, len(c.Columns))
	var cellErrors []CellError
	for i := range c.Columns {
		out := outcomes[i]
		if out == nil {
			continue
		}
		col := &c.Columns[i]
		columnResults[col.Name] = out.result
		cellErrors = append(cellErrors, out.cells...)

		for _, tr := range out.result.TestResults {
			if tr.Passed || tr.Severity != contract.SeverityError {
				continue
			}
			if col.FailureHandlingFor(tr.TestType).Action == contract.ActionStrictFail {
				blocking = append(blocking, fmt.Sprintf("Column '%s' test '%s' has strict_fail policy", col.Name, tr.TestType))
			}
		}
	}
	return columnResults, cellErrors, blocking, nil
}

// validateColumn runs every configured test over one column's values and
// expands failed samples into cell errors.
func validateColumn(values []table.Value, col *contract.ColumnConfig) (ColumnResult, []CellError) {
	var testResults []ColumnTestResult
	var cellErrors []CellError

	for _, test := range col.Tests {
		result := runColumnTest(values, col.Name, col.DataType, test)
		testResults = append(testResults, result)
		if result.Passed {
			continue
		}
		for i, row := range result.FailedIndices {
			var value table.Value
			if i < len(result.FailedValues) {
				value = result.FailedValues[i]
			}
			message := ""
			if i < len(result.ErrorDetails) {
				message = result.ErrorDetails[i]
			}
			cellErrors = append(cellErrors, CellError{
				Row:      row,
				Column:   col.Name,
				Value:    value,
				TestType: test.Type,
				Severity: test.Severity,
				Message:  message,
			})
		}
	}

	passed, failed, warningCount, errorCount := 0, 0, 0, 0
	for _, r := range testResults {
		if r.Passed {
			passed++
			continue
		}
		failed++
		if r.Severity == contract.SeverityWarning {
			warningCount++
		} else {
			errorCount++
		}
	}

	status := StatusPass
	switch {
	case errorCount > 0:
		status = StatusFail
	case warningCount > 0:
		status = StatusWarning
	}

	return ColumnResult{
		ColumnName:    col.Name,
		DataType:      col.DataType,
		IsValid:       errorCount == 0,
		TotalTests:    len(testResults),
		PassedTests:   passed,
		FailedTests:   failed,
		WarningCount:  warningCount,
		TestResults:   testResults,
		OverallStatus: status,
	}, cellErrors
}

// runDatasetStage executes every dataset-level test over the normalized
// table.
func runDatasetStage(normalized *table.Table, c *contract.Contract) ([]DatasetTestResult, []string) {
	var results []DatasetTestResult
	var blocking []string

	for i := range c.DatasetTests {
		test := &c.DatasetTests[i]
		result := runDatasetTest(normalized, *test)
		results = append(results, result)

		if !result.Passed && test.Severity == contract.SeverityError &&
			test.OnFail != nil && test.OnFail.Action == contract.ActionStrictFail {
			blocking = append(blocking, fmt.Sprintf("Dataset test '%s' has strict_fail policy", test.Type))
		}
	}
	return results, blocking
}

func capStrings(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
