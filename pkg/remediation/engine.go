package remediation

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-tablecheck/pkg/contract"
	"github.com/goliatone/go-tablecheck/pkg/table"
)

// ErrInvalidConfig reports a remediation declaration the engine cannot run.
var ErrInvalidConfig = errors.New("remediation: invalid remediation config")

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

// Engine applies a contract's remediation declarations to a dataset. Engines
// are safe for concurrent use; each run works on its own copy of the input.
type Engine struct {
	logger *zap.Logger
}

// NewEngine builds an engine with the given options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run applies every remediation the contract declares and returns the
// cleaned table plus a diff of what changed. Per-column transforms apply in
// declaration order, so later transforms on a column see the output of
// earlier ones. deduplicate_rows, wherever declared, runs once at the
// dataset level after all column transforms; its removals are counted in the
// diff but produce no cell-level samples.
//
// The input table is never mutated.
func (e *Engine) Run(ctx context.Context, tbl *table.Table, c *contract.Contract) (*table.Table, *Diff, error) {
	if err := ValidateConfigs(c); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	e.logger.Info("remediation run started",
		zap.Int("rows", tbl.NumRows()),
		zap.Int("columns", tbl.NumColumns()),
	)

	work := tbl.Clone()
	treatments := make(map[string][]string)
	var dedup *contract.DeduplicateRowsParams

	for _, col := range c.Columns {
		for _, cfg := range col.Remediation {
			switch {
			case cfg.Type == contract.RemediateDeduplicateRows:
				// Declared per column, executed once for the dataset;
				// the first declaration's params win.
				if dedup == nil {
					p, _ := cfg.Params.(*contract.DeduplicateRowsParams)
					if p == nil {
						p = &contract.DeduplicateRowsParams{Keep: contract.KeepFirst}
					}
					dedup = p
				}
			case cfg.Type == contract.RemediateSplitColumn:
				p, _ := cfg.Params.(*contract.SplitColumnParams)
				splitColumn(work, col.Name, p)
				treatments[col.Name] = append(treatments[col.Name], TreatmentName(cfg.Type))
			case cfg.Type == contract.RemediateCustomCalculation:
				p, _ := cfg.Params.(*contract.CustomCalculationParams)
				customCalculation(work, col.Name, p)
				treatments[col.Name] = append(treatments[col.Name], TreatmentName(cfg.Type))
			case isColumnTransform(cfg.Type):
				applyColumnTransform(work, col.Name, cfg)
				treatments[col.Name] = append(treatments[col.Name], TreatmentName(cfg.Type))
			}
		}
	}

	diff := ComputeDiff(tbl, work)
	for i := range diff.Columns {
		diff.Columns[i].Treatments = treatments[diff.Columns[i].Column]
	}

	if dedup != nil {
		before := work.NumRows()
		work = deduplicateRows(work, dedup)
		diff.RowsRemoved = before - work.NumRows()
	}

	e.logger.Info("remediation run finished",
		zap.Int("rows_changed", diff.RowsChanged),
		zap.Int("cells_changed", diff.CellsChanged),
		zap.Int("rows_removed", diff.RowsRemoved),
	)
	return work, diff, nil
}

func applyColumnTransform(tbl *table.Table, columnName string, cfg contract.RemediationConfig) {
	idx, ok := tbl.ColumnIndex(columnName)
	if !ok {
		// Columns the dataset lacks are a validation concern, not a
		// remediation failure.
		return
	}
	for row := 0; row < tbl.NumRows(); row++ {
		v := tbl.AtIndex(row, idx)
		if next := transformValue(v, cfg); !next.Equal(v) {
			tbl.Set(row, columnName, next)
		}
	}
}

// ValidateConfigs checks every remediation declaration the contract carries
// before any data is touched. It rejects unknown types, date_coerce without
// a target format, and categorical_standardize without a mapping.
func ValidateConfigs(c *contract.Contract) error {
	for _, col := range c.Columns {
		for _, cfg := range col.Remediation {
			if !cfg.Type.Valid() {
				return fmt.Errorf("%w: column %q: unknown remediation type %q", ErrInvalidConfig, col.Name, cfg.Type)
			}
			switch cfg.Type {
			case contract.RemediateDateCoerce:
				p, _ := cfg.Params.(*contract.DateCoerceParams)
				if p == nil || p.TargetFormat == "" {
					return fmt.Errorf("%w: column %q: date_coerce requires target_format", ErrInvalidConfig, col.Name)
				}
			case contract.RemediateCategoricalStandardize:
				p, _ := cfg.Params.(*contract.CategoricalStandardizeParams)
				if p == nil || len(p.Mapping) == 0 {
					return fmt.Errorf("%w: column %q: categorical_standardize requires a mapping", ErrInvalidConfig, col.Name)
				}
			}
		}
	}
	return nil
}

// Preview runs the contract's remediations over the first n rows and scales
// the observed change counts up to the full dataset. It gives wizards a
// cheap estimate without touching every row.
func (e *Engine) Preview(ctx context.Context, tbl *table.Table, c *contract.Contract, n int) (*Diff, error) {
	if n <= 0 || n > tbl.NumRows() {
		n = tbl.NumRows()
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	head := tbl.Subset(rows)

	_, diff, err := e.Run(ctx, head, c)
	if err != nil {
		return nil, err
	}

	// RowChanges and per-column samples keep the sampled head's values;
	// only the aggregate counters are scaled up.
	if n > 0 && tbl.NumRows() > n {
		scale := float64(tbl.NumRows()) / float64(n)
		diff.TotalRows = tbl.NumRows()
		diff.RowsChanged = int(float64(diff.RowsChanged) * scale)
		diff.CellsChanged = int(float64(diff.CellsChanged) * scale)
		for i := range diff.Columns {
			diff.Columns[i].CellsChanged = int(float64(diff.Columns[i].CellsChanged) * scale)
		}
	}
	return diff, nil
}
