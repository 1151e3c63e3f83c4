// Package report renders validation results and remediation diffs into
// self-contained HTML documents. Templates are embedded; dataset-derived
// strings are sanitized before they reach a template.
package report

import (
	"bytes"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-tablecheck/pkg/remediation"
	"github.com/goliatone/go-tablecheck/pkg/table"
	"github.com/goliatone/go-tablecheck/pkg/validation"
)

// maxExampleRows caps the failed-example table in the report.
const maxExampleRows = 50

// Meta carries run identification for the report header.
type Meta struct {
	DatasetName string
	ContractID  string
	GeneratedAt time.Time
}

// Renderer renders HTML reports from the embedded template set. Construct
// with NewRenderer; the zero value is not usable.
type Renderer struct {
	set *pongo2.TemplateSet
}

// NewRenderer builds a renderer over the embedded templates.
func NewRenderer() (*Renderer, error) {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return nil, fmt.Errorf("report: embedded templates: %w", err)
	}
	set := pongo2.NewSet("tablecheck", pongo2.NewFSLoader(sub))
	return &Renderer{set: set}, nil
}

// ValidationReport renders the full validation report. diff is optional; when
// present the report includes the cleansing summary section.
func (r *Renderer) ValidationReport(result *validation.Result, diff *remediation.Diff, meta Meta) ([]byte, error) {
	ctx := pongo2.Context{
		"meta":          metaContext(meta),
		"is_valid":      result.IsValid,
		"summary":       summaryContext(result.Summary),
		"blocking":      cleanAll(result.BlockingErrors),
		"columns":       columnContexts(result),
		"dataset_tests": datasetTestContexts(result.DatasetTestResults),
		"fk_checks":     fkContexts(result.ForeignKeyResults),
		"examples":      exampleContexts(result.CellErrors),
	}
	if diff != nil {
		ctx["cleansing"] = diffContext(diff)
	}
	return r.render("report.html", ctx)
}

// RemediationSummary renders the standalone remediation-only document.
func (r *Renderer) RemediationSummary(diff *remediation.Diff, meta Meta) ([]byte, error) {
	return r.render("remediation.html", pongo2.Context{
		"meta":      metaContext(meta),
		"cleansing": diffContext(diff),
	})
}

func (r *Renderer) render(name string, ctx pongo2.Context) ([]byte, error) {
	tmpl, err := r.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("report: load template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(ctx, &buf); err != nil {
		return nil, fmt.Errorf("report: render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func metaContext(meta Meta) map[string]any {
	generated := meta.GeneratedAt
	if generated.IsZero() {
		generated = time.Now().UTC()
	}
	return map[string]any{
		"dataset_name": clean(meta.DatasetName),
		"contract_id":  clean(meta.ContractID),
		"generated_at": generated.Format("2006-01-02 15:04:05 UTC"),
	}
}

func summaryContext(s validation.Summary) map[string]any {
	return map[string]any{
		"total_rows":       s.TotalRows,
		"total_columns":    s.TotalColumns,
		"tests_run":        s.TotalTestsRun,
		"tests_passed":     s.TotalTestsPassed,
		"tests_failed":     s.TotalTestsFailed,
		"warnings":         s.TotalWarnings,
		"errors":           s.TotalErrors,
		"rows_with_errors": s.RowsWithErrors,
		"clean_rows":       s.CleanRows,
		"error_rate":       fmt.Sprintf("%.2f", s.ErrorRatePercent),
	}
}

func columnContexts(result *validation.Result) []map[string]any {
	names := make([]string, 0, len(result.ColumnResults))
	for name := range result.ColumnResults {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]map[string]any, 0, len(names))
	for _, name := range names {
		cr := result.ColumnResults[name]
		tests := make([]map[string]any, 0, len(cr.TestResults))
		for _, tr := range cr.TestResults {
			tests = append(tests, map[string]any{
				"test_type":    string(tr.TestType),
				"severity":     string(tr.Severity),
				"passed":       tr.Passed,
				"failed_count": tr.FailedCount,
				"total_values": tr.TotalValues,
				"message":      clean(tr.WarningMessage),
			})
		}
		out = append(out, map[string]any{
			"name":         clean(cr.ColumnName),
			"data_type":    string(cr.DataType),
			"status":       string(cr.OverallStatus),
			"tests_passed": cr.PassedTests,
			"tests_total":  cr.TotalTests,
			"tests":        tests,
		})
	}
	return out
}

func datasetTestContexts(results []validation.DatasetTestResult) []map[string]any {
	out := make([]map[string]any, 0, len(results))
	for _, dr := range results {
		out = append(out, map[string]any{
			"test_type":     string(dr.TestType),
			"severity":      string(dr.Severity),
			"passed":        dr.Passed,
			"message":       clean(dr.Message),
			"affected_rows": len(dr.AffectedRows),
		})
	}
	return out
}

func fkContexts(results []validation.ForeignKeyCheckResult) []map[string]any {
	out := make([]map[string]any, 0, len(results))
	for _, fr := range results {
		out = append(out, map[string]any{
			"name":           clean(fr.Name),
			"dataset_column": clean(fr.DatasetColumn),
			"fk_column":      clean(fr.FKColumn),
			"passed":         fr.Passed,
			"missing_count":  fr.MissingCount,
			"missing_values": cleanAll(fr.MissingValues),
		})
	}
	return out
}

func exampleContexts(cellErrors []validation.CellError) []map[string]any {
	out := make([]map[string]any, 0, maxExampleRows)
	for _, ce := range cellErrors {
		if len(out) == maxExampleRows {
			break
		}
		out = append(out, map[string]any{
			"row":       ce.Row + 1,
			"column":    clean(ce.Column),
			"value":     clean(displayCell(ce.Value)),
			"test_type": string(ce.TestType),
			"severity":  string(ce.Severity),
			"message":   clean(ce.Message),
		})
	}
	return out
}

func displayCell(v table.Value) string {
	if v.IsNull() {
		return "(null)"
	}
	if v.Raw == "" {
		return "(empty)"
	}
	return v.Raw
}

func diffContext(diff *remediation.Diff) map[string]any {
	columns := make([]map[string]any, 0, len(diff.Columns))
	for _, cd := range diff.Columns {
		columns = append(columns, map[string]any{
			"column":        clean(cd.Column),
			"treatments":    cleanAll(cd.Treatments),
			"cells_changed": cd.CellsChanged,
			"change_rate":   fmt.Sprintf("%.1f", cd.ChangeRate*100),
		})
	}

	samples := make([]map[string]any, 0, maxExampleRows)
	sampleTable := diff.SampleTable(maxExampleRows)
	for row := 0; row < sampleTable.NumRows(); row++ {
		cells := sampleTable.Row(row)
		samples = append(samples, map[string]any{
			"row":      clean(cells[0].Raw),
			"column":   clean(cells[1].Raw),
			"original": clean(cells[2].Raw),
			"new":      clean(cells[3].Raw),
		})
	}

	return map[string]any{
		"total_rows":    diff.TotalRows,
		"rows_changed":  diff.RowsChanged,
		"cells_changed": diff.CellsChanged,
		"rows_removed":  diff.RowsRemoved,
		"columns_added": cleanAll(diff.ColumnsAdded),
		"columns":       columns,
		"samples":       samples,
	}
}
