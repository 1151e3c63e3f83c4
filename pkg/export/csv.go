// Package export writes tables to CSV with spreadsheet formula-injection
// escaping and names quarantine bundle files.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-tablecheck/pkg/table"
)

// Options tunes CSV output.
type Options struct {
	// Delimiter defaults to ','.
	Delimiter rune
	// NullText renders null cells. Defaults to the empty string.
	NullText string
	// DisableFormulaEscaping turns off the leading-character escape. Leave
	// it off unless the output is guaranteed never to reach a spreadsheet.
	DisableFormulaEscaping bool
}

// formulaPrefixes are the cell-leading characters spreadsheets treat as
// formula starts.
const formulaPrefixes = "=+-@"

// escapeFormula defuses a would-be formula by prefixing a single quote,
// which spreadsheets render as literal text.
func escapeFormula(s string) string {
	if s == "" {
		return s
	}
	if strings.ContainsRune(formulaPrefixes, rune(s[0])) {
		return "'" + s
	}
	return s
}

// CSV renders the table as CSV bytes. Formula-injection escaping is on by
// default for headers and cells alike.
func CSV(tbl *table.Table, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if opts.Delimiter != 0 {
		w.Comma = opts.Delimiter
	}

	render := func(s string) string {
		if opts.DisableFormulaEscaping {
			return s
		}
		return escapeFormula(s)
	}

	header := make([]string, tbl.NumColumns())
	for i, name := range tbl.Columns() {
		header[i] = render(name)
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("export: write header: %w", err)
	}

	record := make([]string, tbl.NumColumns())
	for row := 0; row < tbl.NumRows(); row++ {
		for col, v := range tbl.Row(row) {
			if v.IsNull() {
				record[col] = opts.NullText
				continue
			}
			record[col] = render(v.Raw)
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("export: write row %d: %w", row, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export: flush: %w", err)
	}
	return buf.Bytes(), nil
}

// QuarantineFilename derives the output path for a named quarantine bucket
// from the main output path: {base}_quarantine_{name}{ext}.
func QuarantineFilename(outputPath, bucketName string) string {
	ext := filepath.Ext(outputPath)
	base := strings.TrimSuffix(outputPath, ext)
	if ext == "" {
		ext = ".csv"
	}
	return fmt.Sprintf("%s_quarantine_%s%s", base, sanitizeBucketName(bucketName), ext)
}

// sanitizeBucketName keeps bucket names filesystem-safe.
func sanitizeBucketName(name string) string {
	if name == "" {
		return "quarantine"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}
