// Package tabio reads delimited text files into tables. It owns the messy
// edge of file ingestion: encoding fallback, delimiter sniffing, and the
// import settings a contract pins so a file loads the same way on every run.
package tabio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"

	"github.com/goliatone/go-tablecheck/pkg/contract"
	"github.com/goliatone/go-tablecheck/pkg/table"
)

var (
	// ErrEmptyFile reports an input with no data rows.
	ErrEmptyFile = errors.New("tabio: file contains no data")
	// ErrDuplicateHeader reports repeated column names in the header row.
	ErrDuplicateHeader = errors.New("tabio: duplicate column names in header")
)

// Options tunes how a file is read. The zero value auto-detects the
// delimiter and treats the first line as the header.
type Options struct {
	// Delimiter forces a field separator; 0 means detect.
	Delimiter rune
	// SkipRows drops leading lines before the header.
	SkipRows int
	// SkipFooterRows drops trailing data rows.
	SkipFooterRows int
	// NullTokens are raw cell texts read as null, compared after trimming.
	// Empty cells are always null.
	NullTokens []string
}

// candidateDelimiters in detection preference order.
var candidateDelimiters = []rune{',', ';', '\t', '|'}

// sniffLines bounds how much of the file delimiter detection looks at.
const sniffLines = 5

// ReadCSV reads delimited text into a table. The byte stream is decoded
// through a fallback chain: valid UTF-8 passes through (a BOM is stripped),
// anything else reads as Latin-1 so no byte sequence is rejected outright.
func ReadCSV(r io.Reader, opts Options) (*table.Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("tabio: read: %w", err)
	}

	text, err := decode(raw)
	if err != nil {
		return nil, err
	}

	lines := splitLines(text)
	if opts.SkipRows > 0 {
		if opts.SkipRows >= len(lines) {
			return nil, ErrEmptyFile
		}
		lines = lines[opts.SkipRows:]
	}
	if len(lines) == 0 || (len(lines) == 1 && strings.TrimSpace(lines[0]) == "") {
		return nil, ErrEmptyFile
	}

	delimiter := opts.Delimiter
	if delimiter == 0 {
		delimiter = detectDelimiter(lines)
	}

	reader := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("tabio: parse: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	header := records[0]
	rows := records[1:]
	if opts.SkipFooterRows > 0 {
		if opts.SkipFooterRows >= len(rows) {
			rows = nil
		} else {
			rows = rows[:len(rows)-opts.SkipFooterRows]
		}
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	seen := make(map[string]struct{}, len(header))
	for i := range header {
		name := strings.TrimSpace(header[i])
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateHeader, name)
		}
		seen[name] = struct{}{}
		header[i] = name
	}

	tbl, err := table.New(header)
	if err != nil {
		return nil, fmt.Errorf("tabio: %w", err)
	}
	for _, record := range rows {
		values := make([]table.Value, len(header))
		for col := range header {
			if col >= len(record) {
				values[col] = table.Null()
				continue
			}
			values[col] = cellValue(record[col], opts.NullTokens)
		}
		if err := tbl.AppendRow(values); err != nil {
			return nil, fmt.Errorf("tabio: %w", err)
		}
	}
	return tbl, nil
}

func cellValue(raw string, nullTokens []string) table.Value {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return table.Null()
	}
	for _, tok := range nullTokens {
		if trimmed == tok {
			return table.Null()
		}
	}
	return table.String(raw)
}

// decode picks a text decoding for raw bytes: BOM-marked UTF-8, plain UTF-8,
// then Latin-1. Latin-1 maps every byte to a rune so the chain cannot fail.
func decode(raw []byte) (string, error) {
	if bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}) {
		raw = raw[3:]
	}
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("tabio: decode latin-1: %w", err)
	}
	return string(decoded), nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// detectDelimiter scores each candidate over the first few lines: a
// delimiter must appear on the first line and produce a consistent field
// count; the most fields wins.
func detectDelimiter(lines []string) rune {
	sample := lines
	if len(sample) > sniffLines {
		sample = sample[:sniffLines]
	}

	best := ','
	bestFields := 0
	for _, cand := range candidateDelimiters {
		counts := make([]int, len(sample))
		for i, line := range sample {
			counts[i] = strings.Count(line, string(cand))
		}
		if counts[0] == 0 {
			continue
		}
		consistent := true
		for _, c := range counts[1:] {
			if c != counts[0] {
				consistent = false
				break
			}
		}
		if consistent && counts[0]+1 > bestFields {
			best = cand
			bestFields = counts[0] + 1
		}
	}
	return best
}

// headerTitleCaser folds header names for the title-case quick action.
var headerTitleCaser = cases.Title(language.English)

// ApplyImportSettings applies a contract's saved import settings to an
// already-read table: column renames, ignored columns, and the header
// quick actions. Settings naming columns the table lacks are skipped.
func ApplyImportSettings(tbl *table.Table, settings contract.ImportSettings) (*table.Table, error) {
	out := tbl.Clone()

	for from, to := range settings.ColumnRenames {
		if !out.HasColumn(from) || to == "" {
			continue
		}
		if err := out.RenameColumn(from, to); err != nil {
			return nil, fmt.Errorf("tabio: rename %q: %w", from, err)
		}
	}

	for _, name := range settings.ColumnsToIgnore {
		if !out.HasColumn(name) {
			continue
		}
		if out.NumColumns() == 1 {
			return nil, errors.New("tabio: cannot ignore the only remaining column")
		}
		if err := out.DropColumn(name); err != nil {
			return nil, fmt.Errorf("tabio: drop %q: %w", name, err)
		}
	}

	qa := settings.QuickActions
	for _, name := range out.Columns() {
		next := applyQuickActions(name, qa)
		if next == name {
			continue
		}
		if err := out.RenameColumn(name, next); err != nil {
			return nil, fmt.Errorf("tabio: quick action rename %q: %w", name, err)
		}
	}
	return out, nil
}

func applyQuickActions(name string, qa contract.QuickActions) string {
	if qa.TrimWhitespace {
		name = strings.TrimSpace(name)
	}
	switch {
	case qa.ToLowercase:
		name = strings.ToLower(name)
	case qa.ToUppercase:
		name = strings.ToUpper(name)
	case qa.ToTitlecase:
		name = headerTitleCaser.String(name)
	}
	if qa.RemovePunctuation {
		name = strings.Map(func(r rune) rune {
			if unicode.IsPunct(r) && r != '_' && r != '-' {
				return -1
			}
			return r
		}, name)
	}
	if qa.ReplaceSpacesWithUnderscores {
		name = strings.ReplaceAll(name, " ", "_")
	}
	return name
}
