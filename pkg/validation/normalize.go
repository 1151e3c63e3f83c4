package validation

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/goliatone/go-tablecheck/pkg/contract"
	"github.com/goliatone/go-tablecheck/pkg/table"
)

// titleCaser folds per word; shared because cases.Caser is not cheap to
// construct.
var titleCaser = cases.Title(language.English)

// ApplyCase folds a string according to a contract case mode.
func ApplyCase(value string, mode contract.CaseMode) string {
	switch mode {
	case contract.CaseLower:
		return strings.ToLower(value)
	case contract.CaseUpper:
		return strings.ToUpper(value)
	case contract.CaseTitle:
		return titleCaser.String(value)
	}
	return value
}

// StripNonPrintable drops runes that are not printable, keeping tab, newline,
// and carriage return.
func StripNonPrintable(value string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, value)
}

// Normalizer applies one column's normalization config. The steps run in a
// fixed order: trim, strip non-printable runes, null-token substitution,
// case fold. Null-token matching must see trimmed text and case folding must
// not create new token matches, so the order is behavior, not preference.
type Normalizer struct {
	trim               bool
	removeNonPrintable bool
	nullTokens         map[string]struct{}
	caseMode           contract.CaseMode
}

// NewNormalizer builds a normalizer from a column's config. A nil config
// yields the identity normalizer.
func NewNormalizer(cfg *contract.Normalization) *Normalizer {
	n := &Normalizer{caseMode: contract.CaseNone}
	if cfg == nil {
		return n
	}
	n.trim = cfg.TrimWhitespace
	n.removeNonPrintable = cfg.RemoveNonPrintable
	n.caseMode = cfg.Case
	if len(cfg.NullTokens) > 0 {
		n.nullTokens = make(map[string]struct{}, len(cfg.NullTokens))
		for _, tok := range cfg.NullTokens {
			n.nullTokens[tok] = struct{}{}
		}
	}
	return n
}

// Value normalizes a single cell. Nulls pass through untouched.
func (n *Normalizer) Value(v table.Value) table.Value {
	if v.IsNull() {
		return v
	}
	raw := v.Raw
	if n.trim {
		raw = strings.TrimSpace(raw)
	}
	if n.removeNonPrintable {
		raw = StripNonPrintable(raw)
	}
	if n.nullTokens != nil {
		if _, hit := n.nullTokens[raw]; hit {
			return table.Null()
		}
	}
	if n.caseMode != "" && n.caseMode != contract.CaseNone {
		raw = ApplyCase(raw, n.caseMode)
	}
	return table.String(raw)
}

// Normalize clones the table and applies each declared column's
// normalization. Columns the table lacks and columns without a normalization
// block are left alone.
func Normalize(t *table.Table, c *contract.Contract) *table.Table {
	out := t.Clone()
	for i := range c.Columns {
		col := &c.Columns[i]
		if col.Normalization == nil {
			continue
		}
		idx, ok := out.ColumnIndex(col.Name)
		if !ok {
			continue
		}
		n := NewNormalizer(col.Normalization)
		for row := 0; row < out.NumRows(); row++ {
			v := out.AtIndex(row, idx)
			if nv := n.Value(v); !nv.Equal(v) {
				out.Set(row, col.Name, nv)
			}
		}
	}
	return out
}
