package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-tablecheck/pkg/presets"
	"github.com/goliatone/go-tablecheck/pkg/table"
)

// Cross-field assertions are a single comparison between two operands, for
// example "end_date >= start_date" or "status == 'active'". An operand names
// a column when the dataset has one by that name, otherwise it is a literal.
// Compound expressions (and/or chains) are rejected at parse time.

type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenString
	tokenOp
	tokenLogical
)

type token struct {
	kind tokenKind
	raw  string
}

// comparisonOps holds the recognized operators. Two-rune operators must be
// matched before their one-rune prefixes.
var comparisonOps = []string{"<=", ">=", "==", "!=", "<", ">"}

func isOpRune(r byte) bool {
	return r == '<' || r == '>' || r == '=' || r == '!'
}

func tokenize(expr string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '\'' || c == '"':
			quote := c
			j := i + 1
			for j < len(expr) && expr[j] != quote {
				j++
			}
			if j >= len(expr) {
				return nil, fmt.Errorf("unterminated string literal in expression %q", expr)
			}
			tokens = append(tokens, token{kind: tokenString, raw: expr[i+1 : j]})
			i = j + 1
		case isOpRune(c):
			if i+1 < len(expr) && expr[i+1] == '=' {
				tokens = append(tokens, token{kind: tokenOp, raw: expr[i : i+2]})
				i += 2
				break
			}
			if c == '=' || c == '!' {
				return nil, fmt.Errorf("unexpected %q in expression %q", string(c), expr)
			}
			tokens = append(tokens, token{kind: tokenOp, raw: string(c)})
			i++
		case c == '&' || c == '|':
			if i+1 < len(expr) && expr[i+1] == c {
				tokens = append(tokens, token{kind: tokenLogical, raw: expr[i : i+2]})
				i += 2
				break
			}
			return nil, fmt.Errorf("unexpected %q in expression %q", string(c), expr)
		default:
			j := i
			for j < len(expr) {
				c := expr[j]
				if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\'' || c == '"' || c == '&' || c == '|' || isOpRune(c) {
					break
				}
				j++
			}
			word := expr[i:j]
			if eq := strings.ToLower(word); eq == "and" || eq == "or" {
				tokens = append(tokens, token{kind: tokenLogical, raw: word})
			} else {
				tokens = append(tokens, token{kind: tokenWord, raw: word})
			}
			i = j
		}
	}
	return tokens, nil
}

// Operand is one side of a comparison. Quoted operands are always literals;
// bare operands resolve to a column when one matches.
type Operand struct {
	Text   string
	Quoted bool
}

// Comparison is a parsed cross-field assertion.
type Comparison struct {
	Left  Operand
	Op    string
	Right Operand
}

// ParseComparison parses an assertion expression into its two operands and
// operator. Bare multi-word operands are joined with single spaces so column
// names containing spaces still resolve.
func ParseComparison(expr string) (*Comparison, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, errors.New("empty expression")
	}

	opIdx := -1
	for i, t := range tokens {
		switch t.kind {
		case tokenLogical:
			return nil, fmt.Errorf("compound expressions are not supported (found %q in %q)", t.raw, expr)
		case tokenOp:
			if opIdx >= 0 {
				return nil, fmt.Errorf("expected exactly one comparison operator in %q", expr)
			}
			opIdx = i
		}
	}
	if opIdx < 0 {
		return nil, fmt.Errorf("no comparison operator in %q (supported: %s)", expr, strings.Join(comparisonOps, ", "))
	}

	left, err := buildOperand(tokens[:opIdx], expr)
	if err != nil {
		return nil, err
	}
	right, err := buildOperand(tokens[opIdx+1:], expr)
	if err != nil {
		return nil, err
	}
	return &Comparison{Left: left, Op: tokens[opIdx].raw, Right: right}, nil
}

func buildOperand(tokens []token, expr string) (Operand, error) {
	if len(tokens) == 0 {
		return Operand{}, fmt.Errorf("missing operand in %q", expr)
	}
	if len(tokens) == 1 && tokens[0].kind == tokenString {
		return Operand{Text: tokens[0].raw, Quoted: true}, nil
	}
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t.kind == tokenString {
			return Operand{}, fmt.Errorf("string literal must stand alone in %q", expr)
		}
		parts = append(parts, t.raw)
	}
	return Operand{Text: strings.Join(parts, " ")}, nil
}

// operandValue carries a resolved operand. null is only possible for column
// values; literals always carry text.
type operandValue struct {
	text string
	null bool
}

func resolveOperand(op Operand, resolve func(name string) (table.Value, bool)) operandValue {
	if !op.Quoted && resolve != nil {
		if v, ok := resolve(op.Text); ok {
			if v.IsNull() {
				return operandValue{null: true}
			}
			return operandValue{text: v.Raw}
		}
	}
	return operandValue{text: op.Text}
}

// Eval evaluates the comparison for one row. The resolve callback maps a
// column name to that row's value; a false return means the operand is a
// literal. When either side is null the comparison is false, except "!="
// which is true.
func (c *Comparison) Eval(resolve func(name string) (table.Value, bool)) bool {
	left := resolveOperand(c.Left, resolve)
	right := resolveOperand(c.Right, resolve)

	if left.null || right.null {
		return c.Op == "!="
	}

	if lf, lok := parseComparableNumber(left.text); lok {
		if rf, rok := parseComparableNumber(right.text); rok {
			return compareFloats(lf, rf, c.Op)
		}
	}
	if lt, lok := presets.ParseFlexible(left.text); lok {
		if rt, rok := presets.ParseFlexible(right.text); rok {
			return compareTimes(lt, rt, c.Op)
		}
	}
	return compareStrings(left.text, right.text, c.Op)
}

func parseComparableNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func compareFloats(a, b float64, op string) bool {
	switch op {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	case "==":
		return a == b
	case "!=":
		return a != b
	}
	return false
}

func compareTimes(a, b time.Time, op string) bool {
	switch op {
	case "<":
		return a.Before(b)
	case "<=":
		return !a.After(b)
	case ">":
		return a.After(b)
	case ">=":
		return !a.Before(b)
	case "==":
		return a.Equal(b)
	case "!=":
		return !a.Equal(b)
	}
	return false
}

func compareStrings(a, b string, op string) bool {
	switch op {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	case "==":
		return a == b
	case "!=":
		return a != b
	}
	return false
}
