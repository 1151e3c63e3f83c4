package contract

import (
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-tablecheck/pkg/presets"
)

// TestParams is the decoded, type-specific parameter block of a column or
// dataset test. Concrete types are pointers; a nil TestParams means the test
// takes no parameters or its type is unknown.
type TestParams interface{ testParams() }

// RemediationParams is the decoded parameter block of a remediation step.
type RemediationParams interface{ remediationParams() }

func isNilParams(p any) bool { return p == nil }

// decodeParams fills out from a params node. Absent or null nodes leave the
// pre-seeded defaults untouched; present nodes with bad values are decode
// errors.
func decodeParams(node *yaml.Node, out any) error {
	if node == nil || node.Kind == 0 || node.Tag == "!!null" {
		return nil
	}
	return node.Decode(out)
}

// RangeParams bounds numeric values inclusively. A nil bound is open.
type RangeParams struct {
	Min *float64 `yaml:"min,omitempty"`
	Max *float64 `yaml:"max,omitempty"`
}

func (*RangeParams) testParams() {}

// LengthParams bounds string lengths inclusively. A nil bound is open.
type LengthParams struct {
	Min *int `yaml:"min,omitempty"`
	Max *int `yaml:"max,omitempty"`
}

func (*LengthParams) testParams() {}

// EnumParams restricts values to an explicit list or a named preset.
type EnumParams struct {
	AllowedValues   []string `yaml:"allowed_values,omitempty"`
	Preset          string   `yaml:"preset,omitempty"`
	CaseInsensitive bool     `yaml:"case_insensitive"`
}

func (*EnumParams) testParams() {}

// UniquenessParams controls null handling for the uniqueness test. Nulls are
// allowed to repeat unless AllowNulls is false.
type UniquenessParams struct {
	AllowNulls bool `yaml:"allow_nulls"`
}

func (*UniquenessParams) testParams() {}

// MonotonicParams selects the required ordering.
type MonotonicParams struct {
	Direction Direction `yaml:"direction"`
}

func (*MonotonicParams) testParams() {}

// CardinalityParams bounds the distinct non-null value count of a column.
type CardinalityParams struct {
	Min int  `yaml:"min"`
	Max *int `yaml:"max,omitempty"`
}

func (*CardinalityParams) testParams() {}

// PatternLengthParams bounds the repeated character class of a built pattern.
type PatternLengthParams struct {
	Exact *int `yaml:"exact,omitempty"`
	Min   *int `yaml:"min,omitempty"`
	Max   *int `yaml:"max,omitempty"`
}

// PatternBuilderParams is the structured middle tier of the pattern test.
type PatternBuilderParams struct {
	AllowedCharacters []string            `yaml:"allowed_characters,omitempty"`
	Length            PatternLengthParams `yaml:"length"`
	StartsWith        string              `yaml:"starts_with,omitempty"`
	EndsWith          string              `yaml:"ends_with,omitempty"`
}

// Builder converts the decoded parameters into a pattern builder.
func (p PatternBuilderParams) Builder() presets.PatternBuilder {
	return presets.PatternBuilder{
		AllowedCharacters: p.AllowedCharacters,
		LengthExact:       p.Length.Exact,
		LengthMin:         p.Length.Min,
		LengthMax:         p.Length.Max,
		StartsWith:        p.StartsWith,
		EndsWith:          p.EndsWith,
	}
}

// PatternParams selects one of three tiers: a named preset, a structured
// builder, or a raw regex.
type PatternParams struct {
	Tier       PatternTier           `yaml:"tier"`
	PresetName string                `yaml:"preset_name,omitempty"`
	Builder    *PatternBuilderParams `yaml:"builder,omitempty"`
	Pattern    string                `yaml:"pattern,omitempty"`
}

func (*PatternParams) testParams() {}

// Resolve returns the regex source for the configured tier, or "" when the
// tier's input is missing.
func (p *PatternParams) Resolve() string {
	switch p.Tier {
	case TierBuilder:
		if p.Builder == nil {
			return ""
		}
		return p.Builder.Builder().Build()
	case TierAdvanced:
		return p.Pattern
	default:
		if preset, ok := presets.LookupPattern(p.PresetName); ok {
			return preset.Pattern
		}
		return ""
	}
}

// DateRuleParams declares the format a date column must conform to.
// TargetFormat stays empty when absent so the contract validator can report
// it; engines fall back to YYYY-MM-DD.
type DateRuleParams struct {
	TargetFormat         string       `yaml:"target_format,omitempty"`
	Mode                 DateRuleMode `yaml:"mode"`
	AcceptedInputFormats []string     `yaml:"accepted_input_formats,omitempty"`
	ExcelSerialEnabled   bool         `yaml:"excel_serial_enabled"`
}

func (*DateRuleParams) testParams() {}

// DateWindowParams bounds dates inclusively. Empty bounds are open.
type DateWindowParams struct {
	MinDate string `yaml:"min_date,omitempty"`
	MaxDate string `yaml:"max_date,omitempty"`
}

func (*DateWindowParams) testParams() {}

func (p *DateWindowParams) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		MinDate   string `yaml:"min_date"`
		MaxDate   string `yaml:"max_date"`
		NotBefore string `yaml:"not_before"`
		NotAfter  string `yaml:"not_after"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	p.MinDate = raw.MinDate
	if p.MinDate == "" {
		p.MinDate = raw.NotBefore
	}
	p.MaxDate = raw.MaxDate
	if p.MaxDate == "" {
		p.MaxDate = raw.NotAfter
	}
	return nil
}

// DuplicateRowsParams restricts duplicate detection to a column subset. An
// empty subset compares whole rows.
type DuplicateRowsParams struct {
	Subset []string `yaml:"subset,omitempty"`
}

func (*DuplicateRowsParams) testParams() {}

// KeyColumnsParams names the key columns for the primary and composite key
// tests.
type KeyColumnsParams struct {
	KeyColumns []string `yaml:"key_columns,omitempty"`
}

func (*KeyColumnsParams) testParams() {}

// CrossFieldCondition gates a cross-field rule to rows where every listed
// column is non-null.
type CrossFieldCondition struct {
	AllNotNull []string `yaml:"all_not_null,omitempty"`
}

// CrossFieldAssertion holds the comparison expression asserted over gated
// rows.
type CrossFieldAssertion struct {
	Expression string `yaml:"expression,omitempty"`
}

// CrossFieldRuleParams declares a single-comparison rule between two columns
// or a column and a literal.
type CrossFieldRuleParams struct {
	RuleName string              `yaml:"rule_name"`
	If       CrossFieldCondition `yaml:"if"`
	Assert   CrossFieldAssertion `yaml:"assert"`
}

func (*CrossFieldRuleParams) testParams() {}

// OutlierIQRParams tunes the interquartile-range outlier scan.
type OutlierIQRParams struct {
	Column     string  `yaml:"column,omitempty"`
	Multiplier float64 `yaml:"multiplier"`
}

func (*OutlierIQRParams) testParams() {}

// OutlierZScoreParams tunes the z-score outlier scan.
type OutlierZScoreParams struct {
	Column    string  `yaml:"column,omitempty"`
	Threshold float64 `yaml:"threshold"`
}

func (*OutlierZScoreParams) testParams() {}

// decodeColumnTestParams builds the pre-seeded parameter struct for a column
// test type and decodes the params node over it. Unknown types and
// parameterless types yield nil.
func decodeColumnTestParams(t ColumnTestType, node *yaml.Node) (TestParams, error) {
	switch t {
	case TestRange:
		p := RangeParams{}
		return &p, decodeParams(node, &p)
	case TestLength:
		p := LengthParams{}
		return &p, decodeParams(node, &p)
	case TestEnum:
		p := EnumParams{CaseInsensitive: true}
		return &p, decodeParams(node, &p)
	case TestUniqueness:
		p := UniquenessParams{AllowNulls: true}
		return &p, decodeParams(node, &p)
	case TestMonotonic:
		p := MonotonicParams{Direction: Ascending}
		return &p, decodeParams(node, &p)
	case TestCardinalityWarning:
		p := CardinalityParams{Min: 1}
		return &p, decodeParams(node, &p)
	case TestPattern:
		p := PatternParams{Tier: TierPreset}
		return &p, decodeParams(node, &p)
	case TestDateRule:
		p := DateRuleParams{Mode: DateRuleSimple}
		return &p, decodeParams(node, &p)
	case TestDateWindow:
		p := DateWindowParams{}
		return &p, decodeParams(node, &p)
	default:
		// not_null and type_conformance take no parameters; unknown types
		// are reported by Validate.
		return nil, nil
	}
}

// decodeDatasetTestParams mirrors decodeColumnTestParams for dataset tests.
func decodeDatasetTestParams(t DatasetTestType, node *yaml.Node) (TestParams, error) {
	switch t {
	case DatasetTestDuplicateRows:
		p := DuplicateRowsParams{}
		return &p, decodeParams(node, &p)
	case DatasetTestPrimaryKeyCompleteness, DatasetTestPrimaryKeyUniqueness, DatasetTestCompositeKeyUniqueness:
		p := KeyColumnsParams{}
		return &p, decodeParams(node, &p)
	case DatasetTestCrossFieldRule:
		p := CrossFieldRuleParams{RuleName: "unnamed_rule"}
		return &p, decodeParams(node, &p)
	case DatasetTestOutliersIQR:
		p := OutlierIQRParams{Multiplier: 1.5}
		return &p, decodeParams(node, &p)
	case DatasetTestOutliersZScore:
		p := OutlierZScoreParams{Threshold: 3.0}
		return &p, decodeParams(node, &p)
	default:
		return nil, nil
	}
}

// StandardizeNullsParams lists the tokens replaced with null.
type StandardizeNullsParams struct {
	NullTokens []string `yaml:"null_tokens"`
}

func (*StandardizeNullsParams) remediationParams() {}

// NormalizeCaseParams selects the case fold applied to string cells.
type NormalizeCaseParams struct {
	Case CaseMode `yaml:"case"`
}

func (*NormalizeCaseParams) remediationParams() {}

// NumericCleanupParams strips formatting from numeric text. Parenthesized
// values read as negatives when ParenthesesAsNegative is set.
type NumericCleanupParams struct {
	RemoveCommas          bool             `yaml:"remove_commas"`
	RemoveCurrencySymbols bool             `yaml:"remove_currency_symbols"`
	ParenthesesAsNegative bool             `yaml:"parentheses_as_negative"`
	OnParseError          ParseErrorPolicy `yaml:"on_parse_error"`
}

func (*NumericCleanupParams) remediationParams() {}

// BooleanNormalizationParams maps free-form tokens onto canonical booleans.
type BooleanNormalizationParams struct {
	TrueTokens  []string `yaml:"true_tokens"`
	FalseTokens []string `yaml:"false_tokens"`
}

func (*BooleanNormalizationParams) remediationParams() {}

// DateCoerceParams re-renders parseable dates in TargetFormat. TargetFormat
// stays empty when absent so the contract validator can report it; the
// engine falls back to YYYY-MM-DD.
type DateCoerceParams struct {
	TargetFormat         string           `yaml:"target_format,omitempty"`
	AcceptedInputFormats []string         `yaml:"accepted_input_formats"`
	ExcelSerialEnabled   bool             `yaml:"excel_serial_enabled"`
	OnParseError         ParseErrorPolicy `yaml:"on_parse_error"`
}

func (*DateCoerceParams) remediationParams() {}

// CategoricalStandardizeParams rewrites values through a mapping table.
// Unmapped values pass through unchanged.
type CategoricalStandardizeParams struct {
	Mapping         map[string]string `yaml:"mapping,omitempty"`
	CaseInsensitive bool              `yaml:"case_insensitive"`
}

func (*CategoricalStandardizeParams) remediationParams() {}

// SplitColumnParams splits a column on a delimiter into new columns.
// MaxSplits < 0 means unlimited; otherwise at most MaxSplits splits are made.
type SplitColumnParams struct {
	Delimiter      string   `yaml:"delimiter"`
	NewColumnNames []string `yaml:"new_column_names,omitempty"`
	MaxSplits      int      `yaml:"max_splits"`
}

func (*SplitColumnParams) remediationParams() {}

// CustomCalculationParams derives the column from other columns.
type CustomCalculationParams struct {
	Operation      CalcOperation `yaml:"operation"`
	OperandColumns []string      `yaml:"operand_columns,omitempty"`
	Separator      string        `yaml:"separator"`
}

func (*CustomCalculationParams) remediationParams() {}

// DeduplicateRowsParams drops duplicate rows, keeping the first or last
// occurrence, or none.
type DeduplicateRowsParams struct {
	Subset []string `yaml:"subset,omitempty"`
	Keep   KeepMode `yaml:"keep"`
}

func (*DeduplicateRowsParams) remediationParams() {}

// decodeRemediationParams builds the pre-seeded parameter struct for a
// remediation type and decodes the params node over it.
func decodeRemediationParams(t RemediationType, node *yaml.Node) (RemediationParams, error) {
	switch t {
	case RemediateStandardizeNulls:
		p := StandardizeNullsParams{NullTokens: CommonNullTokens()}
		return &p, decodeParams(node, &p)
	case RemediateNormalizeCase:
		p := NormalizeCaseParams{Case: CaseLower}
		return &p, decodeParams(node, &p)
	case RemediateNumericCleanup:
		p := NumericCleanupParams{
			RemoveCommas:          true,
			RemoveCurrencySymbols: true,
			ParenthesesAsNegative: true,
			OnParseError:          OnParseErrorKeep,
		}
		return &p, decodeParams(node, &p)
	case RemediateBooleanNormalization:
		p := BooleanNormalizationParams{
			TrueTokens:  presets.TrueTokens(),
			FalseTokens: presets.FalseTokens(),
		}
		return &p, decodeParams(node, &p)
	case RemediateDateCoerce:
		p := DateCoerceParams{
			AcceptedInputFormats: append([]string(nil), presets.DefaultAcceptedDateFormats...),
			OnParseError:         OnParseErrorKeep,
		}
		return &p, decodeParams(node, &p)
	case RemediateCategoricalStandardize:
		p := CategoricalStandardizeParams{CaseInsensitive: true}
		return &p, decodeParams(node, &p)
	case RemediateSplitColumn:
		p := SplitColumnParams{Delimiter: ",", MaxSplits: -1}
		return &p, decodeParams(node, &p)
	case RemediateCustomCalculation:
		p := CustomCalculationParams{Operation: CalcConcat, Separator: " "}
		return &p, decodeParams(node, &p)
	case RemediateDeduplicateRows:
		p := DeduplicateRowsParams{Keep: KeepFirst}
		return &p, decodeParams(node, &p)
	default:
		// trim_whitespace and remove_non_printable take no parameters;
		// unknown types are reported by Validate.
		return nil, nil
	}
}
