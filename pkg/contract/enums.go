package contract

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DataType is the declared logical type of a column.
type DataType string

const (
	TypeString    DataType = "string"
	TypeBoolean   DataType = "boolean"
	TypeInteger   DataType = "integer"
	TypeFloat     DataType = "float"
	TypeDate      DataType = "date"
	TypeTimestamp DataType = "timestamp"
)

// DataTypes returns the supported data types in declaration order.
func DataTypes() []DataType {
	return []DataType{TypeString, TypeBoolean, TypeInteger, TypeFloat, TypeDate, TypeTimestamp}
}

// Valid reports whether the data type is one of the supported values.
func (d DataType) Valid() bool {
	switch d {
	case TypeString, TypeBoolean, TypeInteger, TypeFloat, TypeDate, TypeTimestamp:
		return true
	}
	return false
}

// Severity classifies how a failed test affects the overall verdict.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Valid reports whether the severity is a known level.
func (s Severity) Valid() bool {
	return s == SeverityError || s == SeverityWarning
}

// FailureAction is the policy applied to a failing cell or row.
type FailureAction string

const (
	ActionStrictFail    FailureAction = "strict_fail"
	ActionSetNull       FailureAction = "set_null"
	ActionLabelFailure  FailureAction = "label_failure"
	ActionQuarantineRow FailureAction = "quarantine_row"
	ActionDropRow       FailureAction = "drop_row"
)

// FailureActions returns the supported failure actions in declaration order.
func FailureActions() []FailureAction {
	return []FailureAction{ActionStrictFail, ActionSetNull, ActionLabelFailure, ActionQuarantineRow, ActionDropRow}
}

// Valid reports whether the action is a known policy.
func (a FailureAction) Valid() bool {
	switch a {
	case ActionStrictFail, ActionSetNull, ActionLabelFailure, ActionQuarantineRow, ActionDropRow:
		return true
	}
	return false
}

// CaseMode selects the case folding applied during normalization.
type CaseMode string

const (
	CaseNone  CaseMode = "none"
	CaseLower CaseMode = "lower"
	CaseUpper CaseMode = "upper"
	CaseTitle CaseMode = "title"
)

// ColumnTestType identifies a column-level test.
type ColumnTestType string

const (
	TestNotNull            ColumnTestType = "not_null"
	TestTypeConformance    ColumnTestType = "type_conformance"
	TestRange              ColumnTestType = "range"
	TestLength             ColumnTestType = "length"
	TestEnum               ColumnTestType = "enum"
	TestUniqueness         ColumnTestType = "uniqueness"
	TestMonotonic          ColumnTestType = "monotonic"
	TestCardinalityWarning ColumnTestType = "cardinality_warning"
	TestPattern            ColumnTestType = "pattern"
	TestDateRule           ColumnTestType = "date_rule"
	TestDateWindow         ColumnTestType = "date_window"
)

// ColumnTestTypes returns the supported column test types in declaration order.
func ColumnTestTypes() []ColumnTestType {
	return []ColumnTestType{
		TestNotNull, TestTypeConformance, TestRange, TestLength, TestEnum,
		TestUniqueness, TestMonotonic, TestCardinalityWarning, TestPattern,
		TestDateRule, TestDateWindow,
	}
}

// Valid reports whether the test type is a known column test.
func (t ColumnTestType) Valid() bool {
	for _, known := range ColumnTestTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// DatasetTestType identifies a dataset-level test.
type DatasetTestType string

const (
	DatasetTestDuplicateRows          DatasetTestType = "duplicate_rows"
	DatasetTestPrimaryKeyCompleteness DatasetTestType = "primary_key_completeness"
	DatasetTestPrimaryKeyUniqueness   DatasetTestType = "primary_key_uniqueness"
	DatasetTestCompositeKeyUniqueness DatasetTestType = "composite_key_uniqueness"
	DatasetTestCrossFieldRule         DatasetTestType = "cross_field_rule"
	DatasetTestOutliersIQR            DatasetTestType = "outliers_iqr"
	DatasetTestOutliersZScore         DatasetTestType = "outliers_zscore"
)

// DatasetTestTypes returns the supported dataset test types in declaration order.
func DatasetTestTypes() []DatasetTestType {
	return []DatasetTestType{
		DatasetTestDuplicateRows, DatasetTestPrimaryKeyCompleteness, DatasetTestPrimaryKeyUniqueness,
		DatasetTestCompositeKeyUniqueness, DatasetTestCrossFieldRule, DatasetTestOutliersIQR, DatasetTestOutliersZScore,
	}
}

// Valid reports whether the test type is a known dataset test.
func (t DatasetTestType) Valid() bool {
	for _, known := range DatasetTestTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// RemediationType identifies a remediation transform.
type RemediationType string

const (
	RemediateTrimWhitespace         RemediationType = "trim_whitespace"
	RemediateStandardizeNulls       RemediationType = "standardize_nulls"
	RemediateNormalizeCase          RemediationType = "normalize_case"
	RemediateRemoveNonPrintable     RemediationType = "remove_non_printable"
	RemediateDeduplicateRows        RemediationType = "deduplicate_rows"
	RemediateNumericCleanup         RemediationType = "numeric_cleanup"
	RemediateBooleanNormalization   RemediationType = "boolean_normalization"
	RemediateDateCoerce             RemediationType = "date_coerce"
	RemediateCategoricalStandardize RemediationType = "categorical_standardize"
	RemediateSplitColumn            RemediationType = "split_column"
	RemediateCustomCalculation      RemediationType = "custom_calculation"
)

// RemediationTypes returns the supported remediation types in declaration order.
func RemediationTypes() []RemediationType {
	return []RemediationType{
		RemediateTrimWhitespace, RemediateStandardizeNulls, RemediateNormalizeCase,
		RemediateRemoveNonPrintable, RemediateDeduplicateRows, RemediateNumericCleanup,
		RemediateBooleanNormalization, RemediateDateCoerce, RemediateCategoricalStandardize,
		RemediateSplitColumn, RemediateCustomCalculation,
	}
}

// Valid reports whether the remediation type is known.
func (t RemediationType) Valid() bool {
	for _, known := range RemediationTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// PatternTier selects how a pattern test resolves its regex.
type PatternTier string

const (
	TierPreset   PatternTier = "preset"
	TierBuilder  PatternTier = "builder"
	TierAdvanced PatternTier = "advanced"
)

// DateRuleMode selects how a date rule parses its input.
type DateRuleMode string

const (
	DateRuleSimple DateRuleMode = "simple"
	DateRuleRobust DateRuleMode = "robust"
)

// Direction is the required ordering for a monotonic test.
type Direction string

const (
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// ParseDirection resolves a direction token, accepting the legacy
// increasing/decreasing spellings.
func ParseDirection(value string) (Direction, bool) {
	switch value {
	case "ascending", "increasing":
		return Ascending, true
	case "descending", "decreasing":
		return Descending, true
	}
	return "", false
}

// UnmarshalYAML decodes a direction token, rejecting unknown values.
func (d *Direction) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	dir, ok := ParseDirection(raw)
	if !ok {
		return fmt.Errorf("contract: unknown monotonic direction %q", raw)
	}
	*d = dir
	return nil
}

// ParseErrorPolicy controls what a transform does with unparsable values.
type ParseErrorPolicy string

const (
	OnParseErrorSetNull ParseErrorPolicy = "set_null"
	OnParseErrorKeep    ParseErrorPolicy = "keep"
)

// CalcOperation is a whitelisted custom-calculation operation.
type CalcOperation string

const (
	CalcConcat   CalcOperation = "concat"
	CalcAdd      CalcOperation = "add"
	CalcSubtract CalcOperation = "subtract"
	CalcMultiply CalcOperation = "multiply"
	CalcDivide   CalcOperation = "divide"
)

// KeepMode selects which member of a duplicate group survives deduplication.
type KeepMode string

const (
	KeepFirst KeepMode = "first"
	KeepLast  KeepMode = "last"
	KeepNone  KeepMode = "none"
)

// UnmarshalYAML decodes a keep mode. A YAML boolean false maps to KeepNone,
// matching the common spreadsheet-library convention for "drop all members".
func (k *KeepMode) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!bool" {
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		if b {
			return fmt.Errorf("contract: keep must be first, last, or false")
		}
		*k = KeepNone
		return nil
	}
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	switch KeepMode(raw) {
	case KeepFirst, KeepLast, KeepNone:
		*k = KeepMode(raw)
		return nil
	}
	return fmt.Errorf("contract: unknown keep mode %q", raw)
}
