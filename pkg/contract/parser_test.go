package contract

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParseAppliesDefaults(t *testing.T) {
	t.Parallel()

	c, err := Parse([]byte("columns:\n  - name: id\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if c.ContractVersion != Version {
		t.Fatalf("contract version = %q, want %q", c.ContractVersion, Version)
	}
	if c.ContractID == "" {
		t.Fatalf("expected generated contract id")
	}
	if _, err := time.Parse(TimestampLayout, c.CreatedAtUTC); err != nil {
		t.Fatalf("created_at_utc %q not parseable: %v", c.CreatedAtUTC, err)
	}
	if c.App.Name != DefaultAppName || c.App.Version != DefaultAppVersion {
		t.Fatalf("app defaults not applied: %+v", c.App)
	}
	if c.Limits != nil {
		t.Fatalf("limits should stay nil when absent, got %+v", c.Limits)
	}
	if !c.Dataset.RowLimitBehavior.RejectIfOverLimit {
		t.Fatalf("row limit behavior default not applied")
	}
	if c.Dataset.HeaderRow != 1 {
		t.Fatalf("header row = %d, want 1", c.Dataset.HeaderRow)
	}
	if !c.Exports.ReportHTML || !c.Exports.ContractYAML || c.Exports.OutputFormat != "csv" {
		t.Fatalf("export defaults not applied: %+v", c.Exports)
	}

	if len(c.Columns) != 1 {
		t.Fatalf("expected 1 column, got %d", len(c.Columns))
	}
	col := c.Columns[0]
	if col.DataType != TypeString {
		t.Fatalf("column data type = %q, want string", col.DataType)
	}
	if col.Normalization != nil {
		t.Fatalf("normalization should stay nil when absent")
	}
	if col.FailureHandling.Action != ActionStrictFail {
		t.Fatalf("failure action = %q, want strict_fail", col.FailureHandling.Action)
	}
}

func TestParseEmptyDocument(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "   \n\t\n"} {
		if _, err := Parse([]byte(input)); !errors.Is(err, ErrEmptyDocument) {
			t.Fatalf("Parse(%q) error = %v, want ErrEmptyDocument", input, err)
		}
	}
}

func TestParseNonMappingRoot(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"- a\n- b\n", "42\n"} {
		if _, err := Parse([]byte(input)); !errors.Is(err, ErrNotMapping) {
			t.Fatalf("Parse(%q) error = %v, want ErrNotMapping", input, err)
		}
	}
}

func TestParseInvalidSyntax(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("columns: [unclosed\n"))
	if err == nil {
		t.Fatalf("expected syntax error")
	}
	if !strings.Contains(err.Error(), "invalid YAML syntax") {
		t.Fatalf("error = %v, want invalid YAML syntax prefix", err)
	}
}

const fullContractYAML = `
contract_version: "1.0"
contract_id: abc-123
created_at_utc: "2025-01-07T14:32:10Z"
limits:
  max_rows: 1000
dataset:
  header_row: 2
  import_settings:
    skip_rows: 1
    column_renames:
      old: new
columns:
  - name: amount
    data_type: float
    tests:
      - type: range
        params:
          min: 0
          max: 100.5
      - type: enum
        severity: warning
        params:
          allowed_values: [a, b]
          case_insensitive: false
      - type: uniqueness
        on_fail:
          action: drop_row
    remediation:
      - type: numeric_cleanup
        params:
          remove_commas: false
  - name: when
    data_type: date
    normalization:
      case: upper
    tests:
      - type: date_rule
        params:
          target_format: YYYY-MM-DD
          mode: robust
          accepted_input_formats: [YYYY-MM-DD, MM/DD/YYYY]
dataset_tests:
  - type: cross_field_rule
    params:
      rule_name: total_check
      if:
        all_not_null: [amount]
      assert:
        expression: amount >= 0
  - type: outliers_iqr
    severity: warning
    params:
      column: amount
foreign_key_checks:
  - name: fk1
    dataset_column: amount
    fk_file: ref.csv
    fk_column: id
exports:
  cleaned_dataset: true
`

func TestParseFullContract(t *testing.T) {
	t.Parallel()

	c, err := Parse([]byte(fullContractYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if c.ContractID != "abc-123" || c.CreatedAtUTC != "2025-01-07T14:32:10Z" {
		t.Fatalf("identity fields not preserved: %q %q", c.ContractID, c.CreatedAtUTC)
	}
	if c.Limits == nil || c.Limits.MaxRows != 1000 {
		t.Fatalf("limits override not applied: %+v", c.Limits)
	}
	if c.Limits.MaxUploadMB != DefaultMaxUploadMB || c.Limits.MaxColumns != DefaultMaxColumns {
		t.Fatalf("absent limit fields should keep defaults: %+v", c.Limits)
	}
	if c.Dataset.HeaderRow != 2 || c.Dataset.ImportSettings.SkipRows != 1 {
		t.Fatalf("dataset overrides not applied: %+v", c.Dataset)
	}
	if c.Dataset.ImportSettings.ColumnRenames["old"] != "new" {
		t.Fatalf("column renames not decoded: %+v", c.Dataset.ImportSettings.ColumnRenames)
	}
	if !c.Dataset.RowLimitBehavior.RejectIfOverLimit {
		t.Fatalf("absent row_limit_behavior should keep default")
	}

	amount := c.Column("amount")
	if amount == nil || amount.DataType != TypeFloat {
		t.Fatalf("amount column missing or wrong type: %+v", amount)
	}

	rng, ok := amount.Tests[0].Params.(*RangeParams)
	if !ok || rng.Min == nil || *rng.Min != 0 || rng.Max == nil || *rng.Max != 100.5 {
		t.Fatalf("range params = %#v", amount.Tests[0].Params)
	}

	enum, ok := amount.Tests[1].Params.(*EnumParams)
	if !ok {
		t.Fatalf("enum params = %#v", amount.Tests[1].Params)
	}
	if diff := cmp.Diff([]string{"a", "b"}, enum.AllowedValues); diff != "" {
		t.Fatalf("allowed values mismatch (-want +got):\n%s", diff)
	}
	if enum.CaseInsensitive {
		t.Fatalf("explicit case_insensitive: false should override default")
	}
	if amount.Tests[1].Severity != SeverityWarning {
		t.Fatalf("severity = %q, want warning", amount.Tests[1].Severity)
	}

	uniq, ok := amount.Tests[2].Params.(*UniquenessParams)
	if !ok || !uniq.AllowNulls {
		t.Fatalf("uniqueness params should default allow_nulls=true: %#v", amount.Tests[2].Params)
	}
	if amount.Tests[2].OnFail == nil || amount.Tests[2].OnFail.Action != ActionDropRow {
		t.Fatalf("on_fail not decoded: %+v", amount.Tests[2].OnFail)
	}

	numeric, ok := amount.Remediation[0].Params.(*NumericCleanupParams)
	if !ok {
		t.Fatalf("numeric params = %#v", amount.Remediation[0].Params)
	}
	if numeric.RemoveCommas {
		t.Fatalf("explicit remove_commas: false should override default")
	}
	if !numeric.RemoveCurrencySymbols || !numeric.ParenthesesAsNegative || numeric.OnParseError != OnParseErrorKeep {
		t.Fatalf("absent numeric params should keep defaults: %+v", numeric)
	}

	when := c.Column("when")
	if when == nil || when.Normalization == nil {
		t.Fatalf("when column or normalization missing")
	}
	if when.Normalization.Case != CaseUpper {
		t.Fatalf("normalization case = %q, want upper", when.Normalization.Case)
	}
	if !when.Normalization.TrimWhitespace || !when.Normalization.RemoveNonPrintable {
		t.Fatalf("absent normalization fields should keep defaults: %+v", when.Normalization)
	}
	if diff := cmp.Diff(DefaultNullTokens(), when.Normalization.NullTokens); diff != "" {
		t.Fatalf("null tokens mismatch (-want +got):\n%s", diff)
	}

	rule, ok := when.Tests[0].Params.(*DateRuleParams)
	if !ok || rule.TargetFormat != "YYYY-MM-DD" || rule.Mode != DateRuleRobust {
		t.Fatalf("date rule params = %#v", when.Tests[0].Params)
	}
	if len(rule.AcceptedInputFormats) != 2 {
		t.Fatalf("accepted formats = %v", rule.AcceptedInputFormats)
	}

	cross, ok := c.DatasetTests[0].Params.(*CrossFieldRuleParams)
	if !ok || cross.RuleName != "total_check" || cross.Assert.Expression != "amount >= 0" {
		t.Fatalf("cross field params = %#v", c.DatasetTests[0].Params)
	}
	if diff := cmp.Diff([]string{"amount"}, cross.If.AllNotNull); diff != "" {
		t.Fatalf("all_not_null mismatch (-want +got):\n%s", diff)
	}

	iqr, ok := c.DatasetTests[1].Params.(*OutlierIQRParams)
	if !ok || iqr.Column != "amount" || iqr.Multiplier != 1.5 {
		t.Fatalf("iqr params = %#v", c.DatasetTests[1].Params)
	}

	fk := c.ForeignKeyChecks[0]
	if !fk.NormalizationInherit {
		t.Fatalf("normalization inherit should default true")
	}
	if fk.NullPolicy.AllowNulls {
		t.Fatalf("null policy should default to disallow")
	}
	if fk.OnFail.Action != ActionStrictFail {
		t.Fatalf("fk on_fail action = %q, want strict_fail", fk.OnFail.Action)
	}

	if !c.Exports.CleanedDataset || !c.Exports.ReportHTML {
		t.Fatalf("export overrides lost defaults: %+v", c.Exports)
	}
}

func TestParseUnknownTestTypeKeepsRawType(t *testing.T) {
	t.Parallel()

	c, err := Parse([]byte(`
columns:
  - name: id
    tests:
      - type: fancy_check
        params:
          whatever: 1
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	test := c.Columns[0].Tests[0]
	if test.Type != "fancy_check" {
		t.Fatalf("type = %q, want fancy_check preserved", test.Type)
	}
	if test.Params != nil {
		t.Fatalf("unknown test type should carry nil params, got %#v", test.Params)
	}
}

func TestParseRejectsBadParamValues(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"range min not numeric": `
columns:
  - name: a
    tests:
      - type: range
        params:
          min: [1, 2]
`,
		"unknown monotonic direction": `
columns:
  - name: a
    tests:
      - type: monotonic
        params:
          direction: sideways
`,
		"keep true rejected": `
columns:
  - name: a
    remediation:
      - type: deduplicate_rows
        params:
          keep: true
`,
	}

	for name, input := range cases {
		if _, err := Parse([]byte(input)); err == nil {
			t.Fatalf("%s: expected parse error", name)
		}
	}
}

func TestParseKeepModeVariants(t *testing.T) {
	t.Parallel()

	c, err := Parse([]byte(`
columns:
  - name: a
    remediation:
      - type: deduplicate_rows
        params:
          keep: false
      - type: deduplicate_rows
        params:
          keep: last
      - type: deduplicate_rows
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	rems := c.Columns[0].Remediation
	if got := rems[0].Params.(*DeduplicateRowsParams).Keep; got != KeepNone {
		t.Fatalf("keep false = %q, want none", got)
	}
	if got := rems[1].Params.(*DeduplicateRowsParams).Keep; got != KeepLast {
		t.Fatalf("keep last = %q, want last", got)
	}
	if got := rems[2].Params.(*DeduplicateRowsParams).Keep; got != KeepFirst {
		t.Fatalf("absent keep = %q, want first default", got)
	}
}

func TestParseDirectionLegacySpelling(t *testing.T) {
	t.Parallel()

	c, err := Parse([]byte(`
columns:
  - name: a
    tests:
      - type: monotonic
        params:
          direction: increasing
      - type: monotonic
        params:
          direction: decreasing
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	tests := c.Columns[0].Tests
	if got := tests[0].Params.(*MonotonicParams).Direction; got != Ascending {
		t.Fatalf("increasing = %q, want ascending", got)
	}
	if got := tests[1].Params.(*MonotonicParams).Direction; got != Descending {
		t.Fatalf("decreasing = %q, want descending", got)
	}
}

func TestDateWindowBoundAliases(t *testing.T) {
	t.Parallel()

	c, err := Parse([]byte(`
columns:
  - name: a
    tests:
      - type: date_window
        params:
          not_before: "2020-01-01"
          not_after: "2024-12-31"
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	params := c.Columns[0].Tests[0].Params.(*DateWindowParams)
	if params.MinDate != "2020-01-01" || params.MaxDate != "2024-12-31" {
		t.Fatalf("alias bounds not mapped: %+v", params)
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	t.Parallel()

	first, err := Parse([]byte(fullContractYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	data, err := Serialize(first)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	second, err := Parse(data)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("round trip mismatch (-first +second):\n%s", diff)
	}
}

func TestSerializeEmitsEmptyParams(t *testing.T) {
	t.Parallel()

	c, err := Parse([]byte(`
columns:
  - name: id
    tests:
      - type: not_null
    remediation:
      - type: trim_whitespace
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	data, err := Serialize(c)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "params: {}") {
		t.Fatalf("expected empty params mapping in output:\n%s", text)
	}
	if !strings.Contains(text, "dataset_tests: []") {
		t.Fatalf("expected empty dataset_tests list in output:\n%s", text)
	}
	if strings.Contains(text, "on_fail") {
		t.Fatalf("absent on_fail should not serialize:\n%s", text)
	}
}

func TestMergeWithDefaults(t *testing.T) {
	t.Parallel()

	c := New()
	c.Columns = append(c.Columns, DefaultColumn("a"))
	MergeWithDefaults(c, []string{"a", "b", "c"})

	if len(c.Columns) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(c.Columns))
	}
	if c.Columns[1].Name != "b" || c.Columns[2].Name != "c" {
		t.Fatalf("merged column order wrong: %v", c.ColumnNames())
	}
	added := c.Columns[1]
	if added.DataType != TypeString || added.Normalization == nil {
		t.Fatalf("merged column should use defaults: %+v", added)
	}
}

func TestMetadata(t *testing.T) {
	t.Parallel()

	c, err := Parse([]byte(fullContractYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	meta := c.Metadata()
	if meta.ColumnCount != 2 || meta.DatasetTestCount != 2 || meta.FKCheckCount != 1 {
		t.Fatalf("metadata counts wrong: %+v", meta)
	}
	if meta.ContractID != "abc-123" || meta.AppName != DefaultAppName {
		t.Fatalf("metadata identity wrong: %+v", meta)
	}
}
