package contract

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Contract is the versioned document declaring what correct data looks like
// for one dataset: per-column types and tests, dataset-wide invariants,
// foreign-key relationships, remediation rules, and export policy. A contract
// is constructed once and treated as read-only for the duration of a
// validation or remediation run.
type Contract struct {
	ContractVersion  string            `yaml:"contract_version"`
	ContractID       string            `yaml:"contract_id"`
	CreatedAtUTC     string            `yaml:"created_at_utc"`
	App              AppInfo           `yaml:"app"`
	Limits           *Limits           `yaml:"limits,omitempty"`
	Dataset          DatasetConfig     `yaml:"dataset"`
	Columns          []ColumnConfig    `yaml:"columns"`
	DatasetTests     []DatasetTest     `yaml:"dataset_tests"`
	ForeignKeyChecks []ForeignKeyCheck `yaml:"foreign_key_checks"`
	Exports          ExportConfig      `yaml:"exports"`
}

// Column returns the configuration for the named column, or nil.
func (c *Contract) Column(name string) *ColumnConfig {
	for i := range c.Columns {
		if c.Columns[i].Name == name {
			return &c.Columns[i]
		}
	}
	return nil
}

// ColumnNames returns the declared column names in order.
func (c *Contract) ColumnNames() []string {
	out := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		out[i] = col.Name
	}
	return out
}

func (c *Contract) UnmarshalYAML(node *yaml.Node) error {
	type plain Contract
	out := plain{
		ContractVersion: Version,
		App:             DefaultAppInfo(),
		Dataset:         DefaultDatasetConfig(),
		Exports:         DefaultExportConfig(),
	}
	if err := node.Decode(&out); err != nil {
		return err
	}
	*c = Contract(out)
	return nil
}

// AppInfo records which application wrote the contract.
type AppInfo struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

func (a *AppInfo) UnmarshalYAML(node *yaml.Node) error {
	type plain AppInfo
	out := plain(DefaultAppInfo())
	if err := node.Decode(&out); err != nil {
		return err
	}
	*a = AppInfo(out)
	return nil
}

// Limits records the resource bounds the contract was authored under.
type Limits struct {
	MaxUploadMB int `yaml:"max_upload_mb"`
	MaxRows     int `yaml:"max_rows"`
	MaxColumns  int `yaml:"max_columns"`
}

func (l *Limits) UnmarshalYAML(node *yaml.Node) error {
	type plain Limits
	out := plain(DefaultLimits())
	if err := node.Decode(&out); err != nil {
		return err
	}
	*l = Limits(out)
	return nil
}

// RowLimitBehavior controls what happens when a dataset exceeds the row
// limit.
type RowLimitBehavior struct {
	RejectIfOverLimit bool `yaml:"reject_if_over_limit"`
}

func (r *RowLimitBehavior) UnmarshalYAML(node *yaml.Node) error {
	type plain RowLimitBehavior
	out := plain{RejectIfOverLimit: true}
	if err := node.Decode(&out); err != nil {
		return err
	}
	*r = RowLimitBehavior(out)
	return nil
}

// QuickActions are the column-name transformations applied at import time.
type QuickActions struct {
	ToLowercase                  bool `yaml:"to_lowercase"`
	ToUppercase                  bool `yaml:"to_uppercase"`
	ToTitlecase                  bool `yaml:"to_titlecase"`
	TrimWhitespace               bool `yaml:"trim_whitespace"`
	RemovePunctuation            bool `yaml:"remove_punctuation"`
	ReplaceSpacesWithUnderscores bool `yaml:"replace_spaces_with_underscores"`
}

// ImportSettings are saved with the contract so a file loads the same way on
// every run.
type ImportSettings struct {
	SkipRows        int               `yaml:"skip_rows"`
	SkipFooterRows  int               `yaml:"skip_footer_rows"`
	ColumnRenames   map[string]string `yaml:"column_renames"`
	ColumnsToIgnore []string          `yaml:"columns_to_ignore"`
	QuickActions    QuickActions      `yaml:"quick_actions"`
}

// DatasetConfig describes the file the contract was authored against and how
// to import it.
type DatasetConfig struct {
	RowLimitBehavior      RowLimitBehavior `yaml:"row_limit_behavior"`
	ContractBasisFilename string           `yaml:"contract_basis_filename,omitempty"`
	SheetName             string           `yaml:"sheet_name,omitempty"`
	HeaderRow             int              `yaml:"header_row"`
	Delimiter             string           `yaml:"delimiter,omitempty"`
	Encoding              string           `yaml:"encoding,omitempty"`
	ImportSettings        ImportSettings   `yaml:"import_settings"`
}

func (d *DatasetConfig) UnmarshalYAML(node *yaml.Node) error {
	type plain DatasetConfig
	out := plain(DefaultDatasetConfig())
	if err := node.Decode(&out); err != nil {
		return err
	}
	*d = DatasetConfig(out)
	return nil
}

// Normalization is the deterministic per-column cleanup applied before any
// test runs. The steps execute in a fixed order: trim, strip non-printable
// characters, substitute null tokens, then case fold. Null-token matching
// must see already-trimmed text, and case folding must not re-introduce a
// token match, so the order is part of the behavior.
type Normalization struct {
	TrimWhitespace     bool     `yaml:"trim_whitespace"`
	NullTokens         []string `yaml:"null_tokens"`
	Case               CaseMode `yaml:"case"`
	RemoveNonPrintable bool     `yaml:"remove_non_printable"`
}

func (n *Normalization) UnmarshalYAML(node *yaml.Node) error {
	type plain Normalization
	out := plain(DefaultNormalization())
	if err := node.Decode(&out); err != nil {
		return err
	}
	*n = Normalization(out)
	return nil
}

// FailureHandling declares the policy for failing cells or rows.
// LabelColumnName is required when the action is label_failure;
// QuarantineExportName is required when the action is quarantine_row.
type FailureHandling struct {
	Action               FailureAction `yaml:"action"`
	LabelColumnName      string        `yaml:"label_column_name,omitempty"`
	QuarantineExportName string        `yaml:"quarantine_export_name,omitempty"`
}

func (f *FailureHandling) UnmarshalYAML(node *yaml.Node) error {
	type plain FailureHandling
	out := plain(DefaultFailureHandling())
	if err := node.Decode(&out); err != nil {
		return err
	}
	*f = FailureHandling(out)
	return nil
}

// TestConfig is one column-level test. Params holds the decoded,
// type-specific parameter struct; it is nil for tests that take none and for
// unknown test types, which the contract validator reports.
type TestConfig struct {
	Type     ColumnTestType   `yaml:"type"`
	Severity Severity         `yaml:"severity"`
	Params   TestParams       `yaml:"params"`
	OnFail   *FailureHandling `yaml:"on_fail,omitempty"`
}

func (t *TestConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Type     ColumnTestType   `yaml:"type"`
		Severity Severity         `yaml:"severity"`
		Params   yaml.Node        `yaml:"params"`
		OnFail   *FailureHandling `yaml:"on_fail"`
	}
	raw.Severity = SeverityError
	if err := node.Decode(&raw); err != nil {
		return err
	}
	params, err := decodeColumnTestParams(raw.Type, &raw.Params)
	if err != nil {
		return fmt.Errorf("contract: test %q: %w", raw.Type, err)
	}
	*t = TestConfig{Type: raw.Type, Severity: raw.Severity, Params: params, OnFail: raw.OnFail}
	return nil
}

func (t TestConfig) MarshalYAML() (any, error) {
	return marshalTest(string(t.Type), string(t.Severity), t.Params, t.OnFail)
}

// DatasetTest is one dataset-level test over the whole table.
type DatasetTest struct {
	Type     DatasetTestType  `yaml:"type"`
	Severity Severity         `yaml:"severity"`
	Params   TestParams       `yaml:"params"`
	OnFail   *FailureHandling `yaml:"on_fail,omitempty"`
}

func (t *DatasetTest) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Type     DatasetTestType  `yaml:"type"`
		Severity Severity         `yaml:"severity"`
		Params   yaml.Node        `yaml:"params"`
		OnFail   *FailureHandling `yaml:"on_fail"`
	}
	raw.Severity = SeverityError
	if err := node.Decode(&raw); err != nil {
		return err
	}
	params, err := decodeDatasetTestParams(raw.Type, &raw.Params)
	if err != nil {
		return fmt.Errorf("contract: dataset test %q: %w", raw.Type, err)
	}
	*t = DatasetTest{Type: raw.Type, Severity: raw.Severity, Params: params, OnFail: raw.OnFail}
	return nil
}

func (t DatasetTest) MarshalYAML() (any, error) {
	return marshalTest(string(t.Type), string(t.Severity), t.Params, t.OnFail)
}

func marshalTest(testType, severity string, params any, onFail *FailureHandling) (any, error) {
	out := struct {
		Type     string           `yaml:"type"`
		Severity string           `yaml:"severity"`
		Params   any              `yaml:"params"`
		OnFail   *FailureHandling `yaml:"on_fail,omitempty"`
	}{Type: testType, Severity: severity, Params: params, OnFail: onFail}
	if isNilParams(params) {
		out.Params = map[string]any{}
	}
	return out, nil
}

// RemediationConfig is one remediation transform declared on a column.
type RemediationConfig struct {
	Type   RemediationType   `yaml:"type"`
	Params RemediationParams `yaml:"params"`
}

func (r *RemediationConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Type   RemediationType `yaml:"type"`
		Params yaml.Node       `yaml:"params"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	params, err := decodeRemediationParams(raw.Type, &raw.Params)
	if err != nil {
		return fmt.Errorf("contract: remediation %q: %w", raw.Type, err)
	}
	*r = RemediationConfig{Type: raw.Type, Params: params}
	return nil
}

func (r RemediationConfig) MarshalYAML() (any, error) {
	out := struct {
		Type   string `yaml:"type"`
		Params any    `yaml:"params"`
	}{Type: string(r.Type), Params: r.Params}
	if isNilParams(r.Params) {
		out.Params = map[string]any{}
	}
	return out, nil
}

// ColumnConfig declares one column: its type, normalization, tests,
// remediation steps, and default failure policy. Remediation steps apply in
// declaration order.
type ColumnConfig struct {
	Name            string              `yaml:"name"`
	DataType        DataType            `yaml:"data_type"`
	Required        bool                `yaml:"required"`
	RenameTo        string              `yaml:"rename_to,omitempty"`
	Normalization   *Normalization      `yaml:"normalization,omitempty"`
	Tests           []TestConfig        `yaml:"tests"`
	Remediation     []RemediationConfig `yaml:"remediation"`
	FailureHandling FailureHandling     `yaml:"failure_handling"`
}

func (c *ColumnConfig) UnmarshalYAML(node *yaml.Node) error {
	type plain ColumnConfig
	out := plain{
		DataType:        TypeString,
		FailureHandling: DefaultFailureHandling(),
	}
	if err := node.Decode(&out); err != nil {
		return err
	}
	*c = ColumnConfig(out)
	return nil
}

// FailureHandlingFor resolves the failure policy for one of the column's
// tests: the column's default, overridden by the test's own on_fail when the
// test declares one.
func (c *ColumnConfig) FailureHandlingFor(testType ColumnTestType) FailureHandling {
	for i := range c.Tests {
		if c.Tests[i].Type == testType && c.Tests[i].OnFail != nil {
			return *c.Tests[i].OnFail
		}
	}
	return c.FailureHandling
}

// NullPolicy controls whether null dataset values fail a foreign-key check.
type NullPolicy struct {
	AllowNulls bool `yaml:"allow_nulls"`
}

// ForeignKeyCheck declares a membership check of a dataset column against a
// reference column loaded from a separate file. The dataset column's own
// normalization applies to both sides before comparison;
// NormalizationInherit must remain true in contract version 1.
type ForeignKeyCheck struct {
	Name                 string          `yaml:"name"`
	DatasetColumn        string          `yaml:"dataset_column"`
	FKFile               string          `yaml:"fk_file"`
	FKColumn             string          `yaml:"fk_column"`
	FKSheet              string          `yaml:"fk_sheet,omitempty"`
	NormalizationInherit bool            `yaml:"normalization_inherit_from_dataset_column"`
	NullPolicy           NullPolicy      `yaml:"null_policy"`
	OnFail               FailureHandling `yaml:"on_fail"`
}

func (f *ForeignKeyCheck) UnmarshalYAML(node *yaml.Node) error {
	type plain ForeignKeyCheck
	out := plain{
		NormalizationInherit: true,
		OnFail:               DefaultFailureHandling(),
	}
	if err := node.Decode(&out); err != nil {
		return err
	}
	*f = ForeignKeyCheck(out)
	return nil
}

// ExportConfig selects which artifacts a run produces.
type ExportConfig struct {
	ReportHTML         bool   `yaml:"report_html"`
	CleanedDataset     bool   `yaml:"cleaned_dataset"`
	ContractYAML       bool   `yaml:"contract_yaml"`
	RemediationSummary bool   `yaml:"remediation_summary"`
	OutputFormat       string `yaml:"output_format"`
}

func (e *ExportConfig) UnmarshalYAML(node *yaml.Node) error {
	type plain ExportConfig
	out := plain(DefaultExportConfig())
	if err := node.Decode(&out); err != nil {
		return err
	}
	*e = ExportConfig(out)
	return nil
}
