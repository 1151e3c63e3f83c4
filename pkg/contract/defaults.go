package contract

import (
	"time"

	"github.com/google/uuid"
)

// Application metadata recorded in every contract.
const (
	Version           = "1.0"
	DefaultAppName    = "Data Doctor"
	DefaultAppVersion = "0.1.0"
)

// Resource limits recorded in a default contract.
const (
	DefaultMaxUploadMB = 75
	DefaultMaxRows     = 250000
	DefaultMaxColumns  = 100
)

// TimestampLayout renders created_at_utc timestamps. Contracts always carry
// UTC times, so the offset collapses to a literal Z.
const TimestampLayout = "2006-01-02T15:04:05Z07:00"

// DefaultNullTokens returns the token set a default Normalization block
// treats as null.
func DefaultNullTokens() []string {
	return []string{"", "NA", "N/A", "null", "None"}
}

// CommonNullTokens extends DefaultNullTokens with the uppercase and lowercase
// spellings seen in real exports. It is the default token set for the
// standardize_nulls remediation and for scaffolded columns.
func CommonNullTokens() []string {
	return []string{"", "NA", "N/A", "null", "None", "NULL", "none"}
}

// New returns an empty contract with generated identity and default
// configuration blocks.
func New() *Contract {
	return &Contract{
		ContractVersion: Version,
		ContractID:      uuid.NewString(),
		CreatedAtUTC:    time.Now().UTC().Format(TimestampLayout),
		App:             DefaultAppInfo(),
		Limits:          defaultLimitsPtr(),
		Dataset:         DefaultDatasetConfig(),
		Exports:         DefaultExportConfig(),
	}
}

// DefaultAppInfo returns the application metadata block.
func DefaultAppInfo() AppInfo {
	return AppInfo{Name: DefaultAppName, Version: DefaultAppVersion}
}

// DefaultLimits returns the standard resource limits.
func DefaultLimits() Limits {
	return Limits{
		MaxUploadMB: DefaultMaxUploadMB,
		MaxRows:     DefaultMaxRows,
		MaxColumns:  DefaultMaxColumns,
	}
}

func defaultLimitsPtr() *Limits {
	l := DefaultLimits()
	return &l
}

// DefaultDatasetConfig returns the dataset block with standard import
// behavior.
func DefaultDatasetConfig() DatasetConfig {
	return DatasetConfig{
		RowLimitBehavior: RowLimitBehavior{RejectIfOverLimit: true},
		HeaderRow:        1,
	}
}

// DefaultNormalization returns the normalization block applied to columns
// that do not declare one explicitly.
func DefaultNormalization() Normalization {
	return Normalization{
		TrimWhitespace:     true,
		NullTokens:         DefaultNullTokens(),
		Case:               CaseNone,
		RemoveNonPrintable: true,
	}
}

// DefaultFailureHandling returns the strict default failure policy.
func DefaultFailureHandling() FailureHandling {
	return FailureHandling{Action: ActionStrictFail}
}

// DefaultExportConfig returns the export block with report and contract
// output enabled.
func DefaultExportConfig() ExportConfig {
	return ExportConfig{
		ReportHTML:   true,
		ContractYAML: true,
		OutputFormat: "csv",
	}
}

// DefaultColumn returns a column configuration with standard normalization
// and failure handling for the named column.
func DefaultColumn(name string) ColumnConfig {
	norm := DefaultNormalization()
	return ColumnConfig{
		Name:            name,
		DataType:        TypeString,
		Normalization:   &norm,
		FailureHandling: DefaultFailureHandling(),
	}
}
