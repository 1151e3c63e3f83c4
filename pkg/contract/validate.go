package contract

import (
	"fmt"
	"strings"
)

// FieldError is a single contract validation finding. Field is a path such
// as "columns[2].tests[0].type".
type FieldError struct {
	Field    string
	Message  string
	Guidance string
}

// ValidationResult is the outcome of contract self-validation.
type ValidationResult struct {
	IsValid bool
	Errors  []FieldError
}

// Validate checks the contract's internal consistency: required fields,
// closed vocabularies, failure-handling prerequisites, date-rule parameters,
// and column references. It never touches data; run it before validating a
// dataset against the contract.
func Validate(c *Contract) ValidationResult {
	var errs []FieldError
	errs = append(errs, validateTopLevel(c)...)
	errs = append(errs, validateColumns(c)...)
	errs = append(errs, validateDatasetTests(c)...)
	errs = append(errs, validateForeignKeyChecks(c)...)
	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

func validateTopLevel(c *Contract) []FieldError {
	var errs []FieldError

	if c.ContractVersion == "" {
		errs = append(errs, FieldError{
			Field:    "contract_version",
			Message:  "Contract version is required.",
			Guidance: `Add 'contract_version: "1.0"' to the contract.`,
		})
	}
	if c.ContractID == "" {
		errs = append(errs, FieldError{
			Field:    "contract_id",
			Message:  "Contract ID is required.",
			Guidance: "Add a unique 'contract_id' field (can be a UUID).",
		})
	}
	if c.CreatedAtUTC == "" {
		errs = append(errs, FieldError{
			Field:    "created_at_utc",
			Message:  "Creation timestamp is required.",
			Guidance: "Add 'created_at_utc' in ISO 8601 format.",
		})
	}
	if c.App.Name == "" {
		errs = append(errs, FieldError{
			Field:    "app",
			Message:  "Application metadata is required.",
			Guidance: "Add 'app' section with 'name' and 'version'.",
		})
	}
	if len(c.Columns) == 0 {
		errs = append(errs, FieldError{
			Field:    "columns",
			Message:  "At least one column must be defined.",
			Guidance: "Add 'columns' list with column configurations.",
		})
	}

	return errs
}

func validateColumns(c *Contract) []FieldError {
	var errs []FieldError
	seen := make(map[string]bool)

	for i, col := range c.Columns {
		prefix := fmt.Sprintf("columns[%d]", i)

		if col.Name == "" {
			errs = append(errs, FieldError{
				Field:    prefix + ".name",
				Message:  fmt.Sprintf("Column %d is missing a name.", i),
				Guidance: "Each column must have a 'name' field.",
			})
		} else {
			if seen[col.Name] {
				errs = append(errs, FieldError{
					Field:    prefix + ".name",
					Message:  fmt.Sprintf("Duplicate column name: '%s'.", col.Name),
					Guidance: "Each column name must be unique.",
				})
			}
			seen[col.Name] = true
		}

		if !col.DataType.Valid() {
			errs = append(errs, FieldError{
				Field:    prefix + ".data_type",
				Message:  fmt.Sprintf("Invalid data type: '%s'.", col.DataType),
				Guidance: "Valid data types: " + joinList(DataTypes()),
			})
		}

		errs = append(errs, validateFailureHandling(&col.FailureHandling, prefix+".failure_handling")...)

		for j := range col.Tests {
			test := &col.Tests[j]
			testPrefix := fmt.Sprintf("%s.tests[%d]", prefix, j)
			errs = append(errs, validateTest(string(test.Type), test.Severity, test.OnFail, testPrefix, true)...)
			if test.Type == TestDateRule {
				errs = append(errs, validateDateRule(test, testPrefix)...)
			}
		}

		for j, rem := range col.Remediation {
			if !rem.Type.Valid() {
				errs = append(errs, FieldError{
					Field:    fmt.Sprintf("%s.remediation[%d].type", prefix, j),
					Message:  fmt.Sprintf("Invalid remediation type: '%s'.", rem.Type),
					Guidance: "Valid types: " + joinList(RemediationTypes()),
				})
			}
		}
	}

	return errs
}

func validateFailureHandling(fh *FailureHandling, prefix string) []FieldError {
	var errs []FieldError
	if fh == nil {
		return errs
	}

	if fh.Action != "" && !fh.Action.Valid() {
		errs = append(errs, FieldError{
			Field:    prefix + ".action",
			Message:  fmt.Sprintf("Invalid failure action: '%s'.", fh.Action),
			Guidance: "Valid actions: " + joinList(FailureActions()),
		})
	}
	if fh.Action == ActionLabelFailure && fh.LabelColumnName == "" {
		errs = append(errs, FieldError{
			Field:    prefix + ".label_column_name",
			Message:  "label_column_name is required when action is 'label_failure'.",
			Guidance: "Add 'label_column_name' to specify the error label column.",
		})
	}
	if fh.Action == ActionQuarantineRow && fh.QuarantineExportName == "" {
		errs = append(errs, FieldError{
			Field:    prefix + ".quarantine_export_name",
			Message:  "quarantine_export_name is required when action is 'quarantine_row'.",
			Guidance: "Add 'quarantine_export_name' to specify the quarantine output name.",
		})
	}

	return errs
}

func validateTest(testType string, severity Severity, onFail *FailureHandling, prefix string, isColumnTest bool) []FieldError {
	var errs []FieldError

	if testType == "" {
		errs = append(errs, FieldError{
			Field:    prefix + ".type",
			Message:  "Test type is required.",
			Guidance: "Add 'type' field to the test.",
		})
	} else {
		valid := ColumnTestType(testType).Valid()
		validList := joinList(ColumnTestTypes())
		if !isColumnTest {
			valid = DatasetTestType(testType).Valid()
			validList = joinList(DatasetTestTypes())
		}
		if !valid {
			errs = append(errs, FieldError{
				Field:    prefix + ".type",
				Message:  fmt.Sprintf("Invalid test type: '%s'.", testType),
				Guidance: "Valid types: " + validList,
			})
		}
	}

	if severity != "" && !severity.Valid() {
		errs = append(errs, FieldError{
			Field:    prefix + ".severity",
			Message:  fmt.Sprintf("Invalid severity: '%s'.", severity),
			Guidance: "Severity must be 'error' or 'warning'.",
		})
	}

	if onFail != nil {
		errs = append(errs, validateFailureHandling(onFail, prefix+".on_fail")...)
	}

	return errs
}

func validateDateRule(test *TestConfig, prefix string) []FieldError {
	var errs []FieldError

	params, _ := test.Params.(*DateRuleParams)
	if params == nil {
		params = &DateRuleParams{Mode: DateRuleSimple}
	}

	if params.TargetFormat == "" {
		errs = append(errs, FieldError{
			Field:    prefix + ".params.target_format",
			Message:  "Date rule requires exactly one target_format.",
			Guidance: "Add 'target_format' to params (e.g., 'YYYY-MM-DD').",
		})
	}

	if params.Mode == DateRuleRobust {
		switch {
		case params.AcceptedInputFormats == nil:
			errs = append(errs, FieldError{
				Field:    prefix + ".params.accepted_input_formats",
				Message:  "Robust mode requires accepted_input_formats list.",
				Guidance: "Add 'accepted_input_formats' as a non-empty list.",
			})
		case len(params.AcceptedInputFormats) == 0:
			errs = append(errs, FieldError{
				Field:    prefix + ".params.accepted_input_formats",
				Message:  "accepted_input_formats cannot be empty in robust mode.",
				Guidance: "Add at least one format to accepted_input_formats.",
			})
		}
	}

	return errs
}

func validateDatasetTests(c *Contract) []FieldError {
	var errs []FieldError
	columns := make(map[string]bool, len(c.Columns))
	for _, col := range c.Columns {
		columns[col.Name] = true
	}

	for i := range c.DatasetTests {
		test := &c.DatasetTests[i]
		prefix := fmt.Sprintf("dataset_tests[%d]", i)
		errs = append(errs, validateTest(string(test.Type), test.Severity, test.OnFail, prefix, false)...)

		switch params := test.Params.(type) {
		case *KeyColumnsParams:
			for _, name := range params.KeyColumns {
				if !columns[name] {
					errs = append(errs, FieldError{
						Field:    prefix + ".params.key_columns",
						Message:  fmt.Sprintf("Referenced column '%s' not found in columns.", name),
						Guidance: "Ensure all referenced columns are defined in 'columns'.",
					})
				}
			}
		case *CrossFieldRuleParams:
			for _, name := range params.If.AllNotNull {
				if !columns[name] {
					errs = append(errs, FieldError{
						Field:    prefix + ".params.if.all_not_null",
						Message:  fmt.Sprintf("Referenced column '%s' not found.", name),
						Guidance: "Ensure all referenced columns are defined.",
					})
				}
			}
		}
	}

	return errs
}

func validateForeignKeyChecks(c *Contract) []FieldError {
	var errs []FieldError
	columns := make(map[string]bool, len(c.Columns))
	for _, col := range c.Columns {
		columns[col.Name] = true
	}

	for i := range c.ForeignKeyChecks {
		fk := &c.ForeignKeyChecks[i]
		prefix := fmt.Sprintf("foreign_key_checks[%d]", i)

		if fk.Name == "" {
			errs = append(errs, FieldError{
				Field:    prefix + ".name",
				Message:  "Foreign key check name is required.",
				Guidance: "Add a descriptive 'name' for the FK check.",
			})
		}
		if fk.DatasetColumn != "" && !columns[fk.DatasetColumn] {
			errs = append(errs, FieldError{
				Field:    prefix + ".dataset_column",
				Message:  fmt.Sprintf("Dataset column '%s' not found.", fk.DatasetColumn),
				Guidance: "Ensure the referenced column is defined in 'columns'.",
			})
		}
		if fk.FKFile == "" {
			errs = append(errs, FieldError{
				Field:    prefix + ".fk_file",
				Message:  "FK file reference is required.",
				Guidance: "Add 'fk_file' with the FK list filename.",
			})
		}
		if fk.FKColumn == "" {
			errs = append(errs, FieldError{
				Field:    prefix + ".fk_column",
				Message:  "FK column is required.",
				Guidance: "Add 'fk_column' with the FK column name.",
			})
		}
		if !fk.NormalizationInherit {
			errs = append(errs, FieldError{
				Field:    prefix + ".normalization_inherit_from_dataset_column",
				Message:  "Must be true in v1.",
				Guidance: "Set 'normalization_inherit_from_dataset_column: true'.",
			})
		}

		errs = append(errs, validateFailureHandling(&fk.OnFail, prefix+".on_fail")...)
	}

	return errs
}

// FormatErrors renders a validation result for display, one finding per
// line with its guidance.
func FormatErrors(result ValidationResult) string {
	if result.IsValid {
		return "Contract is valid."
	}

	lines := []string{"Contract validation failed:"}
	for _, e := range result.Errors {
		lines = append(lines, fmt.Sprintf("\n- %s: %s", e.Field, e.Message))
		lines = append(lines, fmt.Sprintf("  Guidance: %s", e.Guidance))
	}
	return strings.Join(lines, "\n")
}

func joinList[T ~string](items []T) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = string(item)
	}
	return strings.Join(parts, ", ")
}
