package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/goliatone/go-tablecheck/internal/tabio"
	"github.com/goliatone/go-tablecheck/pkg/contract"
	"github.com/goliatone/go-tablecheck/pkg/presets"
)

// errAborted reports that the user cancelled the wizard.
var errAborted = errors.New("aborted")

// runInit builds a contract interactively: it reads the input CSV to learn
// the column names, then walks each column asking which type and tests it
// should carry. Columns the user skips still get the permissive defaults so
// the resulting contract covers the whole file.
func runInit(opts cliOptions) error {
	if opts.inputPath == "" {
		return fmt.Errorf("init mode requires -input to derive column names")
	}
	f, err := os.Open(opts.inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	tbl, err := tabio.ReadCSV(f, tabio.Options{NullTokens: contract.CommonNullTokens()})
	f.Close()
	if err != nil {
		return err
	}

	c := contract.New()
	for _, name := range tbl.Columns() {
		col, err := promptColumn(name)
		if err != nil {
			return err
		}
		c.Columns = append(c.Columns, col)
	}

	out := opts.outputPath
	if out == "" {
		out = opts.contractPath
	}
	confirmed, err := confirm(fmt.Sprintf("Write contract for %d columns to %s?", len(c.Columns), out))
	if err != nil {
		return err
	}
	if !confirmed {
		return errAborted
	}

	if cv := contract.Validate(c); !cv.IsValid {
		return fmt.Errorf("generated contract failed validation:\n%s", contract.FormatErrors(cv))
	}
	if err := contract.WriteFile(c, out); err != nil {
		return err
	}
	fmt.Println("contract written to", out)
	return nil
}

func promptColumn(name string) (contract.ColumnConfig, error) {
	col := contract.DefaultColumn(name)

	types := contract.DataTypes()
	typeOptions := make([]string, len(types))
	for i, dt := range types {
		typeOptions[i] = string(dt)
	}
	var picked string
	err := survey.AskOne(&survey.Select{
		Message: fmt.Sprintf("Data type for column %q:", name),
		Options: typeOptions,
		Default: string(contract.TypeString),
	}, &picked)
	if err != nil {
		return col, translateSurveyErr(err)
	}
	col.DataType = contract.DataType(picked)

	if col.DataType == contract.TypeDate || col.DataType == contract.TypeTimestamp {
		dateTest, err := promptDateFormat(name)
		if err != nil {
			return col, err
		}
		col.Tests = append(col.Tests, dateTest)
	}

	required, err := confirm(fmt.Sprintf("Is %q required (reject null values)?", name))
	if err != nil {
		return col, err
	}
	col.Required = required

	var testNames []string
	err = survey.AskOne(&survey.MultiSelect{
		Message: fmt.Sprintf("Tests for column %q:", name),
		Options: promptableTests(),
		Help:    "tests that need parameters are written with empty params for you to fill in",
	}, &testNames)
	if err != nil {
		return col, translateSurveyErr(err)
	}
	for _, tn := range testNames {
		col.Tests = append(col.Tests, testStub(contract.ColumnTestType(tn)))
	}
	if required {
		col.Tests = ensureNotNull(col.Tests)
	}
	return col, nil
}

// promptDateFormat picks the expected date format for a date-typed column
// and wires it into a simple-mode date_rule test.
func promptDateFormat(name string) (contract.TestConfig, error) {
	names := presets.CommonDateFormatNames()
	examples := presets.DateFormatExamples()

	var picked string
	err := survey.AskOne(&survey.Select{
		Message: fmt.Sprintf("Expected date format for %q:", name),
		Options: names,
		Description: func(value string, _ int) string {
			return examples[value]
		},
	}, &picked)
	if err != nil {
		return contract.TestConfig{}, translateSurveyErr(err)
	}
	return contract.TestConfig{
		Type:     contract.TestDateRule,
		Severity: contract.SeverityError,
		Params: &contract.DateRuleParams{
			TargetFormat: picked,
			Mode:         contract.DateRuleSimple,
		},
	}, nil
}

// promptableTests excludes date tests, which promptColumn wires from the
// picked data type instead.
func promptableTests() []string {
	var out []string
	for _, t := range contract.ColumnTestTypes() {
		switch t {
		case contract.TestDateRule, contract.TestDateWindow:
			continue
		}
		out = append(out, string(t))
	}
	return out
}

func testStub(t contract.ColumnTestType) contract.TestConfig {
	cfg := contract.TestConfig{Type: t, Severity: contract.SeverityError}
	switch t {
	case contract.TestRange:
		cfg.Params = &contract.RangeParams{}
	case contract.TestEnum:
		cfg.Params = &contract.EnumParams{CaseInsensitive: true}
	case contract.TestPattern:
		cfg.Params = &contract.PatternParams{Tier: contract.TierPreset}
	case contract.TestLength:
		cfg.Params = &contract.LengthParams{}
	case contract.TestCardinalityWarning:
		cfg.Params = &contract.CardinalityParams{Min: 1}
	case contract.TestMonotonic:
		cfg.Params = &contract.MonotonicParams{Direction: contract.Ascending}
	}
	return cfg
}

func ensureNotNull(tests []contract.TestConfig) []contract.TestConfig {
	for _, tc := range tests {
		if tc.Type == contract.TestNotNull {
			return tests
		}
	}
	return append(tests, contract.TestConfig{Type: contract.TestNotNull, Severity: contract.SeverityError})
}

func confirm(message string) (bool, error) {
	var out bool
	if err := survey.AskOne(&survey.Confirm{Message: message, Default: true}, &out); err != nil {
		return false, translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return errAborted
	}
	return err
}
