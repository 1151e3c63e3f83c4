package tablecheck

import (
	"context"

	"github.com/goliatone/go-tablecheck/pkg/contract"
	"github.com/goliatone/go-tablecheck/pkg/remediation"
	"github.com/goliatone/go-tablecheck/pkg/table"
	"github.com/goliatone/go-tablecheck/pkg/validation"
)

// Contract is the parsed contract document; alias exported via the root
// package for convenience.
type Contract = contract.Contract

// ValidationResult holds the full outcome of a validation run.
type ValidationResult = validation.Result

// Diff summarizes the cell-level changes a remediation run produced.
type Diff = remediation.Diff

// FailureOutcome splits a validated dataset into clean and quarantined rows.
type FailureOutcome = remediation.FailureOutcome

// LoadContract parses and self-validates a contract file. A contract that
// parses but fails its own schema checks is rejected here rather than at run
// time.
func LoadContract(path string) (*contract.Contract, error) {
	c, err := contract.ParseFile(path)
	if err != nil {
		return nil, err
	}
	if cv := contract.Validate(c); !cv.IsValid {
		return nil, &ContractError{Detail: contract.FormatErrors(cv)}
	}
	return c, nil
}

// ContractError reports a contract that failed self-validation, with the
// formatted field errors attached.
type ContractError struct {
	Detail string
}

func (e *ContractError) Error() string {
	return "tablecheck: invalid contract:\n" + e.Detail
}

// Validate runs every declared column test, dataset test, and foreign-key
// check against tbl. reference may be nil when the contract declares no
// foreign-key checks.
func Validate(ctx context.Context, tbl *table.Table, c *contract.Contract, reference *table.Table, opts ...validation.Option) (*validation.Result, error) {
	return validation.NewEngine(opts...).Run(ctx, tbl, c, reference)
}

// Remediate applies the contract's remediation pipeline to tbl and reports
// what changed. The input table is never mutated.
func Remediate(ctx context.Context, tbl *table.Table, c *contract.Contract, opts ...remediation.Option) (*table.Table, *remediation.Diff, error) {
	return remediation.NewEngine(opts...).Run(ctx, tbl, c)
}

// Resolve validates tbl and then applies the contract's failure-handling
// actions to the cells that failed: nulling, dropping, or quarantining rows
// as each column declares. It is the one-call path for callers that want a
// clean table plus quarantine buckets.
func Resolve(ctx context.Context, tbl *table.Table, c *contract.Contract, reference *table.Table, opts ...validation.Option) (*validation.Result, *remediation.FailureOutcome, error) {
	result, err := validation.NewEngine(opts...).Run(ctx, tbl, c, reference)
	if err != nil {
		return nil, nil, err
	}
	outcome, err := remediation.ApplyFailureHandling(tbl, result, c)
	if err != nil {
		return result, nil, err
	}
	return result, outcome, nil
}
