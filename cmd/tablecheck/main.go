package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	tablecheck "github.com/goliatone/go-tablecheck"
	"github.com/goliatone/go-tablecheck/internal/tabio"
	"github.com/goliatone/go-tablecheck/pkg/contract"
	"github.com/goliatone/go-tablecheck/pkg/export"
	"github.com/goliatone/go-tablecheck/pkg/remediation"
	"github.com/goliatone/go-tablecheck/pkg/report"
	"github.com/goliatone/go-tablecheck/pkg/scaffold"
	"github.com/goliatone/go-tablecheck/pkg/table"
	"github.com/goliatone/go-tablecheck/pkg/validation"
)

type cliOptions struct {
	mode         string
	contractPath string
	inputPath    string
	refPath      string
	reportPath   string
	outputPath   string
	summaryPath  string
	openapiPath  string
	schemaName   string
	verbose      bool
}

func main() {
	var opts cliOptions
	flag.StringVar(&opts.mode, "mode", "validate", "one of: validate, remediate, init, scaffold")
	flag.StringVar(&opts.contractPath, "contract", "contract.yaml", "contract file path")
	flag.StringVar(&opts.inputPath, "input", "", "input CSV path")
	flag.StringVar(&opts.refPath, "reference", "", "reference CSV for foreign-key checks")
	flag.StringVar(&opts.reportPath, "report", "", "write an HTML validation report here")
	flag.StringVar(&opts.outputPath, "output", "", "output path (cleaned CSV, or contract for init/scaffold)")
	flag.StringVar(&opts.summaryPath, "summary", "", "write an HTML remediation summary here")
	flag.StringVar(&opts.openapiPath, "openapi", "", "OpenAPI document to scaffold a contract from")
	flag.StringVar(&opts.schemaName, "schema", "", "schema name inside the OpenAPI document")
	flag.BoolVar(&opts.verbose, "verbose", false, "enable debug logging")
	flag.Parse()

	ctx := context.Background()
	logger := zap.NewNop()
	if opts.verbose {
		dev, err := zap.NewDevelopment()
		if err != nil {
			log.Fatalf("logger: %v", err)
		}
		logger = dev
		defer func() { _ = logger.Sync() }()
	}

	var err error
	switch opts.mode {
	case "validate":
		err = runValidate(ctx, opts, logger)
	case "remediate":
		err = runRemediate(ctx, opts, logger)
	case "init":
		err = runInit(opts)
	case "scaffold":
		err = runScaffold(ctx, opts)
	default:
		err = fmt.Errorf("unknown mode %q", opts.mode)
	}
	if err != nil {
		if err == errValidationFailed {
			os.Exit(1)
		}
		log.Fatalf("tablecheck: %v", err)
	}
}

var errValidationFailed = fmt.Errorf("validation failed")

func runValidate(ctx context.Context, opts cliOptions, logger *zap.Logger) error {
	c, err := tablecheck.LoadContract(opts.contractPath)
	if err != nil {
		return err
	}
	tbl, err := readTable(opts.inputPath, c)
	if err != nil {
		return err
	}
	reference, err := readReference(opts.refPath)
	if err != nil {
		return err
	}

	result, err := tablecheck.Validate(ctx, tbl, c, reference, validation.WithLogger(logger))
	if err != nil {
		return err
	}

	fmt.Println(validation.FormatSummary(result.Summary))
	for _, msg := range result.BlockingErrors {
		fmt.Println("blocking:", msg)
	}
	for _, fk := range result.ForeignKeyResults {
		fmt.Println(validation.FormatForeignKeyResult(fk))
	}
	for column, byTest := range result.ColumnErrorSummary() {
		for testType, count := range byTest {
			fmt.Printf("  %s: %d %s failure(s)\n", column, count, testType)
		}
	}

	if opts.reportPath != "" {
		if err := writeReport(opts.reportPath, result, nil, c, opts.inputPath); err != nil {
			return err
		}
		fmt.Println("report written to", opts.reportPath)
	}
	if opts.outputPath != "" {
		labeled := validation.AddErrorColumns(tbl, result)
		if err := writeCSV(opts.outputPath, labeled); err != nil {
			return err
		}
		fmt.Println("labeled dataset written to", opts.outputPath)
	}
	if !result.IsValid {
		return errValidationFailed
	}
	return nil
}

func runRemediate(ctx context.Context, opts cliOptions, logger *zap.Logger) error {
	if opts.outputPath == "" {
		return fmt.Errorf("remediate mode requires -output")
	}
	c, err := tablecheck.LoadContract(opts.contractPath)
	if err != nil {
		return err
	}
	tbl, err := readTable(opts.inputPath, c)
	if err != nil {
		return err
	}
	reference, err := readReference(opts.refPath)
	if err != nil {
		return err
	}

	cleaned, diff, err := tablecheck.Remediate(ctx, tbl, c, remediation.WithLogger(logger))
	if err != nil {
		return err
	}
	fmt.Println(diff.FormatSummary())

	// Failure handling runs on the remediated table so drops and quarantines
	// only catch what cleansing could not repair.
	result, outcome, err := tablecheck.Resolve(ctx, cleaned, c, reference, validation.WithLogger(logger))
	if err != nil {
		return err
	}

	if err := writeCSV(opts.outputPath, outcome.Clean); err != nil {
		return err
	}
	fmt.Println("cleaned dataset written to", opts.outputPath)

	for name, bucket := range outcome.Quarantines {
		path := export.QuarantineFilename(opts.outputPath, name)
		if err := writeCSV(path, bucket); err != nil {
			return err
		}
		fmt.Printf("quarantined %d rows to %s\n", bucket.NumRows(), path)
	}

	if opts.summaryPath != "" {
		if err := writeSummary(opts.summaryPath, diff, c, opts.inputPath); err != nil {
			return err
		}
		fmt.Println("summary written to", opts.summaryPath)
	}
	if opts.reportPath != "" {
		if err := writeReport(opts.reportPath, result, diff, c, opts.inputPath); err != nil {
			return err
		}
		fmt.Println("report written to", opts.reportPath)
	}
	return nil
}

func runScaffold(ctx context.Context, opts cliOptions) error {
	if opts.openapiPath == "" {
		return fmt.Errorf("scaffold mode requires -openapi")
	}
	data, err := os.ReadFile(opts.openapiPath)
	if err != nil {
		return fmt.Errorf("read openapi document: %w", err)
	}
	c, err := scaffold.FromOpenAPI(ctx, data, opts.schemaName, scaffold.Options{})
	if err != nil {
		return err
	}
	out := opts.outputPath
	if out == "" {
		out = opts.contractPath
	}
	if err := contract.WriteFile(c, out); err != nil {
		return err
	}
	fmt.Println("contract draft written to", out)
	return nil
}

func readTable(path string, c *contract.Contract) (*table.Table, error) {
	if path == "" {
		return nil, fmt.Errorf("missing -input")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	ingest := tabio.Options{NullTokens: contract.CommonNullTokens()}
	if c != nil {
		settings := c.Dataset.ImportSettings
		ingest.SkipRows = settings.SkipRows
		ingest.SkipFooterRows = settings.SkipFooterRows
		if c.Dataset.Delimiter != "" {
			ingest.Delimiter = rune(c.Dataset.Delimiter[0])
		}
	}
	tbl, err := tabio.ReadCSV(f, ingest)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return tbl, nil
	}
	return tabio.ApplyImportSettings(tbl, c.Dataset.ImportSettings)
}

func readReference(path string) (*table.Table, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference: %w", err)
	}
	defer f.Close()
	return tabio.ReadCSV(f, tabio.Options{NullTokens: contract.CommonNullTokens()})
}

func writeCSV(path string, tbl *table.Table) error {
	data, err := export.CSV(tbl, export.Options{})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeReport(path string, result *validation.Result, diff *remediation.Diff, c *contract.Contract, inputPath string) error {
	r, err := report.NewRenderer()
	if err != nil {
		return err
	}
	html, err := r.ValidationReport(result, diff, reportMeta(c, inputPath))
	if err != nil {
		return err
	}
	return os.WriteFile(path, html, 0o644)
}

func writeSummary(path string, diff *remediation.Diff, c *contract.Contract, inputPath string) error {
	r, err := report.NewRenderer()
	if err != nil {
		return err
	}
	html, err := r.RemediationSummary(diff, reportMeta(c, inputPath))
	if err != nil {
		return err
	}
	return os.WriteFile(path, html, 0o644)
}

func reportMeta(c *contract.Contract, inputPath string) report.Meta {
	name := c.Dataset.ContractBasisFilename
	if inputPath != "" {
		name = filepath.Base(inputPath)
	}
	return report.Meta{
		DatasetName: name,
		ContractID:  c.ContractID,
		GeneratedAt: time.Now().UTC(),
	}
}
