// Package scaffold drafts a contract from an OpenAPI component schema.
// The draft maps each schema property to a column with tests derived from
// the property's constraints; it is a starting point for hand editing, not a
// finished contract.
package scaffold

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-tablecheck/pkg/contract"
)

// ErrSchemaNotFound reports that the named component schema is absent.
var ErrSchemaNotFound = errors.New("scaffold: schema not found")

// Options tunes the draft contract.
type Options struct {
	// DefaultSeverity applies to every generated test. Empty means error.
	DefaultSeverity contract.Severity
}

// FromOpenAPI loads an OpenAPI document and drafts a contract from the named
// component schema. An empty schemaName selects the document's sole
// component schema and errors when there is more than one.
func FromOpenAPI(ctx context.Context, data []byte, schemaName string, opts Options) (*contract.Contract, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("scaffold: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("scaffold: load document: %w", err)
	}

	schema, err := locateSchema(doc, schemaName)
	if err != nil {
		return nil, err
	}

	severity := opts.DefaultSeverity
	if severity == "" {
		severity = contract.SeverityError
	}

	required := make(map[string]struct{}, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = struct{}{}
	}

	// Property maps are unordered; sort for a stable draft.
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	c := contract.New()
	for _, name := range names {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		_, req := required[name]
		c.Columns = append(c.Columns, buildColumn(name, ref.Value, req, severity))
	}
	if len(c.Columns) == 0 {
		return nil, fmt.Errorf("scaffold: schema %q has no usable properties", schemaName)
	}
	return c, nil
}

func locateSchema(doc *openapi3.T, name string) (*openapi3.Schema, error) {
	if doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return nil, fmt.Errorf("%w: document has no component schemas", ErrSchemaNotFound)
	}
	if name != "" {
		ref, ok := doc.Components.Schemas[name]
		if !ok || ref.Value == nil {
			return nil, fmt.Errorf("%w: %q", ErrSchemaNotFound, name)
		}
		return ref.Value, nil
	}
	if len(doc.Components.Schemas) > 1 {
		return nil, errors.New("scaffold: multiple component schemas, name one explicitly")
	}
	for _, ref := range doc.Components.Schemas {
		if ref.Value != nil {
			return ref.Value, nil
		}
	}
	return nil, ErrSchemaNotFound
}

func buildColumn(name string, schema *openapi3.Schema, required bool, severity contract.Severity) contract.ColumnConfig {
	col := contract.DefaultColumn(name)
	col.DataType = mapDataType(schema)
	col.Required = required

	if required {
		col.Tests = append(col.Tests, contract.TestConfig{
			Type:     contract.TestNotNull,
			Severity: severity,
		})
	}
	if len(schema.Enum) > 0 {
		allowed := make([]string, 0, len(schema.Enum))
		for _, v := range schema.Enum {
			allowed = append(allowed, fmt.Sprintf("%v", v))
		}
		col.Tests = append(col.Tests, contract.TestConfig{
			Type:     contract.TestEnum,
			Severity: severity,
			Params:   &contract.EnumParams{AllowedValues: allowed},
		})
	}
	if schema.Min != nil || schema.Max != nil {
		col.Tests = append(col.Tests, contract.TestConfig{
			Type:     contract.TestRange,
			Severity: severity,
			Params:   &contract.RangeParams{Min: schema.Min, Max: schema.Max},
		})
	}
	if schema.MinLength > 0 || schema.MaxLength != nil {
		p := &contract.LengthParams{}
		if schema.MinLength > 0 {
			min := int(schema.MinLength)
			p.Min = &min
		}
		if schema.MaxLength != nil {
			max := int(*schema.MaxLength)
			p.Max = &max
		}
		col.Tests = append(col.Tests, contract.TestConfig{
			Type:     contract.TestLength,
			Severity: severity,
			Params:   p,
		})
	}
	if schema.Pattern != "" {
		col.Tests = append(col.Tests, contract.TestConfig{
			Type:     contract.TestPattern,
			Severity: severity,
			Params:   &contract.PatternParams{Tier: contract.TierAdvanced, Pattern: schema.Pattern},
		})
	}
	return col
}

func mapDataType(schema *openapi3.Schema) contract.DataType {
	types := schema.Type
	switch {
	case types.Is(openapi3.TypeInteger):
		return contract.TypeInteger
	case types.Is(openapi3.TypeNumber):
		return contract.TypeFloat
	case types.Is(openapi3.TypeBoolean):
		return contract.TypeBoolean
	case types.Is(openapi3.TypeString):
		switch schema.Format {
		case "date":
			return contract.TypeDate
		case "date-time":
			return contract.TypeTimestamp
		}
		return contract.TypeString
	}
	// Unknown and composite types draft as string.
	return contract.TypeString
}
