package contract

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

var (
	// ErrEmptyDocument reports a contract document with no content.
	ErrEmptyDocument = errors.New("contract: YAML document is empty")
	// ErrNotMapping reports a contract document whose root is not a mapping.
	ErrNotMapping = errors.New("contract: YAML root must be a mapping")
)

// Parse decodes a contract from YAML. Absent fields take their declared
// defaults; a missing contract id or creation timestamp is filled in so the
// result is always addressable. Parse does not validate semantics, use
// Validate for that.
func Parse(data []byte) (*Contract, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, ErrEmptyDocument
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("contract: invalid YAML syntax: %w", err)
	}
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, ErrEmptyDocument
		}
		if root.Content[0].Kind != yaml.MappingNode {
			return nil, ErrNotMapping
		}
	}

	var c Contract
	if err := root.Decode(&c); err != nil {
		return nil, fmt.Errorf("contract: %w", err)
	}

	if strings.TrimSpace(c.ContractID) == "" {
		c.ContractID = uuid.NewString()
	}
	if strings.TrimSpace(c.CreatedAtUTC) == "" {
		c.CreatedAtUTC = time.Now().UTC().Format(TimestampLayout)
	}
	return &c, nil
}

// ParseFile reads and parses a contract file.
func ParseFile(path string) (*Contract, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("contract: read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("contract: parse %s: %w", path, err)
	}
	return c, nil
}

// Serialize renders the contract as YAML in declaration order.
func Serialize(c *Contract) ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("contract: serialize: %w", err)
	}
	return out, nil
}

// WriteFile serializes the contract to path.
func WriteFile(c *Contract, path string) error {
	data, err := Serialize(c)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("contract: write %s: %w", path, err)
	}
	return nil
}

// MergeWithDefaults appends a default string column for every dataset column
// the contract does not already declare, preserving dataset column order for
// the additions. The contract is modified in place and returned.
func MergeWithDefaults(c *Contract, columnNames []string) *Contract {
	declared := make(map[string]bool, len(c.Columns))
	for _, col := range c.Columns {
		declared[col.Name] = true
	}
	for _, name := range columnNames {
		if !declared[name] {
			c.Columns = append(c.Columns, DefaultColumn(name))
		}
	}
	return c
}

// Metadata is the displayable header of a contract.
type Metadata struct {
	ContractVersion  string
	ContractID       string
	CreatedAtUTC     string
	AppName          string
	AppVersion       string
	ColumnCount      int
	DatasetTestCount int
	FKCheckCount     int
}

// Metadata summarizes the contract for display.
func (c *Contract) Metadata() Metadata {
	return Metadata{
		ContractVersion:  c.ContractVersion,
		ContractID:       c.ContractID,
		CreatedAtUTC:     c.CreatedAtUTC,
		AppName:          c.App.Name,
		AppVersion:       c.App.Version,
		ColumnCount:      len(c.Columns),
		DatasetTestCount: len(c.DatasetTests),
		FKCheckCount:     len(c.ForeignKeyChecks),
	}
}
