// Package fixture loads small, YAML-encoded test data — table rows,
// batch input rows, expected results — into the typed structures the
// engine's own tests exercise it with. It is test support only: nothing
// here is reachable from pkg/tariff, and it does not parse or validate a
// graph definition language.
package fixture

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ratehub/tariffengine/internal/decimal"
	"github.com/ratehub/tariffengine/internal/table"
	"github.com/ratehub/tariffengine/internal/value"
)

// DecodeParams re-marshals a loosely typed mapping (as produced by
// yaml.Unmarshal into map[string]any) into a concrete struct T, the same
// marshal-roundtrip trick the workflow engine's node config decoder used
// for JSON, adapted here to YAML test fixtures.
func DecodeParams[T any](raw map[string]any) (*T, error) {
	if raw == nil {
		return nil, fmt.Errorf("fixture: params are nil")
	}
	data, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("fixture: marshal params: %w", err)
	}
	var out T
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("fixture: unmarshal params: %w", err)
	}
	return &out, nil
}

// RangeRow is one row of an OrderedRangeTable fixture, keyed by string so
// tables can be embedded directly as YAML literals in test files.
type RangeRow struct {
	Lo    string `yaml:"lo"`
	Hi    string `yaml:"hi"`
	Value string `yaml:"value"`
}

// ExactRow is one row of an ExactMatchTable fixture.
type ExactRow struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// RangeTableDoc is a YAML document describing one OrderedRangeTable.
type RangeTableDoc struct {
	Name    string     `yaml:"name"`
	Default string     `yaml:"default"`
	Rows    []RangeRow `yaml:"rows"`
}

// ExactTableDoc is a YAML document describing one ExactMatchTable, keyed
// by text.
type ExactTableDoc struct {
	Name    string     `yaml:"name"`
	Default string     `yaml:"default"`
	Rows    []ExactRow `yaml:"rows"`
}

// ParseRangeTable decodes raw YAML into a RangeTableDoc and builds the
// corresponding table.OrderedRangeTable.
func ParseRangeTable(raw []byte) (string, *table.OrderedRangeTable, error) {
	var doc RangeTableDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return "", nil, fmt.Errorf("fixture: parse range table: %w", err)
	}
	entries := make([]table.RangeEntry, 0, len(doc.Rows))
	for i, row := range doc.Rows {
		lo, err := decimal.Parse(row.Lo)
		if err != nil {
			return "", nil, fmt.Errorf("fixture: row %d: %w", i, err)
		}
		hi, err := decimal.Parse(row.Hi)
		if err != nil {
			return "", nil, fmt.Errorf("fixture: row %d: %w", i, err)
		}
		v, err := decimal.Parse(row.Value)
		if err != nil {
			return "", nil, fmt.Errorf("fixture: row %d: %w", i, err)
		}
		entries = append(entries, table.RangeEntry{Lo: lo, Hi: hi, Value: value.FromDecimal(v)})
	}
	var def *value.Value
	if doc.Default != "" {
		d, err := decimal.Parse(doc.Default)
		if err != nil {
			return "", nil, fmt.Errorf("fixture: default: %w", err)
		}
		v := value.FromDecimal(d)
		def = &v
	}
	t, err := table.NewOrderedRangeTable(entries, def)
	if err != nil {
		return "", nil, err
	}
	return doc.Name, t, nil
}

// ParseExactTable decodes raw YAML into an ExactTableDoc and builds the
// corresponding text-keyed table.ExactMatchTable.
func ParseExactTable(raw []byte) (string, *table.ExactMatchTable, error) {
	var doc ExactTableDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return "", nil, fmt.Errorf("fixture: parse exact table: %w", err)
	}
	entries := make([]table.ExactEntry, 0, len(doc.Rows))
	for i, row := range doc.Rows {
		v, err := decimal.Parse(row.Value)
		if err != nil {
			return "", nil, fmt.Errorf("fixture: row %d: %w", i, err)
		}
		entries = append(entries, table.ExactEntry{Key: value.FromText(row.Key), Value: value.FromDecimal(v)})
	}
	var def *value.Value
	if doc.Default != "" {
		d, err := decimal.Parse(doc.Default)
		if err != nil {
			return "", nil, fmt.Errorf("fixture: default: %w", err)
		}
		v := value.FromDecimal(d)
		def = &v
	}
	t, err := table.NewExactMatchTable(entries, def)
	if err != nil {
		return "", nil, err
	}
	return doc.Name, t, nil
}

// BatchRow is one row of an evaluate-batch fixture: named inputs plus
// the expected decimal result (or ExpectError set, for a row that should
// fail).
type BatchRow struct {
	Inputs      map[string]any `yaml:"inputs"`
	Expect      string         `yaml:"expect"`
	ExpectError bool           `yaml:"expect_error"`
}

// ParseBatchRows decodes a YAML list of BatchRow fixtures.
func ParseBatchRows(raw []byte) ([]BatchRow, error) {
	var rows []BatchRow
	if err := yaml.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("fixture: parse batch rows: %w", err)
	}
	return rows, nil
}
