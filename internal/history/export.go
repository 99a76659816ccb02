package history

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/intuit/internal/model"
)

// Export is the document written by the export command.
type Export struct {
	ExportDate time.Time            `json:"exportDate" yaml:"exportDate"`
	History    []model.HistoryEntry `json:"history" yaml:"history"`
	Stats      model.Aggregate      `json:"stats" yaml:"stats"`
}

// Format is an export encoding.
type Format string

// Supported export formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name. Empty means json; "yml" is accepted
// for yaml.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// ExportFileName returns the default file name for an export taken at t.
func ExportFileName(t time.Time, f Format) string {
	return fmt.Sprintf("intuit-history-%s.%s", t.UTC().Format("2006-01-02"), f)
}

// WriteExport encodes exp to w.
func WriteExport(w io.Writer, exp Export, f Format) error {
	if exp.History == nil {
		exp.History = []model.HistoryEntry{}
	}
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(exp); err != nil {
			return fmt.Errorf("failed to encode json export: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(exp); err != nil {
			return fmt.Errorf("failed to encode yaml export: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to flush yaml export: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}

// ReadExport decodes an export written by WriteExport.
func ReadExport(r io.Reader, f Format) (Export, error) {
	var exp Export
	switch f {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&exp); err != nil {
			return Export{}, fmt.Errorf("failed to decode json export: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&exp); err != nil {
			return Export{}, fmt.Errorf("failed to decode yaml export: %w", err)
		}
	default:
		return Export{}, fmt.Errorf("unknown export format %q", f)
	}
	return exp, nil
}
