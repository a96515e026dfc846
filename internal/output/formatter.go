// Package output provides formatters for displaying domain inventories
// in various formats (json, table, yaml, prometheus).
package output

import (
	"fmt"

	"github.com/jbweber/hypermon/internal/inventory"
)

// Format represents an output format type.
type Format string

const (
	// FormatJSON is a JSON format for machine consumption.
	FormatJSON Format = "json"
	// FormatTable is a human-readable table format.
	FormatTable Format = "table"
	// FormatYAML is a YAML document stream, one document per domain.
	FormatYAML Format = "yaml"
	// FormatPrometheus is the Prometheus text exposition format.
	FormatPrometheus Format = "prometheus"
)

// Formatter formats domain inventories for output.
type Formatter interface {
	// FormatDomainList formats a complete inventory snapshot.
	FormatDomainList(records []inventory.DomainRecord) (string, error)
}

// Options contains options for formatting output.
type Options struct {
	// Format specifies the output format.
	Format Format
	// NoHeaders omits headers in table format.
	NoHeaders bool
	// ShowInterfaces adds the interface columns in table format.
	ShowInterfaces bool
	// Styled enables terminal styling in table format.
	Styled bool
}

// NewFormatter creates a new Formatter based on the specified format.
func NewFormatter(opts Options) (Formatter, error) {
	switch opts.Format {
	case FormatJSON, "":
		return &JSONFormatter{}, nil
	case FormatTable:
		return &TableFormatter{
			NoHeaders:      opts.NoHeaders,
			ShowInterfaces: opts.ShowInterfaces,
			Styled:         opts.Styled,
		}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	case FormatPrometheus:
		return &PrometheusFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: json, table, yaml, prometheus)", opts.Format)
	}
}

// ValidateFormat checks if a format string is valid.
func ValidateFormat(format string) error {
	f := Format(format)
	switch f {
	case FormatJSON, FormatTable, FormatYAML, FormatPrometheus:
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid formats: json, table, yaml, prometheus)", format)
	}
}
