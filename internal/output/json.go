package output

import (
	"encoding/json"
	"fmt"

	"github.com/jbweber/hypermon/internal/inventory"
)

// JSONFormatter renders the inventory as an indented JSON array.
type JSONFormatter struct{}

// FormatDomainList formats the inventory as JSON. An empty inventory is [].
func (f *JSONFormatter) FormatDomainList(records []inventory.DomainRecord) (string, error) {
	if records == nil {
		records = []inventory.DomainRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal domains to JSON: %w", err)
	}

	return string(data) + "\n", nil
}
