package output

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/hypermon/internal/inventory"
)

// YAMLFormatter renders one YAML document per domain.
type YAMLFormatter struct{}

// FormatDomainList formats the inventory as a YAML document stream.
func (f *YAMLFormatter) FormatDomainList(records []inventory.DomainRecord) (string, error) {
	// yaml.v3 refuses to close a stream that never started.
	if len(records) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return "", fmt.Errorf("failed to marshal domain %s to YAML: %w", rec.Name, err)
		}
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to finish YAML stream: %w", err)
	}

	return buf.String(), nil
}
