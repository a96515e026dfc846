package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/hypermon/internal/inventory"
	"github.com/jbweber/hypermon/internal/libvirt"
	"github.com/jbweber/hypermon/internal/output"
)

// Config holds the collection settings. Every field can also be set on the
// command line; flags given explicitly win over the file.
type Config struct {
	URI           string        `yaml:"uri"`
	Output        string        `yaml:"output,omitempty"`
	All           bool          `yaml:"all,omitempty"`        // Include defined but inactive domains
	Interfaces    bool          `yaml:"interfaces,omitempty"` // Collect interface addresses and counters
	AddressSource string        `yaml:"address_source,omitempty"`
	Parallel      int           `yaml:"parallel,omitempty"`
	Timeout       time.Duration `yaml:"timeout,omitempty"` // e.g. "5s"
	NoHeaders     bool          `yaml:"no_headers,omitempty"`
	ReadOnly      *bool         `yaml:"read_only,omitempty"` // Pointer to distinguish unset vs false
}

// Default returns the configuration used when no file is given. The URI is
// left empty; it must come from the command line.
func Default() *Config {
	c := &Config{}
	c.Normalize()
	return c
}

// Normalize sanitizes user input and fills in defaults.
// This is called automatically by LoadFromFile before validation.
func (c *Config) Normalize() {
	c.URI = strings.TrimSpace(c.URI)
	c.Output = strings.ToLower(strings.TrimSpace(c.Output))
	c.AddressSource = strings.ToLower(strings.TrimSpace(c.AddressSource))

	if c.Output == "" {
		c.Output = string(output.FormatJSON)
	}
	if c.AddressSource == "" {
		c.AddressSource = string(inventory.SourceLease)
	}
	if c.Parallel == 0 {
		c.Parallel = 1
	}
	if c.Timeout == 0 {
		c.Timeout = libvirt.DefaultTimeout
	}
	if c.ReadOnly == nil {
		readOnly := true
		c.ReadOnly = &readOnly
	}
}

// IsReadOnly reports whether the connection should be opened read-only.
// Unset means read-only.
func (c *Config) IsReadOnly() bool {
	return c.ReadOnly == nil || *c.ReadOnly
}

// Validate checks the configuration for errors.
// Does not contact the hypervisor - only checks config structure.
func (c *Config) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("uri is required (set -c/--connect or uri in the config file)")
	}
	if _, err := libvirt.ParseURI(c.URI); err != nil {
		return fmt.Errorf("uri: %w", err)
	}

	if err := output.ValidateFormat(c.Output); err != nil {
		return fmt.Errorf("output: %w", err)
	}

	if _, err := inventory.ParseAddressSource(c.AddressSource); err != nil {
		return fmt.Errorf("address_source: %w", err)
	}

	if c.Parallel < 1 {
		return fmt.Errorf("parallel must be >= 1, got %d", c.Parallel)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %s", c.Timeout)
	}

	return nil
}

// LoadFromFile loads a configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Normalize user input before validation
	config.Normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}
