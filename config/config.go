// Package config loads the client configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configFileName = "config.yaml"

// Config holds the settings for talking to the Genomic Data Access
// platform. Everything except APIHost is optional.
type Config struct {
	// APIHost is the platform host, e.g. "api.service.nhs.uk" or
	// "sandbox.api.service.nhs.uk".
	APIHost string `yaml:"api_host"`
	// APIName is the APIM API name appended to the host for the base
	// URL, e.g. "genomic-data-access".
	APIName string `yaml:"api_name"`

	APIKey        string `yaml:"api_key"`
	PrivateKeyPEM string `yaml:"private_key_pem"`
	APIMKID       string `yaml:"apim_kid"`

	// OverrideAPIBaseURL rewrites hosts in server-reported URLs to
	// APIHost, for sandbox and test environments.
	OverrideAPIBaseURL bool `yaml:"override_api_base_url"`
	DryRun             bool `yaml:"dry_run"`

	// OutputDir, when set, receives a per-run directory of audit
	// records for registered DRS objects.
	OutputDir string `yaml:"output_dir"`

	LogFile string `yaml:"log_file"`
	Verbose bool   `yaml:"verbose"`
	Debug   bool   `yaml:"debug"`
}

// APIBaseURL composes host and API name; in APIM the base URL is
// host plus API name.
func (c *Config) APIBaseURL() string {
	if c.APIName != "" {
		return c.APIHost + "/" + c.APIName
	}
	return c.APIHost
}

func (c *Config) Validate() error {
	if c.APIHost == "" {
		return fmt.Errorf("config: api_host is required")
	}
	return nil
}

// DefaultPath returns ~/.cgp-client/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".cgp-client", configFileName), nil
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads the default config file if it exists, otherwise
// returns an empty config for callers that configure via flags.
func LoadDefault() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Config{}, nil
	}
	return Load(path)
}
