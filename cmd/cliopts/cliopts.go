// Package cliopts holds the flag plumbing shared by the subcommands:
// every command can point at a config file and override the connection
// settings on the command line.
package cliopts

import (
	"log/slog"

	"github.com/nhsdigital/cgp-client/cgplog"
	"github.com/nhsdigital/cgp-client/client"
	"github.com/nhsdigital/cgp-client/config"
	"github.com/spf13/cobra"
)

type Options struct {
	ConfigPath string
	APIHost    string
	APIName    string
	APIKey     string
	Override   bool
	DryRun     bool
	OutputDir  string
	Verbose    bool
	Debug      bool
}

// AddFlags registers the shared connection flags on a command.
func (o *Options) AddFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&o.ConfigPath, "config", "", "path to config file (default ~/.cgp-client/config.yaml)")
	flags.StringVar(&o.APIHost, "api-host", "", "API host, e.g. api.service.nhs.uk")
	flags.StringVar(&o.APIName, "api-name", "", "APIM API name, e.g. genomic-data-access")
	flags.StringVar(&o.APIKey, "api-key", "", "API key")
	flags.BoolVar(&o.Override, "override-api-base-url", false, "rewrite server-reported hosts to the API host")
	flags.BoolVar(&o.DryRun, "dry-run", false, "skip writes to remote services")
	flags.StringVar(&o.OutputDir, "output-dir", "", "directory for audit records of registered objects")
	flags.BoolVarP(&o.Verbose, "verbose", "v", false, "log progress to stderr")
	flags.BoolVar(&o.Debug, "debug", false, "log debug detail to stderr")
}

// LoadConfig merges the config file with any command line overrides.
func (o *Options) LoadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if o.ConfigPath != "" {
		cfg, err = config.Load(o.ConfigPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}

	if o.APIHost != "" {
		cfg.APIHost = o.APIHost
	}
	if o.APIName != "" {
		cfg.APIName = o.APIName
	}
	if o.APIKey != "" {
		cfg.APIKey = o.APIKey
	}
	if o.Override {
		cfg.OverrideAPIBaseURL = true
	}
	if o.DryRun {
		cfg.DryRun = true
	}
	if o.OutputDir != "" {
		cfg.OutputDir = o.OutputDir
	}
	if o.Verbose {
		cfg.Verbose = true
	}
	if o.Debug {
		cfg.Debug = true
	}
	return cfg, nil
}

// NewClient builds the logger and the CGPClient from the merged config.
func (o *Options) NewClient() (*client.CGPClient, *slog.Logger, error) {
	cfg, err := o.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := cgplog.NewLogger(cfg.LogFile, cfg.Verbose || cfg.Debug, cfg.Debug)
	if err != nil {
		return nil, nil, err
	}
	c, err := client.New(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return c, logger, nil
}
