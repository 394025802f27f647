// Package client provides the CGPClient facade over the DRS core: it
// wires authentication, base URLs, and the upload pipeline together for
// callers and the CLI.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/nhsdigital/cgp-client/auth"
	"github.com/nhsdigital/cgp-client/config"
	"github.com/nhsdigital/cgp-client/drs"
	"github.com/nhsdigital/cgp-client/drs/upload"
)

// CGPClient is a client for the Clinical Genomics Platform APIs in the
// NHS APIM.
type CGPClient struct {
	APIHost string
	APIName string
	Auth    auth.Provider
	DryRun  bool

	// OutputDir is the per-run audit directory, empty when auditing is
	// not configured.
	OutputDir string

	DRS      *drs.Client
	Uploader *upload.Uploader
	Logger   *slog.Logger
}

// New builds a CGPClient from config. When cfg.OutputDir is set, a
// fresh uuid-named subdirectory is created for this run's audit
// records.
func New(cfg *config.Config, logger *slog.Logger) (*CGPClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	c := &CGPClient{
		APIHost: cfg.APIHost,
		APIName: cfg.APIName,
		DryRun:  cfg.DryRun,
		Logger:  logger,
		Auth:    auth.NewProvider(cfg.APIHost, cfg.APIKey, cfg.PrivateKeyPEM, cfg.APIMKID, logger),
	}

	if cfg.OutputDir != "" {
		c.OutputDir = filepath.Join(cfg.OutputDir, uuid.NewString())
		if err := os.MkdirAll(c.OutputDir, 0755); err != nil {
			return nil, fmt.Errorf("creating output directory %s: %w", c.OutputDir, err)
		}
		logger.Info("created output directory", "path", c.OutputDir)
	}

	drsClient, err := drs.NewClient(cfg.APIBaseURL(), c.Headers,
		drs.WithLogger(logger),
		drs.WithDryRun(cfg.DryRun),
		drs.WithOverrideAPIBaseURL(cfg.OverrideAPIBaseURL),
	)
	if err != nil {
		return nil, err
	}
	c.DRS = drsClient
	c.Uploader = upload.NewUploader(drsClient, upload.WithLogger(logger))
	return c, nil
}

// APIBaseURL returns the base URL for the overall API.
func (c *CGPClient) APIBaseURL() string {
	if c.APIName != "" {
		return c.APIHost + "/" + c.APIName
	}
	return c.APIHost
}

// Headers fetches the HTTP headers necessary to interact with NHS APIM.
func (c *CGPClient) Headers() (map[string]string, error) {
	return c.Auth.Headers(c.APIHost)
}

// ResolveObject fetches the DRS object for a drs:// or https:// URL, or
// a bare object id.
func (c *CGPClient) ResolveObject(urlOrID string, expectedHash string) (*drs.DrsObject, error) {
	if !strings.Contains(urlOrID, "://") {
		obj, err := c.DRS.GetObject(urlOrID)
		if err != nil {
			return nil, err
		}
		if expectedHash != "" {
			if err := obj.VerifyChecksum(expectedHash); err != nil {
				return nil, err
			}
		}
		return obj, nil
	}
	return c.DRS.ResolveObject(urlOrID, expectedHash)
}

// DownloadFile streams the object's data to disk.
func (c *CGPClient) DownloadFile(drsURL string, opts drs.DownloadOptions) (*drs.DownloadResult, error) {
	return c.DRS.DownloadObjectData(drsURL, opts)
}

// UploadFiles uploads the files using the DRS upload protocol and
// writes audit records for the registered objects when an output
// directory is configured. mimeType applies to every file when
// non-empty; otherwise types are guessed per file.
func (c *CGPClient) UploadFiles(ctx context.Context, paths []string, mimeType string) ([]*drs.DrsObject, error) {
	files := make([]upload.FileSpec, 0, len(paths))
	for _, path := range paths {
		files = append(files, upload.FileSpec{Path: path, MimeType: mimeType})
	}

	objects, err := c.Uploader.UploadFiles(ctx, files)
	if err != nil {
		return nil, err
	}

	for _, obj := range objects {
		if err := c.writeAuditRecord(obj); err != nil {
			return nil, err
		}
	}
	return objects, nil
}

// writeAuditRecord keeps an on-disk copy of each registered DRS object
// for later inspection.
func (c *CGPClient) writeAuditRecord(obj *drs.DrsObject) error {
	if c.OutputDir == "" {
		return nil
	}
	data, err := sonic.ConfigDefault.MarshalIndent(obj, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling audit record for %s: %w", obj.ID, err)
	}
	path := filepath.Join(c.OutputDir, fmt.Sprintf("drs_object_%s.json", obj.ID))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing audit record %s: %w", path, err)
	}
	c.Logger.Info("wrote audit record", "path", path)
	return nil
}
