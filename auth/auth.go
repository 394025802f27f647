// Package auth provides the authentication strategies for NHS APIM.
// The DRS core depends only on the Provider capability, never on a
// concrete strategy.
package auth

import (
	"log/slog"
	"strings"
)

// APIMBaseURL is the production NHS APIM host. API key requests to APIM
// hosts use the "apikey" header; other hosts use "X-API-Key".
const APIMBaseURL = "api.service.nhs.uk"

// Provider returns the HTTP headers to attach to every request.
type Provider interface {
	Headers(apiHost string) (map[string]string, error)
}

// NoAuth sends no authentication headers.
type NoAuth struct{}

func (NoAuth) Headers(apiHost string) (map[string]string, error) {
	return map[string]string{}, nil
}

// Sandbox skips authentication for sandbox environments.
type Sandbox struct{}

func (Sandbox) Headers(apiHost string) (map[string]string, error) {
	return map[string]string{}, nil
}

// APIKey authenticates with a static API key header.
type APIKey struct {
	Key string
}

func (a APIKey) Headers(apiHost string) (map[string]string, error) {
	if strings.Contains(apiHost, APIMBaseURL) {
		return map[string]string{"apikey": a.Key}, nil
	}
	return map[string]string{"X-API-Key": a.Key}, nil
}

// NewProvider picks a strategy from the available credentials:
// sandbox hosts get no auth, a key plus signing material gets the
// OAuth signed-JWT flow, a bare key gets API-key headers.
func NewProvider(apiHost, apiKey, privateKeyPEM, apimKID string, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	switch {
	case strings.HasPrefix(apiHost, "sandbox."):
		logger.Debug("skipping authentication for sandbox environment")
		return Sandbox{}
	case apiKey != "" && privateKeyPEM != "" && apimKID != "":
		logger.Debug("using signed JWT authentication")
		return NewOAuth(apiKey, privateKeyPEM, apimKID, logger)
	case apiKey != "":
		logger.Debug("using API key authentication")
		return APIKey{Key: apiKey}
	default:
		logger.Debug("no API authentication")
		return NoAuth{}
	}
}
