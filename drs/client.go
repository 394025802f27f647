package drs

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/maypok86/otter"
)

// HeadersFunc supplies the HTTP headers to attach to every request.
// How they are produced (API key, OAuth, none) is the auth package's
// concern, not this client's.
type HeadersFunc func() (map[string]string, error)

const objectCacheCapacity = 256

// Client talks to a GA4GH DRS v1.4 server.
type Client struct {
	// APIBaseURL is host plus API name, e.g. "api.service.nhs.uk/genomic-data-access"
	APIBaseURL string
	// OverrideAPIBaseURL rewrites hosts in server-reported URLs to
	// APIBaseURL, for sandbox/test environments.
	OverrideAPIBaseURL bool
	DryRun             bool

	headers HeadersFunc
	http    *http.Client
	stream  *http.Client
	logger  *slog.Logger
	cache   otter.Cache[string, *DrsObject]
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
		c.stream = hc
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithDryRun(dryRun bool) Option {
	return func(c *Client) { c.DryRun = dryRun }
}

func WithOverrideAPIBaseURL(override bool) Option {
	return func(c *Client) { c.OverrideAPIBaseURL = override }
}

func NewClient(apiBaseURL string, headers HeadersFunc, opts ...Option) (*Client, error) {
	if apiBaseURL == "" {
		return nil, newURLFormatError("api base URL is required")
	}
	if headers == nil {
		headers = func() (map[string]string, error) { return nil, nil }
	}

	cache, err := otter.MustBuilder[string, *DrsObject](objectCacheCapacity).Build()
	if err != nil {
		return nil, fmt.Errorf("create object cache: %w", err)
	}

	cl := &Client{
		APIBaseURL: apiBaseURL,
		headers:    headers,
		cache:      cache,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(cl)
	}
	if cl.http == nil {
		cl.http = newHTTPClient()
	}
	if cl.stream == nil {
		cl.stream = newStreamClient()
	}
	return cl, nil
}

// newHTTPClient returns the default transport for API calls. Retries
// are disabled: every failure propagates immediately to the caller.
func newHTTPClient() *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 0
	rc.Logger = nil
	hc := rc.StandardClient()
	hc.Timeout = RequestTimeout
	return hc
}

// newStreamClient returns the transport for object data transfers.
// http.Client.Timeout bounds the whole exchange including the body
// read, which would abort any download taking longer than the timeout,
// so the deadline here covers only the time to response headers.
func newStreamClient() *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 0
	rc.Logger = nil
	if t, ok := rc.HTTPClient.Transport.(*http.Transport); ok {
		t.ResponseHeaderTimeout = RequestTimeout
	}
	return rc.StandardClient()
}

// BaseURL returns the DRS base URL for this client's API.
func (cl *Client) BaseURL() string {
	return BaseURL(cl.APIBaseURL)
}

// NormaliseURL maps drs:// URLs to their HTTPS form and applies the
// host override, when configured, to HTTPS URLs.
func (cl *Client) NormaliseURL(objectURL string) (string, error) {
	if strings.HasPrefix(objectURL, "drs:") {
		mapped, err := MapDrsToHTTPSURL(objectURL)
		if err != nil {
			return "", err
		}
		objectURL = mapped
	}
	if !strings.HasPrefix(objectURL, "https:") {
		return "", newURLFormatError("invalid DRS URL format: %s", objectURL)
	}
	if cl.OverrideAPIBaseURL {
		return OverrideHost(objectURL, cl.APIBaseURL)
	}
	return objectURL, nil
}

// GetObjectFromURL fetches and validates the DRS object at the given
// HTTPS URL. Results are memoised per client so one logical operation
// never fetches the same object's metadata twice.
func (cl *Client) GetObjectFromURL(url string) (*DrsObject, error) {
	if obj, ok := cl.cache.Get(url); ok {
		cl.logger.Debug("using cached DRS object", "url", url)
		return obj, nil
	}

	body, err := cl.get(url)
	if err != nil {
		return nil, err
	}

	obj := &DrsObject{}
	if err := sonic.ConfigFastest.Unmarshal(body, obj); err != nil {
		return nil, newSchemaError(fmt.Sprintf("parsing DRS object from %s", url), err)
	}
	if err := obj.Validate(); err != nil {
		return nil, err
	}
	cl.cache.Set(url, obj)
	return obj, nil
}

// GetObject fetches the DRS object with the given id from the server.
func (cl *Client) GetObject(objectID string) (*DrsObject, error) {
	return cl.GetObjectFromURL(fmt.Sprintf("%s/objects/%s", cl.BaseURL(), objectID))
}

// ResolveObject normalises the input URL, fetches the object, and when
// expectedHash is non-empty verifies it against the declared MD5
// checksums. On mismatch the object is not returned.
func (cl *Client) ResolveObject(objectURL string, expectedHash string) (*DrsObject, error) {
	resolved, err := cl.NormaliseURL(objectURL)
	if err != nil {
		return nil, err
	}
	cl.logger.Info("resolved DRS URL", "input", objectURL, "url", resolved)

	obj, err := cl.GetObjectFromURL(resolved)
	if err != nil {
		return nil, err
	}
	if expectedHash != "" {
		if err := obj.VerifyChecksum(expectedHash); err != nil {
			cl.logger.Error("checksum verification failed", "object", obj.ID)
			return nil, err
		}
	}
	return obj, nil
}

// SelectAccessURL picks the first access method of the requested type
// and returns a fetchable URL for it. Direct access_urls are returned
// as-is (with the host override applied when configured); access_id
// references are exchanged with the server for a short-lived URL.
func (cl *Client) SelectAccessURL(obj *DrsObject, accessType AccessMethodType) (*AccessURL, error) {
	for i := range obj.AccessMethods {
		method := &obj.AccessMethods[i]
		if method.Type != accessType {
			continue
		}
		if method.AccessURL != nil {
			if cl.OverrideAPIBaseURL {
				overridden, err := OverrideHost(method.AccessURL.URL, cl.APIBaseURL)
				if err == nil {
					return &AccessURL{URL: overridden, Headers: method.AccessURL.Headers}, nil
				}
				// presigned object-store URLs have no ga4gh path, leave them alone
			}
			return method.AccessURL, nil
		}
		return cl.exchangeAccessID(obj.ID, method.AccessID)
	}
	return nil, newUnsupportedMethodError("no %s access method on DRS object %s", accessType, obj.ID)
}

// exchangeAccessID trades an opaque access_id for a short-lived URL.
func (cl *Client) exchangeAccessID(objectID string, accessID string) (*AccessURL, error) {
	url := fmt.Sprintf("%s/objects/%s/access/%s", cl.BaseURL(), objectID, accessID)
	body, err := cl.get(url)
	if err != nil {
		return nil, err
	}
	accessURL := &AccessURL{}
	if err := sonic.ConfigFastest.Unmarshal(body, accessURL); err != nil {
		return nil, newSchemaError(fmt.Sprintf("parsing access URL from %s", url), err)
	}
	if accessURL.URL == "" {
		return nil, newSchemaError(fmt.Sprintf("empty access URL returned from %s", url), nil)
	}
	cl.logger.Info("retrieved access URL", "object", objectID, "access_id", accessID)
	return accessURL, nil
}

// FindDirectAccessURL resolves the object and returns the first direct
// access_url of the given type, or nil if the object declares none.
// Absence is a normal outcome here, not an error.
func (cl *Client) FindDirectAccessURL(objectURL string, accessType AccessMethodType) (*AccessURL, error) {
	obj, err := cl.ResolveObject(objectURL, "")
	if err != nil {
		return nil, err
	}
	for i := range obj.AccessMethods {
		method := &obj.AccessMethods[i]
		if method.AccessURL == nil {
			continue
		}
		if accessType == "" || method.Type == accessType {
			return method.AccessURL, nil
		}
	}
	return nil, nil
}

// PostObject registers a DRS object with the server. In dry-run mode
// the network call is skipped and the post reports success.
func (cl *Client) PostObject(obj *DrsObject) error {
	endpoint := fmt.Sprintf("%s/objects", cl.BaseURL())
	cl.logger.Info("posting DRS object", "object", obj.ID, "endpoint", endpoint)

	if cl.DryRun {
		cl.logger.Info("dry run, skipping posting DRS object", "object", obj.ID)
		return nil
	}

	payload, err := sonic.ConfigDefault.Marshal(obj)
	if err != nil {
		return newSchemaError("marshalling DRS object", err)
	}

	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return NewError(KindNetwork, "building request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if err := cl.setHeaders(req); err != nil {
		return err
	}

	resp, err := cl.http.Do(req)
	if err != nil {
		return NewError(KindNetwork, fmt.Sprintf("posting DRS object to %s", endpoint), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return newNetworkError("error posting DRS object", resp.StatusCode, string(body))
	}
	cl.logger.Info("successfully posted DRS object", "object", obj.ID)
	return nil
}

// Do performs an authenticated request with this client's transport.
// Exported for the upload subpackage, which shares the auth capability.
func (cl *Client) Do(req *http.Request) (*http.Response, error) {
	if err := cl.setHeaders(req); err != nil {
		return nil, err
	}
	return cl.http.Do(req)
}

func (cl *Client) setHeaders(req *http.Request) error {
	headers, err := cl.headers()
	if err != nil {
		return NewError(KindCredentials, "fetching auth headers", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return nil
}

func (cl *Client) get(url string) ([]byte, error) {
	cl.logger.Info("requesting endpoint", "url", url)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, NewError(KindNetwork, "building request", err)
	}
	if err := cl.setHeaders(req); err != nil {
		return nil, err
	}

	resp, err := cl.http.Do(req)
	if err != nil {
		return nil, NewError(KindNetwork, fmt.Sprintf("fetching %s", url), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewError(KindNetwork, fmt.Sprintf("reading response from %s", url), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		cl.logger.Error("failed to fetch from endpoint", "url", url, "status", resp.StatusCode)
		return nil, newNetworkError(fmt.Sprintf("error fetching %s", url), resp.StatusCode, string(body))
	}
	return body, nil
}
