package auth

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	clientAssertionType = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"
	assertionLifetime   = 5 * time.Minute
	tokenTimeout        = 30 * time.Second
)

// Token is the NHS APIM OAuth token response. The numeric fields come
// back as strings on the wire.
type Token struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
	TokenType   string `json:"token_type"`
	IssuedAt    string `json:"issued_at"`
}

// OAuth implements the NHS APIM signed-JWT client-credentials flow:
// sign a short-lived RS512 client assertion with the registered private
// key, exchange it for a bearer token, and cache the token until it
// expires.
type OAuth struct {
	APIKey        string
	PrivateKeyPEM string // path to the PEM file
	KID           string

	HTTP   *http.Client
	Logger *slog.Logger

	now func() time.Time

	mu    sync.Mutex
	token *Token
}

func NewOAuth(apiKey, privateKeyPEM, kid string, logger *slog.Logger) *OAuth {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	rc := retryablehttp.NewClient()
	rc.RetryMax = 0
	rc.Logger = nil
	hc := rc.StandardClient()
	hc.Timeout = tokenTimeout
	return &OAuth{
		APIKey:        apiKey,
		PrivateKeyPEM: privateKeyPEM,
		KID:           kid,
		HTTP:          hc,
		Logger:        logger,
		now:           time.Now,
	}
}

func (o *OAuth) Headers(apiHost string) (map[string]string, error) {
	token, err := o.accessToken(apiHost)
	if err != nil {
		return nil, err
	}
	return map[string]string{"Authorization": "Bearer " + token}, nil
}

func (o *OAuth) accessToken(apiHost string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.token == nil || o.tokenExpired() {
		o.Logger.Info("requesting new OAuth token")
		token, err := o.requestAccessToken(apiHost)
		if err != nil {
			return "", err
		}
		o.token = token
	}
	return o.token.AccessToken, nil
}

func (o *OAuth) tokenExpired() bool {
	if o.token == nil {
		return true
	}
	issuedAt, err := strconv.ParseInt(o.token.IssuedAt, 10, 64)
	if err != nil {
		return true
	}
	expiresIn, err := strconv.ParseInt(o.token.ExpiresIn, 10, 64)
	if err != nil {
		return true
	}
	return o.now().Unix() > issuedAt+expiresIn
}

func (o *OAuth) requestAccessToken(apiHost string) (*Token, error) {
	endpoint := fmt.Sprintf("https://%s/oauth2/token", apiHost)
	o.Logger.Info("requesting OAuth token", "endpoint", endpoint)

	assertion, err := o.signedAssertion(endpoint)
	if err != nil {
		return nil, err
	}

	form := url.Values{
		"grant_type":            {"client_credentials"},
		"client_assertion_type": {clientAssertionType},
		"client_assertion":      {assertion},
	}

	resp, err := o.HTTP.Post(endpoint, "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("requesting OAuth token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading OAuth response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to get OAuth token, status code: %d response: %s", resp.StatusCode, body)
	}

	token := &Token{}
	if err := sonic.ConfigFastest.Unmarshal(body, token); err != nil {
		return nil, fmt.Errorf("parsing OAuth token: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("OAuth response missing access_token")
	}
	o.Logger.Info("got successful response from OAuth server")
	return token, nil
}

// signedAssertion creates the RS512 client assertion for the token
// exchange, keyed by the registered KID.
func (o *OAuth) signedAssertion(oauthEndpoint string) (string, error) {
	pemBytes, err := os.ReadFile(o.PrivateKeyPEM)
	if err != nil {
		return "", fmt.Errorf("reading private key %s: %w", o.PrivateKeyPEM, err)
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pemBytes)
	if err != nil {
		return "", fmt.Errorf("parsing private key %s: %w", o.PrivateKeyPEM, err)
	}

	o.Logger.Debug("creating client assertion", "kid", o.KID)
	token := jwt.NewWithClaims(jwt.SigningMethodRS512, jwt.MapClaims{
		"sub": o.APIKey,
		"iss": o.APIKey,
		"jti": uuid.NewString(),
		"aud": oauthEndpoint,
		"exp": o.now().Add(assertionLifetime).Unix(),
	})
	token.Header["kid"] = o.KID

	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("signing client assertion: %w", err)
	}
	return signed, nil
}
