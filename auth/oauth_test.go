package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestKey(t *testing.T) (string, *rsa.PublicKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "test.pem")
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(block), 0o600))
	return path, &key.PublicKey
}

func TestOAuthHeaders(t *testing.T) {
	pemPath, publicKey := writeTestKey(t)

	var requests atomic.Int64
	var server *httptest.Server
	server = httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		require.Equal(t, "/oauth2/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, clientAssertionType, r.PostForm.Get("client_assertion_type"))

		// the client assertion must verify against the registered key
		assertion, err := jwt.Parse(r.PostForm.Get("client_assertion"),
			func(token *jwt.Token) (any, error) { return publicKey, nil },
			jwt.WithValidMethods([]string{"RS512"}))
		require.NoError(t, err)
		assert.Equal(t, "test-api-key", assertion.Claims.(jwt.MapClaims)["sub"])
		assert.Equal(t, "test-api-key", assertion.Claims.(jwt.MapClaims)["iss"])
		assert.Equal(t, server.URL+"/oauth2/token", assertion.Claims.(jwt.MapClaims)["aud"])
		assert.NotEmpty(t, assertion.Claims.(jwt.MapClaims)["jti"])
		assert.Equal(t, "test-kid", assertion.Header["kid"])

		fmt.Fprintf(w, `{"access_token":"granted-token","expires_in":"599","token_type":"Bearer","issued_at":"%d"}`,
			time.Now().Unix())
	}))
	defer server.Close()

	o := NewOAuth("test-api-key", pemPath, "test-kid", nil)
	o.HTTP = server.Client()
	apiHost := strings.TrimPrefix(server.URL, "https://")

	headers, err := o.Headers(apiHost)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Authorization": "Bearer granted-token"}, headers)

	// the cached token is reused while valid
	_, err = o.Headers(apiHost)
	require.NoError(t, err)
	assert.Equal(t, int64(1), requests.Load())
}

func TestOAuthTokenRefreshAfterExpiry(t *testing.T) {
	pemPath, _ := writeTestKey(t)

	var requests atomic.Int64
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := requests.Add(1)
		fmt.Fprintf(w, `{"access_token":"token-%d","expires_in":"599","token_type":"Bearer","issued_at":"%d"}`,
			n, time.Now().Unix())
	}))
	defer server.Close()

	o := NewOAuth("test-api-key", pemPath, "test-kid", nil)
	o.HTTP = server.Client()
	apiHost := strings.TrimPrefix(server.URL, "https://")

	headers, err := o.Headers(apiHost)
	require.NoError(t, err)
	assert.Equal(t, "Bearer token-1", headers["Authorization"])

	// jump past issued_at + expires_in
	o.now = func() time.Time { return time.Now().Add(time.Hour) }

	headers, err = o.Headers(apiHost)
	require.NoError(t, err)
	assert.Equal(t, "Bearer token-2", headers["Authorization"])
	assert.Equal(t, int64(2), requests.Load())
}

func TestOAuthServerRejection(t *testing.T) {
	pemPath, _ := writeTestKey(t)

	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	o := NewOAuth("test-api-key", pemPath, "test-kid", nil)
	o.HTTP = server.Client()

	_, err := o.Headers(strings.TrimPrefix(server.URL, "https://"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestOAuthNoRetries(t *testing.T) {
	pemPath, _ := writeTestKey(t)

	var requests atomic.Int64
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.Error(w, `{"error":"temporarily_unavailable"}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	// keep the default retryablehttp stack, only teach it the test
	// server's certificate, so the retry policy itself is under test
	o := NewOAuth("test-api-key", pemPath, "test-kid", nil)
	rt, ok := o.HTTP.Transport.(*retryablehttp.RoundTripper)
	require.True(t, ok)
	rt.Client.HTTPClient.Transport = server.Client().Transport

	_, err := o.Headers(strings.TrimPrefix(server.URL, "https://"))
	require.Error(t, err)
	assert.Equal(t, int64(1), requests.Load(), "a failed token fetch must not be retried")
}

func TestOAuthMissingKeyFile(t *testing.T) {
	o := NewOAuth("test-api-key", "/does/not/exist.pem", "test-kid", nil)
	_, err := o.Headers("api.service.nhs.uk")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/does/not/exist.pem")
}

func TestTokenExpired(t *testing.T) {
	o := &OAuth{now: time.Now}
	assert.True(t, o.tokenExpired(), "no token counts as expired")

	issued := time.Now().Unix()
	o.token = &Token{AccessToken: "t", IssuedAt: fmt.Sprint(issued), ExpiresIn: "599"}
	assert.False(t, o.tokenExpired())

	o.token.IssuedAt = fmt.Sprint(issued - 600)
	assert.True(t, o.tokenExpired())

	// unparseable wire fields force a refresh
	o.token = &Token{AccessToken: "t", IssuedAt: "not-a-number", ExpiresIn: "599"}
	assert.True(t, o.tokenExpired())
}
