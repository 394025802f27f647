package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	assert.IsType(t, Sandbox{}, NewProvider("sandbox.api.service.nhs.uk", "key", "", "", nil))
	// sandbox wins even when full OAuth material is supplied
	assert.IsType(t, Sandbox{}, NewProvider("sandbox.api.service.nhs.uk", "key", "key.pem", "kid", nil))
	assert.IsType(t, &OAuth{}, NewProvider("api.service.nhs.uk", "key", "key.pem", "kid", nil))
	assert.IsType(t, APIKey{}, NewProvider("api.service.nhs.uk", "key", "", "", nil))
	// partial OAuth material falls back to API key auth
	assert.IsType(t, APIKey{}, NewProvider("api.service.nhs.uk", "key", "key.pem", "", nil))
	assert.IsType(t, NoAuth{}, NewProvider("api.service.nhs.uk", "", "", "", nil))
}

func TestAPIKeyHeaders(t *testing.T) {
	a := APIKey{Key: "secret"}

	headers, err := a.Headers("api.service.nhs.uk/genomic-data-access")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"apikey": "secret"}, headers)

	headers, err = a.Headers("internal-dev.api.service.nhs.uk")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"apikey": "secret"}, headers)

	headers, err = a.Headers("drs.example.org")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"X-API-Key": "secret"}, headers)
}

func TestNoAuthHeaders(t *testing.T) {
	headers, err := NoAuth{}.Headers("api.service.nhs.uk")
	require.NoError(t, err)
	assert.Empty(t, headers)

	headers, err = Sandbox{}.Headers("sandbox.api.service.nhs.uk")
	require.NoError(t, err)
	assert.Empty(t, headers)
}
