package hash

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMD5SumFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reads.fastq")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))

	sum, err := MD5SumFile(path, 8192)
	require.NoError(t, err)
	// md5("data")
	assert.Equal(t, "8d777f385d3dfec8815d20f7496026dc", sum)
}

func TestMD5SumFileLargerThanChunk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.bin")
	payload := make([]byte, 3*1024)
	for i := range payload {
		payload[i] = byte(i % 251)
	}
	require.NoError(t, os.WriteFile(path, payload, 0o644))

	chunked, err := MD5SumFile(path, 128)
	require.NoError(t, err)
	whole, err := MD5SumFile(path, len(payload)+1)
	require.NoError(t, err)
	assert.Equal(t, whole, chunked)
}

func TestMD5SumFileMissing(t *testing.T) {
	_, err := MD5SumFile(filepath.Join(t.TempDir(), "nope"), 8192)
	assert.Error(t, err)
}

func TestChecksumTypeIsValid(t *testing.T) {
	assert.True(t, ChecksumTypeMD5.IsValid())
	assert.True(t, ChecksumTypeSHA256.IsValid())
	assert.False(t, ChecksumType("rot13").IsValid())
}
