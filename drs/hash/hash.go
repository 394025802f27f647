package hash

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// ChecksumType represents the digest method used to create the checksum
type ChecksumType string

const (
	ChecksumTypeMD5    ChecksumType = "md5"
	ChecksumTypeSHA1   ChecksumType = "sha1"
	ChecksumTypeSHA256 ChecksumType = "sha256"
	ChecksumTypeSHA512 ChecksumType = "sha512"
	ChecksumTypeETag   ChecksumType = "etag"
	ChecksumTypeCRC32C ChecksumType = "crc32c"
)

func (ct ChecksumType) String() string {
	return string(ct)
}

// IsValid checks if the checksum type is a known value
func (ct ChecksumType) IsValid() bool {
	switch ct {
	case ChecksumTypeMD5, ChecksumTypeSHA1, ChecksumTypeSHA256,
		ChecksumTypeSHA512, ChecksumTypeETag, ChecksumTypeCRC32C:
		return true
	default:
		return false
	}
}

type Checksum struct {
	Checksum string       `json:"checksum"`
	Type     ChecksumType `json:"type"`
}

// MD5SumFile computes the MD5 digest of the file at path, reading in
// fixed-size chunks so large genomic files never sit in memory whole.
func MD5SumFile(path string, chunkSize int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := md5.New()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
