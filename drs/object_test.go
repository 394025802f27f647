package drs

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/nhsdigital/cgp-client/drs/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validObject() *DrsObject {
	return &DrsObject{
		ID:      "d6237181-65f8-474d-ba6b-a530b5678c38",
		SelfURI: "drs://api.service.nhs.uk/genomic-data-access/d6237181-65f8-474d-ba6b-a530b5678c38",
		Name:    "reads.cram",
		Size:    1351,
		Checksums: []hash.Checksum{
			{Type: hash.ChecksumTypeMD5, Checksum: "0556530eb3d73a27581ce7b2ca4dc3e7"},
		},
		AccessMethods: []AccessMethod{
			{
				Type:      AccessMethodS3,
				AccessURL: &AccessURL{URL: "https://s3.eu-west-2.amazonaws.com/cgp-test-bucket/173cd57a"},
				AccessID:  "173cd57a-969f-49f9-8754-1e22e218cdbf",
				Region:    "eu-west-2",
			},
			{
				Type:      AccessMethodHtsget,
				AccessURL: &AccessURL{URL: "https://api.service.nhs.uk/genomic-data-access/ga4gh/htsget/v1.3/reads/173cd57a"},
			},
		},
	}
}

func TestObjectValidate(t *testing.T) {
	require.NoError(t, validObject().Validate())
}

func TestObjectValidateFailures(t *testing.T) {
	missingID := validObject()
	missingID.ID = ""
	assert.True(t, IsKind(missingID.Validate(), KindSchema))

	noChecksums := validObject()
	noChecksums.Checksums = nil
	assert.True(t, IsKind(noChecksums.Validate(), KindSchema))

	noAccess := validObject()
	noAccess.AccessMethods = nil
	assert.True(t, IsKind(noAccess.Validate(), KindSchema))

	badMethod := validObject()
	badMethod.AccessMethods = []AccessMethod{{Type: AccessMethodS3}}
	assert.True(t, IsKind(badMethod.Validate(), KindSchema))
}

func TestAccessMethodValidate(t *testing.T) {
	assert.Error(t, (&AccessMethod{Type: AccessMethodS3}).Validate())
	assert.NoError(t, (&AccessMethod{Type: AccessMethodS3, AccessID: "token"}).Validate())
	assert.NoError(t, (&AccessMethod{Type: AccessMethodS3, AccessURL: &AccessURL{URL: "https://x"}}).Validate())
}

func TestVerifyChecksum(t *testing.T) {
	obj := validObject()
	assert.NoError(t, obj.VerifyChecksum("0556530eb3d73a27581ce7b2ca4dc3e7"))

	err := obj.VerifyChecksum("wrong")
	assert.True(t, IsKind(err, KindChecksumMismatch))

	// non-md5 checksums are never consulted
	obj.Checksums = []hash.Checksum{{Type: hash.ChecksumTypeSHA256, Checksum: "abc"}}
	assert.True(t, IsKind(obj.VerifyChecksum("abc"), KindChecksumMismatch))
}

func TestMD5Checksum(t *testing.T) {
	obj := validObject()
	md5sum, ok := obj.MD5Checksum()
	require.True(t, ok)
	assert.Equal(t, "0556530eb3d73a27581ce7b2ca4dc3e7", md5sum)

	obj.Checksums = []hash.Checksum{{Type: hash.ChecksumTypeSHA256, Checksum: "abc"}}
	_, ok = obj.MD5Checksum()
	assert.False(t, ok)
}

func TestObjectJSONRoundTrip(t *testing.T) {
	data, err := sonic.ConfigFastest.Marshal(validObject())
	require.NoError(t, err)

	parsed := &DrsObject{}
	require.NoError(t, sonic.ConfigFastest.Unmarshal(data, parsed))
	require.NoError(t, parsed.Validate())
	assert.Equal(t, validObject(), parsed)
}
