package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhsdigital/cgp-client/drs"
	"github.com/nhsdigital/cgp-client/drs/hash"
)

func validResponseObject() *ResponseObject {
	return &ResponseObject{
		ID:       "d6237181-65f8-474d-ba6b-a530b5678c38",
		SelfURI:  "drs://api.service.nhs.uk/genomic-data-access/d6237181-65f8-474d-ba6b-a530b5678c38",
		Name:     "reads.cram",
		Size:     1351,
		MimeType: "application/cram",
		Checksums: []hash.Checksum{
			{Type: hash.ChecksumTypeMD5, Checksum: "0556530eb3d73a27581ce7b2ca4dc3e7"},
		},
		UploadMethods: []Method{
			{
				Type:      MethodS3,
				AccessURL: drs.AccessURL{URL: "s3://cgp-upload-bucket/d6237181/reads.cram"},
				Region:    "eu-west-2",
				Credentials: map[string]string{
					CredentialAccessKeyID:     "AKIATEST",
					CredentialSecretAccessKey: "secret",
					CredentialSessionToken:    "token",
				},
			},
		},
	}
}

func TestResponseObjectValidate(t *testing.T) {
	assert.NoError(t, validResponseObject().Validate())

	noID := validResponseObject()
	noID.ID = ""
	assert.True(t, drs.IsKind(noID.Validate(), drs.KindSchema))

	noChecksums := validResponseObject()
	noChecksums.Checksums = nil
	assert.True(t, drs.IsKind(noChecksums.Validate(), drs.KindSchema))
}

func TestGetUploadMethod(t *testing.T) {
	obj := validResponseObject()
	method, err := obj.GetUploadMethod(MethodS3)
	require.NoError(t, err)
	assert.Equal(t, "s3://cgp-upload-bucket/d6237181/reads.cram", method.AccessURL.URL)

	_, err = obj.GetUploadMethod(MethodHTTPS)
	assert.True(t, drs.IsKind(err, drs.KindSchema))

	none := validResponseObject()
	none.UploadMethods = nil
	_, err = none.GetUploadMethod(MethodS3)
	assert.True(t, drs.IsKind(err, drs.KindSchema))

	// two methods of the same type violate the negotiation contract
	twice := validResponseObject()
	twice.UploadMethods = append(twice.UploadMethods, twice.UploadMethods[0])
	_, err = twice.GetUploadMethod(MethodS3)
	assert.True(t, drs.IsKind(err, drs.KindSchema))
}

func TestToDrsObject(t *testing.T) {
	obj := validResponseObject()
	method := &obj.UploadMethods[0]

	got, err := obj.ToDrsObject(method, "api.service.nhs.uk/genomic-data-access")
	require.NoError(t, err)
	assert.Equal(t, obj.ID, got.ID)
	assert.Equal(t, obj.SelfURI, got.SelfURI)
	assert.Equal(t, obj.Checksums, got.Checksums)

	// application/cram maps to an htsget reads track
	require.Len(t, got.AccessMethods, 2)
	assert.Equal(t, drs.AccessMethodS3, got.AccessMethods[0].Type)
	assert.Equal(t, "s3", got.AccessMethods[0].AccessID)
	assert.Equal(t, "eu-west-2", got.AccessMethods[0].Region)
	assert.Equal(t, drs.AccessMethodHtsget, got.AccessMethods[1].Type)
	assert.Equal(t,
		"https://api.service.nhs.uk/genomic-data-access/ga4gh/htsget/v1.3/reads/"+obj.ID,
		got.AccessMethods[1].AccessURL.URL)
}

func TestToDrsObjectNoHtsgetTrack(t *testing.T) {
	obj := validResponseObject()
	obj.MimeType = "application/index"
	method := &obj.UploadMethods[0]

	got, err := obj.ToDrsObject(method, "api.service.nhs.uk/genomic-data-access")
	require.NoError(t, err)
	require.Len(t, got.AccessMethods, 1)
	assert.Equal(t, drs.AccessMethodS3, got.AccessMethods[0].Type)
}

func TestToDrsObjectRejectsNonS3(t *testing.T) {
	obj := validResponseObject()
	method := &Method{Type: MethodHTTPS}

	_, err := obj.ToDrsObject(method, "api.service.nhs.uk/genomic-data-access")
	assert.True(t, drs.IsKind(err, drs.KindUnsupportedMethod))
}
