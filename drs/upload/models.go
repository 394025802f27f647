package upload

import (
	"fmt"

	"github.com/nhsdigital/cgp-client/drs"
	"github.com/nhsdigital/cgp-client/drs/hash"
	"github.com/nhsdigital/cgp-client/htsget"
)

// The upload-request protocol is the platform's extension to GA4GH DRS:
// the client declares the files it wants to store, the server answers
// with per-file upload methods carrying short-lived credentials.

type MethodType string

const (
	MethodS3    MethodType = "s3"
	MethodHTTPS MethodType = "https"
)

// Credential keys an S3 upload method must supply.
const (
	CredentialAccessKeyID     = "AccessKeyId"
	CredentialSecretAccessKey = "SecretAccessKey"
	CredentialSessionToken    = "SessionToken"
)

type Method struct {
	Type        MethodType        `json:"type"`
	AccessURL   drs.AccessURL     `json:"access_url"`
	Region      string            `json:"region,omitempty"`
	Credentials map[string]string `json:"credentials"`
}

type RequestObject struct {
	Name        string          `json:"name"`
	Size        int64           `json:"size"`
	MimeType    string          `json:"mime_type"`
	Checksums   []hash.Checksum `json:"checksums"`
	Description string          `json:"description,omitempty"`
	Aliases     []string        `json:"aliases,omitempty"`
}

type Request struct {
	Objects []RequestObject `json:"objects"`
}

type ResponseObject struct {
	ID            string          `json:"id"`
	SelfURI       string          `json:"self_uri"`
	Name          string          `json:"name"`
	Size          int64           `json:"size"`
	MimeType      string          `json:"mime_type"`
	Checksums     []hash.Checksum `json:"checksums"`
	Description   string          `json:"description,omitempty"`
	Aliases       []string        `json:"aliases,omitempty"`
	UploadMethods []Method        `json:"upload_methods,omitempty"`
}

type Response struct {
	Objects map[string]ResponseObject `json:"objects"`
}

// Validate checks the response object satisfies the contract before any
// bytes are pushed against its credentials.
func (o *ResponseObject) Validate() error {
	if o.ID == "" || o.SelfURI == "" || o.Name == "" {
		return drs.NewError(drs.KindSchema, "upload response object missing required fields", nil)
	}
	if len(o.Checksums) == 0 {
		return drs.NewError(drs.KindSchema, fmt.Sprintf("upload response object %s has no checksums", o.Name), nil)
	}
	return nil
}

// GetUploadMethod returns the single upload method of the given type.
// Zero or multiple matches violate the negotiation contract.
func (o *ResponseObject) GetUploadMethod(methodType MethodType) (*Method, error) {
	if len(o.UploadMethods) == 0 {
		return nil, drs.NewError(drs.KindSchema, fmt.Sprintf("no upload_methods found for %s", o.Name), nil)
	}
	var matches []*Method
	for i := range o.UploadMethods {
		if o.UploadMethods[i].Type == methodType {
			matches = append(matches, &o.UploadMethods[i])
		}
	}
	if len(matches) != 1 {
		return nil, drs.NewError(drs.KindSchema,
			fmt.Sprintf("expected exactly 1 %s upload_method for %s, found %d", methodType, o.Name, len(matches)), nil)
	}
	return matches[0], nil
}

// ToDrsObject converts the negotiated response into the final DRS
// object record to register with the server. The S3 access method used
// for the push is always included; an htsget access method is added
// when the MIME type maps to an htsget track.
func (o *ResponseObject) ToDrsObject(method *Method, apiBaseURL string) (*drs.DrsObject, error) {
	if method.Type != MethodS3 {
		return nil, drs.NewError(drs.KindUnsupportedMethod,
			fmt.Sprintf("unsupported upload_method type: %s", method.Type), nil)
	}

	accessMethods := []drs.AccessMethod{
		{
			Type:      drs.AccessMethodS3,
			AccessID:  "s3",
			AccessURL: &drs.AccessURL{URL: method.AccessURL.URL, Headers: method.AccessURL.Headers},
			Region:    method.Region,
		},
	}

	if endpoint, ok := htsget.EndpointForMimeType(o.MimeType); ok {
		accessMethods = append(accessMethods, drs.AccessMethod{
			Type: drs.AccessMethodHtsget,
			AccessURL: &drs.AccessURL{
				URL: fmt.Sprintf("%s/%s/%s", htsget.BaseURL(apiBaseURL), endpoint, o.ID),
			},
		})
	}

	return &drs.DrsObject{
		ID:            o.ID,
		SelfURI:       o.SelfURI,
		Name:          o.Name,
		Size:          o.Size,
		MimeType:      o.MimeType,
		Checksums:     o.Checksums,
		Description:   o.Description,
		Aliases:       o.Aliases,
		AccessMethods: accessMethods,
	}, nil
}
