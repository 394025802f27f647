package drs

import (
	"github.com/nhsdigital/cgp-client/drs/hash"
)

// Definitions from:
// https://ga4gh.github.io/data-repository-service-schemas/preview/release/drs-1.4.0/docs/

type AccessMethodType string

const (
	AccessMethodS3     AccessMethodType = "s3"
	AccessMethodGS     AccessMethodType = "gs"
	AccessMethodFTP    AccessMethodType = "ftp"
	AccessMethodGSIFTP AccessMethodType = "gsiftp"
	AccessMethodGlobus AccessMethodType = "globus"
	AccessMethodHtsget AccessMethodType = "htsget"
	AccessMethodHTTPS  AccessMethodType = "https"
	AccessMethodFile   AccessMethodType = "file"
)

type AccessURL struct {
	URL     string   `json:"url"`
	Headers []string `json:"headers,omitempty"`
}

type Authorizations struct {
	DrsObjectID        string   `json:"drs_object_id,omitempty"`
	SupportedTypes     []string `json:"supported_types,omitempty"`
	PassportAuthIssuer []string `json:"passport_auth_issuers,omitempty"`
	BearerAuthIssuers  []string `json:"bearer_auth_issuers,omitempty"`
}

type AccessMethod struct {
	Type           AccessMethodType `json:"type"`
	AccessURL      *AccessURL       `json:"access_url,omitempty"`
	AccessID       string           `json:"access_id,omitempty"`
	Region         string           `json:"region,omitempty"`
	Authorizations *Authorizations  `json:"authorizations,omitempty"`
}

// Validate enforces the DRS invariant that an access method carries at
// least one of access_id or access_url.
func (m *AccessMethod) Validate() error {
	if m.AccessID == "" && m.AccessURL == nil {
		return newSchemaError("access_method must have at least one of access_id or access_url set", nil)
	}
	return nil
}

type ContentsObject struct {
	Name     string           `json:"name"`
	ID       string           `json:"id,omitempty"`
	DrsURI   []string         `json:"drs_uri,omitempty"`
	Contents []ContentsObject `json:"contents,omitempty"`
}

type DrsObject struct {
	ID            string           `json:"id"`
	Name          string           `json:"name,omitempty"`
	SelfURI       string           `json:"self_uri"`
	Size          int64            `json:"size"`
	CreatedTime   string           `json:"created_time,omitempty"` // required by DRS, but set by the server
	UpdatedTime   string           `json:"updated_time,omitempty"`
	Version       string           `json:"version,omitempty"`
	MimeType      string           `json:"mime_type,omitempty"`
	Checksums     []hash.Checksum  `json:"checksums"`
	AccessMethods []AccessMethod   `json:"access_methods"`
	Contents      []ContentsObject `json:"contents,omitempty"`
	Description   string           `json:"description,omitempty"`
	Aliases       []string         `json:"aliases,omitempty"`
}

// Validate checks the invariants a fully resolved object must satisfy.
// Violations are schema errors, distinct from HTTP failures.
func (o *DrsObject) Validate() error {
	if o.ID == "" {
		return newSchemaError("DRS object missing required field: id", nil)
	}
	if o.SelfURI == "" {
		return newSchemaError("DRS object missing required field: self_uri", nil)
	}
	if o.Size < 0 {
		return newSchemaError("DRS object size must be non-negative", nil)
	}
	if len(o.Checksums) == 0 {
		return newSchemaError("DRS object must have at least one checksum", nil)
	}
	if len(o.AccessMethods) == 0 {
		return newSchemaError("DRS object must have at least one access method", nil)
	}
	for i := range o.AccessMethods {
		if err := o.AccessMethods[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// MD5Checksum returns the first declared MD5 checksum, if any. Other
// checksum types are carried but never verified by this client.
func (o *DrsObject) MD5Checksum() (string, bool) {
	for _, c := range o.Checksums {
		if c.Type == hash.ChecksumTypeMD5 {
			return c.Checksum, true
		}
	}
	return "", false
}

// VerifyChecksum accepts if any declared MD5 entry equals expected.
func (o *DrsObject) VerifyChecksum(expected string) error {
	matched := false
	for _, c := range o.Checksums {
		if c.Type == hash.ChecksumTypeMD5 && c.Checksum == expected {
			matched = true
			break
		}
	}
	if !matched {
		return newChecksumMismatchError("no md5 checksum on DRS object %s matches expected hash %s", o.ID, expected)
	}
	return nil
}
