package drs

import (
	"fmt"
	"strings"
)

// BaseURL returns the base HTTPS URL for the DRS server
func BaseURL(apiBaseURL string) string {
	return fmt.Sprintf("https://%s/ga4gh/drs/%s", apiBaseURL, DrsAPIVersion)
}

// MapDrsToHTTPSURL maps a DRS URL to the corresponding HTTPS URL.
//
//	e.g.       drs://api.service.nhs.uk/genomic-data-access/1234
//	maps to: https://api.service.nhs.uk/genomic-data-access/ga4gh/drs/v1.4/objects/1234
func MapDrsToHTTPSURL(drsURL string) (string, error) {
	if !strings.HasPrefix(drsURL, DrsScheme) {
		return "", newURLFormatError("invalid DRS URL: %s", drsURL)
	}
	parts := strings.Split(drsURL, "/")
	if len(parts) != 5 {
		return "", newURLFormatError("unable to parse DRS URL: %s", drsURL)
	}
	host, apiName, objectID := parts[2], parts[3], parts[4]
	if host == "" || apiName == "" || objectID == "" {
		return "", newURLFormatError("unable to parse DRS URL: %s", drsURL)
	}
	return fmt.Sprintf("%s/objects/%s", BaseURL(host+"/"+apiName), objectID), nil
}

// MapHTTPSToDrsURL maps an HTTPS URL back to its DRS form.
//
//	e.g.    https://api.service.nhs.uk/genomic-data-access/ga4gh/drs/v1.4/objects/1234
//	maps to:  drs://api.service.nhs.uk/genomic-data-access/1234
func MapHTTPSToDrsURL(httpsURL string) (string, error) {
	if !strings.HasPrefix(httpsURL, HTTPSScheme) {
		return "", newURLFormatError("invalid HTTPS URL: %s", httpsURL)
	}
	parts := strings.Split(httpsURL, "/")
	if len(parts) != 9 {
		return "", newURLFormatError("unable to parse HTTPS DRS URL: %s", httpsURL)
	}
	host, apiName, objectID := parts[2], parts[3], parts[8]
	if parts[4] != "ga4gh" || parts[5] != "drs" || parts[6] != DrsAPIVersion || parts[7] != "objects" {
		return "", newURLFormatError("unable to parse HTTPS DRS URL: %s", httpsURL)
	}
	if host == "" || apiName == "" || objectID == "" {
		return "", newURLFormatError("unable to parse HTTPS DRS URL: %s", httpsURL)
	}
	return fmt.Sprintf("%s%s/%s/%s", DrsScheme, host, apiName, objectID), nil
}

// OverrideHost rewrites the host portion of a resolved ga4gh URL to the
// supplied host, used for sandbox and test environments where the
// server's self-reported URLs point at production.
func OverrideHost(url string, host string) (string, error) {
	_, path, found := strings.Cut(url, "/ga4gh/")
	if !found {
		return "", newURLFormatError("cannot override host, not a ga4gh URL: %s", url)
	}
	return fmt.Sprintf("https://%s/ga4gh/%s", host, path), nil
}
