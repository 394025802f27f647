// Package htsget holds the small amount of htsget knowledge the client
// needs: where the platform serves htsget, and which MIME types map to
// which htsget track endpoints.
package htsget

import "fmt"

const APIVersion = "v1.3"

// BaseURL returns the base HTTPS URL for the htsget server
func BaseURL(apiBaseURL string) string {
	return fmt.Sprintf("https://%s/ga4gh/htsget/%s", apiBaseURL, APIVersion)
}

// EndpointForMimeType maps a file MIME type to an htsget track
// endpoint. Unmapped types simply have no htsget representation.
func EndpointForMimeType(mimeType string) (string, bool) {
	switch mimeType {
	case "application/cram", "application/bam":
		return "reads", true
	case "text/vcf":
		return "variants", true
	default:
		return "", false
	}
}
