package upload

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/nhsdigital/cgp-client/drs"
)

// Genomics file formats the standard MIME tables don't know about.
var genomicMimeTypes = map[string]string{
	".vcf":   "text/vcf",
	".cram":  "application/cram",
	".bam":   "application/bam",
	".fastq": "text/fastq",
	".ora":   "text/fastq",
	".fasta": "text/fasta",
	".tbi":   "application/index",
	".csi":   "application/index",
	".crai":  "application/index",
	".bai":   "application/index",
}

// GuessMimeType guesses a file's MIME type from its extension. The type
// is required downstream for htsget endpoint selection, so an
// unguessable extension is a hard error rather than an octet-stream
// default. Gzipped files are typed by their inner extension, so
// reads.fastq.gz is text/fastq.
func GuessMimeType(path string) (string, error) {
	name := filepath.Base(path)
	if strings.HasSuffix(name, ".gz") {
		name = strings.TrimSuffix(name, ".gz")
	}
	ext := strings.ToLower(filepath.Ext(name))
	if mimeType, ok := genomicMimeTypes[ext]; ok {
		return mimeType, nil
	}
	if mimeType := mime.TypeByExtension(ext); mimeType != "" {
		// strip any charset parameter the stdlib table appends
		if base, _, err := mime.ParseMediaType(mimeType); err == nil {
			return base, nil
		}
		return mimeType, nil
	}
	return "", drs.NewError(drs.KindLocalIO, fmt.Sprintf("unable to guess MIME type for file: %s", path), nil)
}
