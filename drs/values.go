package drs

import "time"

const (
	// RequestTimeout bounds every DRS API call.
	RequestTimeout = 30 * time.Second
	// ChunkSize is the buffer size for streaming downloads and file
	// hashing.
	ChunkSize = 8192

	DrsAPIVersion = "v1.4"
	DrsScheme     = "drs://"
	HTTPSScheme   = "https://"
)
