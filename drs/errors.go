package drs

import (
	"errors"
	"fmt"
)

// Kind classifies client errors so callers can react to the failure
// mode rather than string-matching messages.
type Kind int

const (
	KindUnknown Kind = iota
	// KindURLFormat is a malformed or unsupported DRS/HTTPS URL.
	KindURLFormat
	// KindNetwork is an HTTP failure; StatusCode and Body carry the
	// server's response when one was received.
	KindNetwork
	// KindSchema is a response or object violating the DRS schema.
	KindSchema
	// KindChecksumMismatch is a failed MD5 verification.
	KindChecksumMismatch
	// KindUnsupportedMethod is an access or upload method the client
	// cannot use.
	KindUnsupportedMethod
	// KindCredentials is missing or unusable authentication material.
	KindCredentials
	// KindLocalIO is a failure reading or writing local files.
	KindLocalIO
)

func (k Kind) String() string {
	switch k {
	case KindURLFormat:
		return "url_format"
	case KindNetwork:
		return "network"
	case KindSchema:
		return "schema"
	case KindChecksumMismatch:
		return "checksum_mismatch"
	case KindUnsupportedMethod:
		return "unsupported_method"
	case KindCredentials:
		return "credentials"
	case KindLocalIO:
		return "local_io"
	default:
		return "unknown"
	}
}

// Error is the client's error type. StatusCode and Body are only set
// for network errors that received a response.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status code: %d response: %s", msg, e.StatusCode, e.Body)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same kind, so callers can use
// errors.Is(err, &Error{Kind: KindNetwork}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// IsKind reports whether err is a client error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ce *Error
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Kind == kind
}

// NewError wraps err as a client error of the given kind.
func NewError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// NewNetworkError records a non-2xx response with its status and body.
func NewNetworkError(message string, statusCode int, body string) *Error {
	return &Error{Kind: KindNetwork, Message: message, StatusCode: statusCode, Body: body}
}

func newURLFormatError(format string, args ...any) *Error {
	return &Error{Kind: KindURLFormat, Message: fmt.Sprintf(format, args...)}
}

func newNetworkError(message string, statusCode int, body string) *Error {
	return NewNetworkError(message, statusCode, body)
}

func newSchemaError(message string, err error) *Error {
	return &Error{Kind: KindSchema, Message: message, Err: err}
}

func newChecksumMismatchError(format string, args ...any) *Error {
	return &Error{Kind: KindChecksumMismatch, Message: fmt.Sprintf(format, args...)}
}

func newUnsupportedMethodError(format string, args ...any) *Error {
	return &Error{Kind: KindUnsupportedMethod, Message: fmt.Sprintf(format, args...)}
}
