package transform

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net"
)

// ErrorKind classifies a failed transform.
type ErrorKind string

const (
	ErrorTimeout    ErrorKind = "Timeout"
	ErrorNetwork    ErrorKind = "NetworkFailure"
	ErrorDecode     ErrorKind = "DecodeFailure"
	ErrorRefusal    ErrorKind = "VendorRefusal"
	ErrorValidation ErrorKind = "ValidationGap"
)

var (
	// ErrMissingStyle is returned when neither a reference image nor a description is given.
	ErrMissingStyle = errors.New("transform: a reference image or a hairstyle description is required")
	// ErrMissingSubject is returned when no subject photo is given.
	ErrMissingSubject = errors.New("transform: a subject image is required")
	// ErrUnknownBackend is returned when the registry has no backend by that name.
	ErrUnknownBackend = errors.New("transform: unknown backend")
	// ErrNoImage signals a response without any image payload.
	ErrNoImage = errors.New("transform: response contained no image")
	// ErrMalformedImage signals an image payload that could not be decoded.
	ErrMalformedImage = errors.New("transform: malformed image payload")
	// ErrRefused signals a vendor refusal detected from the response text.
	ErrRefused = errors.New("transform: vendor refused the request")
)

// Classify maps an error onto the failure taxonomy.
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorTimeout
	}
	if errors.Is(err, ErrMissingStyle) || errors.Is(err, ErrMissingSubject) {
		return ErrorValidation
	}
	if errors.Is(err, ErrRefused) {
		return ErrorRefusal
	}
	if errors.Is(err, ErrNoImage) || errors.Is(err, ErrMalformedImage) {
		return ErrorDecode
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var b64Err base64.CorruptInputError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.As(err, &b64Err) {
		return ErrorDecode
	}
	return ErrorNetwork
}
