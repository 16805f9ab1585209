package transform

import (
	"context"
	"strings"

	"sentraSalon/internal/prompts"
)

// Kind tags the variant held by a Result.
type Kind string

const (
	KindSuccess  Kind = "success"
	KindTextOnly Kind = "text_only"
	KindFailure  Kind = "failure"
)

// Request is one hairstyle transformation. At least one of ReferenceImage or
// Description must be present.
type Request struct {
	SubjectImage   []byte
	SubjectMIME    string
	ReferenceImage []byte
	ReferenceMIME  string
	Description    string
	Options        prompts.Options
}

// HasReference reports whether a reference hairstyle image is attached.
func (r Request) HasReference() bool {
	return len(r.ReferenceImage) > 0
}

// HasDescription reports whether a text description is attached.
func (r Request) HasDescription() bool {
	return strings.TrimSpace(r.Description) != ""
}

// Validate enforces the only precondition checked before a vendor call.
func (r Request) Validate() error {
	if len(r.SubjectImage) == 0 {
		return ErrMissingSubject
	}
	if !r.HasReference() && !r.HasDescription() {
		return ErrMissingStyle
	}
	return nil
}

// Result is the uniform outcome of a backend call: an image, an explanation or a failure.
type Result struct {
	Kind        Kind      `json:"status"`
	Image       []byte    `json:"-"`
	MIMEType    string    `json:"mime_type,omitempty"`
	Explanation string    `json:"explanation,omitempty"`
	ErrorKind   ErrorKind `json:"error_kind,omitempty"`
	Message     string    `json:"message,omitempty"`
}

// Success wraps generated image bytes.
func Success(image []byte, mimeType string) Result {
	if strings.TrimSpace(mimeType) == "" {
		mimeType = "image/png"
	}
	return Result{Kind: KindSuccess, Image: image, MIMEType: mimeType}
}

// TextOnly wraps prose returned instead of pixels.
func TextOnly(explanation string) Result {
	return Result{Kind: KindTextOnly, Explanation: explanation}
}

// Failure builds a failed result.
func Failure(kind ErrorKind, message string) Result {
	return Result{Kind: KindFailure, ErrorKind: kind, Message: message}
}

// FromError converts any error into a Failure using the error taxonomy.
func FromError(err error) Result {
	if err == nil {
		return Failure(ErrorNetwork, "unknown error")
	}
	return Failure(Classify(err), err.Error())
}

// OK reports whether the result carries an image.
func (r Result) OK() bool {
	return r.Kind == KindSuccess && len(r.Image) > 0
}

// Backend is implemented by every vendor adapter. Transform never returns an
// error: vendor and network problems are folded into a Failure result.
type Backend interface {
	Name() string
	Transform(ctx context.Context, req Request) Result
}
