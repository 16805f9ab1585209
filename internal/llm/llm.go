package llm

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Part is one element of a multimodal prompt: either text or inline image bytes.
type Part struct {
	Text     string
	MIMEType string
	Data     []byte
}

// TextPart builds a text part.
func TextPart(text string) Part {
	return Part{Text: text}
}

// ImagePart builds an inline image part. An empty mime type defaults to image/jpeg.
func ImagePart(data []byte, mimeType string) Part {
	if strings.TrimSpace(mimeType) == "" {
		mimeType = "image/jpeg"
	}
	return Part{MIMEType: mimeType, Data: data}
}

// IsImage reports whether the part carries image bytes.
func (p Part) IsImage() bool {
	return len(p.Data) > 0
}

// StatusError is returned when a provider answers with a non-2xx status.
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// ReadStatusError decodes a provider failure body of the form {"error":{"message":...}}
// or {"message":...} into a StatusError.
func ReadStatusError(provider string, statusCode int, body io.Reader) *StatusError {
	raw, _ := io.ReadAll(io.LimitReader(body, 64<<10))
	var failure struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	msg := ""
	if err := json.Unmarshal(raw, &failure); err == nil {
		var nested struct {
			Message string `json:"message"`
		}
		if len(failure.Error) > 0 && json.Unmarshal(failure.Error, &nested) == nil && nested.Message != "" {
			msg = nested.Message
		} else if len(failure.Error) > 0 {
			var plain string
			if json.Unmarshal(failure.Error, &plain) == nil {
				msg = plain
			}
		}
		if msg == "" {
			msg = failure.Message
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
		if len(msg) > 300 {
			msg = msg[:300]
		}
	}
	return &StatusError{Provider: provider, StatusCode: statusCode, Message: msg}
}
