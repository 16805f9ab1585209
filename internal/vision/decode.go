package vision

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"sentraSalon/internal/transform"
)

// DecodeGenAI turns a Gemini SDK response into a transform result: the first
// inline image wins, otherwise any text becomes a TextOnly explanation.
func DecodeGenAI(resp *genai.GenerateContentResponse) transform.Result {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return transform.TextOnly(fmt.Sprintf("prompt blocked: %s", resp.PromptFeedback.BlockReason))
		}
		return transform.FromError(fmt.Errorf("gemini: %w", transform.ErrNoImage))
	}

	candidate := resp.Candidates[0]
	var texts []string
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return transform.Success(part.InlineData.Data, imageMIME(part.InlineData.Data, part.InlineData.MIMEType))
			}
			if text := strings.TrimSpace(part.Text); text != "" && !part.Thought {
				texts = append(texts, text)
			}
		}
	}

	if len(texts) > 0 {
		return transform.TextOnly(strings.Join(texts, "\n\n"))
	}
	if candidate.FinishReason != "" && candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		return transform.Failure(transform.ErrorDecode, fmt.Sprintf("gemini: generation stopped (%s)", candidate.FinishReason))
	}
	return transform.FromError(fmt.Errorf("gemini: %w", transform.ErrNoImage))
}

// DecodeDataURL parses data:image/<mime>;base64,<payload>.
func DecodeDataURL(raw string) ([]byte, string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "data:") {
		return nil, "", fmt.Errorf("not a data URL: %w", transform.ErrMalformedImage)
	}
	header, payload, ok := strings.Cut(raw[len("data:"):], ",")
	if !ok {
		return nil, "", fmt.Errorf("data URL without payload: %w", transform.ErrMalformedImage)
	}
	mimeType, params, _ := strings.Cut(header, ";")
	if !strings.Contains(params, "base64") {
		return nil, "", fmt.Errorf("data URL is not base64: %w", transform.ErrMalformedImage)
	}
	data, err := decodeBase64(payload)
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty data URL: %w", transform.ErrMalformedImage)
	}
	return data, imageMIME(data, mimeType), nil
}

// IsDataURL reports whether s looks like an inline image data URL.
func IsDataURL(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "data:image/")
}

func decodeBase64(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	data, err := base64.StdEncoding.DecodeString(payload)
	if err == nil {
		return data, nil
	}
	if alt, altErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); altErr == nil {
		return alt, nil
	}
	return nil, fmt.Errorf("decode base64 image: %w", err)
}

// imageMIME prefers the sniffed type and falls back to the declared one.
func imageMIME(data []byte, declared string) string {
	if sniffed := http.DetectContentType(data); strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	if declared = strings.TrimSpace(declared); strings.HasPrefix(declared, "image/") {
		return declared
	}
	return "image/png"
}

// detectMime returns the image type for an upload, defaulting to JPEG.
func detectMime(data []byte, provided string) string {
	mime := strings.TrimSpace(provided)
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	if !strings.Contains(mime, "image/") {
		return "image/jpeg"
	}
	return mime
}
