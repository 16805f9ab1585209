package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"sentraSalon/internal/llm"
	"sentraSalon/internal/prompts"
	"sentraSalon/internal/transform"
)

// NanoBananaConfig describes the OpenAI-compatible endpoint. BaseURL is required.
type NanoBananaConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// multimodalCompleter is satisfied by llm.ChatClient.
type multimodalCompleter interface {
	Complete(ctx context.Context, items []llm.ContentItem, temperature float64, maxTokens int) (json.RawMessage, error)
}

// NanoBananaBackend posts a chat-completions request with inline images and
// expects a data URL back.
type NanoBananaBackend struct {
	client   multimodalCompleter
	analyzer *Analyzer
}

// NewNanoBananaBackend wires the backend. It fails when no base URL is configured.
func NewNanoBananaBackend(cfg NanoBananaConfig, analyzer *Analyzer) (*NanoBananaBackend, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("vision: nanobanana base URL not configured")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultImageModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client := llm.NewChatClient("nanobanana", cfg.BaseURL, cfg.APIKey, model, timeout)
	return &NanoBananaBackend{client: client, analyzer: analyzer}, nil
}

func (b *NanoBananaBackend) Name() string { return "nanobanana" }

// Transform implements transform.Backend.
func (b *NanoBananaBackend) Transform(ctx context.Context, req transform.Request) transform.Result {
	if err := req.Validate(); err != nil {
		return transform.FromError(err)
	}

	var parts []llm.Part
	if req.HasReference() {
		prompt := prompts.TryOnPrompt(req.Options)
		if b.analyzer != nil {
			analysis := b.analyzer.Analyze(ctx, req.ReferenceImage, req.ReferenceMIME)
			prompt = prompts.WithAnalysis(prompt, analysis.Description)
		}
		parts = []llm.Part{
			llm.TextPart(prompt),
			llm.TextPart(prompts.SourceLabel),
			llm.ImagePart(req.SubjectImage, detectMime(req.SubjectImage, req.SubjectMIME)),
			llm.TextPart(prompts.TargetLabel),
			llm.ImagePart(req.ReferenceImage, detectMime(req.ReferenceImage, req.ReferenceMIME)),
		}
	} else {
		parts = []llm.Part{
			llm.TextPart(prompts.TextPrompt(req.Description, req.Options)),
			llm.ImagePart(req.SubjectImage, detectMime(req.SubjectImage, req.SubjectMIME)),
		}
	}

	raw, err := b.client.Complete(ctx, llm.ContentFromParts(parts), 0.3, 1000)
	if err != nil {
		return transform.FromError(fmt.Errorf("nanobanana: %w", err))
	}
	return DecodeChatContent(raw)
}

// DecodeChatContent interprets choices[0].message.content from a chat-completions
// reply: a data URL string, or an array scanned for data URLs. Plain text is TextOnly.
func DecodeChatContent(raw json.RawMessage) transform.Result {
	if len(raw) == 0 || string(raw) == "null" {
		return transform.FromError(fmt.Errorf("nanobanana: %w", transform.ErrNoImage))
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return fromChatText(text)
	}

	var items []struct {
		Type     string `json:"type"`
		Text     string `json:"text"`
		Image    any    `json:"image"`
		ImageURL struct {
			URL string `json:"url"`
		} `json:"image_url"`
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return transform.FromError(fmt.Errorf("nanobanana: decode content: %w", err))
	}

	var texts []string
	for _, item := range items {
		for _, candidate := range []string{item.ImageURL.URL, imageField(item.Image)} {
			if IsDataURL(candidate) {
				data, mimeType, err := DecodeDataURL(candidate)
				if err != nil {
					return transform.FromError(fmt.Errorf("nanobanana: %w", err))
				}
				return transform.Success(data, mimeType)
			}
		}
		if t := strings.TrimSpace(item.Text); t != "" {
			texts = append(texts, t)
		}
	}
	if len(texts) > 0 {
		return transform.TextOnly(strings.Join(texts, "\n\n"))
	}
	return transform.FromError(fmt.Errorf("nanobanana: %w", transform.ErrNoImage))
}

func fromChatText(text string) transform.Result {
	text = strings.TrimSpace(text)
	if IsDataURL(text) {
		data, mimeType, err := DecodeDataURL(text)
		if err != nil {
			return transform.FromError(fmt.Errorf("nanobanana: %w", err))
		}
		return transform.Success(data, mimeType)
	}
	if text == "" {
		return transform.FromError(fmt.Errorf("nanobanana: %w", transform.ErrNoImage))
	}
	return transform.TextOnly(text)
}

// imageField accepts "image": "data:..." or "image": {"base64"|"url": ...}.
func imageField(v any) string {
	switch img := v.(type) {
	case string:
		return img
	case map[string]any:
		if s, ok := img["url"].(string); ok && IsDataURL(s) {
			return s
		}
		if s, ok := img["base64"].(string); ok && s != "" {
			if IsDataURL(s) {
				return s
			}
			mime, _ := img["mime_type"].(string)
			if mime == "" {
				mime = "image/png"
			}
			return "data:" + mime + ";base64," + s
		}
	}
	return ""
}
