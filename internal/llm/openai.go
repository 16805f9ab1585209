package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ContentItem is one element of an OpenAI-shaped multimodal message.
type ContentItem struct {
	Type  string        `json:"type"`
	Text  string        `json:"text,omitempty"`
	Image *InlineBase64 `json:"image,omitempty"`
}

// InlineBase64 carries image bytes as base64 inside a content item.
type InlineBase64 struct {
	Base64   string `json:"base64"`
	MIMEType string `json:"mime_type,omitempty"`
}

// ContentFromParts converts prompt parts into OpenAI-shaped content items.
func ContentFromParts(parts []Part) []ContentItem {
	items := make([]ContentItem, 0, len(parts))
	for _, p := range parts {
		if p.IsImage() {
			items = append(items, ContentItem{Type: "image", Image: &InlineBase64{
				Base64:   base64.StdEncoding.EncodeToString(p.Data),
				MIMEType: p.MIMEType,
			}})
			continue
		}
		items = append(items, ContentItem{Type: "text", Text: p.Text})
	}
	return items
}

// ChatClient talks to any endpoint that implements the OpenAI chat completions shape.
type ChatClient struct {
	provider string
	baseURL  string
	apiKey   string
	model    string
	client   *http.Client
}

// NewChatClient constructs a client for baseURL (the path /chat/completions is appended).
func NewChatClient(provider, baseURL, apiKey, model string, timeout time.Duration) *ChatClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if strings.TrimSpace(provider) == "" {
		provider = "openai"
	}
	return &ChatClient{
		provider: provider,
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:   apiKey,
		model:    model,
		client:   &http.Client{Timeout: timeout},
	}
}

// Complete sends one multimodal user message and returns the raw message content,
// which may be a string or an array depending on the provider.
func (c *ChatClient) Complete(ctx context.Context, items []ContentItem, temperature float64, maxTokens int) (json.RawMessage, error) {
	payload := map[string]any{
		"model":       c.model,
		"temperature": temperature,
		"messages": []map[string]any{
			{"role": "user", "content": items},
		},
	}
	if maxTokens > 0 {
		payload["max_tokens"] = maxTokens
	}
	return c.send(ctx, payload)
}

func (c *ChatClient) send(ctx context.Context, payload map[string]any) (json.RawMessage, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("%s: base URL not configured", c.provider)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", c.provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s perform request: %w", c.provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, ReadStatusError(c.provider, resp.StatusCode, resp.Body)
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content json.RawMessage `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("%s decode response: %w", c.provider, err)
	}

	if len(completion.Choices) == 0 {
		return nil, nil
	}
	return completion.Choices[0].Message.Content, nil
}
