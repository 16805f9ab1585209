package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sentraSalon/internal/llm"
	"sentraSalon/internal/prompts"
	"sentraSalon/internal/transform"
)

const (
	defaultQwenBaseURL = "https://dashscope-intl.aliyuncs.com/api/v1"
	defaultQwenModel   = "qwen-image-edit-plus"
	qwenGenerationPath = "/services/aigc/multimodal-generation/generation"
)

// MaxDownloadBytes caps a generated image fetched by URL.
const MaxDownloadBytes = 20 * 1024 * 1024

// QwenConfig describes the DashScope connection.
type QwenConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// QwenBackend calls the DashScope multimodal generation endpoint. It supports
// the subject photo alone with a description, or subject plus labelled reference.
type QwenBackend struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewQwenBackend wires the DashScope backend.
func NewQwenBackend(cfg QwenConfig) *QwenBackend {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultQwenBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultQwenModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &QwenBackend{
		apiKey:  cfg.APIKey,
		baseURL: base,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

func (b *QwenBackend) Name() string { return "qwen" }

type qwenContent struct {
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}

type qwenRequest struct {
	Model string `json:"model"`
	Input struct {
		Messages []qwenMessage `json:"messages"`
	} `json:"input"`
	Parameters map[string]any `json:"parameters"`
}

type qwenMessage struct {
	Role    string        `json:"role"`
	Content []qwenContent `json:"content"`
}

type qwenResponse struct {
	Output struct {
		Choices []struct {
			Message struct {
				Content []qwenContent `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	} `json:"output"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// Transform implements transform.Backend.
func (b *QwenBackend) Transform(ctx context.Context, req transform.Request) transform.Result {
	if err := req.Validate(); err != nil {
		return transform.FromError(err)
	}

	body, err := json.Marshal(b.buildRequest(req))
	if err != nil {
		return transform.FromError(fmt.Errorf("qwen: marshal payload: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+qwenGenerationPath, bytes.NewReader(body))
	if err != nil {
		return transform.FromError(fmt.Errorf("qwen: request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return transform.FromError(fmt.Errorf("qwen: perform request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return transform.FromError(llm.ReadStatusError("qwen", resp.StatusCode, resp.Body))
	}

	var decoded qwenResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return transform.FromError(fmt.Errorf("qwen: decode response: %w", err))
	}
	return b.decode(ctx, decoded)
}

func (b *QwenBackend) buildRequest(req transform.Request) qwenRequest {
	prompt := prompts.EditPrompt(req.Description, req.Options, req.HasReference())

	var content []qwenContent
	if req.HasReference() {
		content = []qwenContent{
			{Text: prompt},
			{Text: prompts.SourceLabel},
			{Image: dataURL(req.SubjectImage, req.SubjectMIME)},
			{Text: prompts.TargetLabel},
			{Image: dataURL(req.ReferenceImage, req.ReferenceMIME)},
		}
	} else {
		content = []qwenContent{
			{Text: prompt},
			{Image: dataURL(req.SubjectImage, req.SubjectMIME)},
		}
	}

	var payload qwenRequest
	payload.Model = b.model
	payload.Input.Messages = []qwenMessage{{Role: "user", Content: content}}
	payload.Parameters = map[string]any{"n": 1, "watermark": false}
	return payload
}

func (b *QwenBackend) decode(ctx context.Context, resp qwenResponse) transform.Result {
	var texts []string
	for _, choice := range resp.Output.Choices {
		for _, item := range choice.Message.Content {
			if image := strings.TrimSpace(item.Image); image != "" {
				if IsDataURL(image) {
					data, mimeType, err := DecodeDataURL(image)
					if err != nil {
						return transform.FromError(fmt.Errorf("qwen: %w", err))
					}
					return transform.Success(data, mimeType)
				}
				data, mimeType, err := b.download(ctx, image)
				if err != nil {
					return transform.FromError(fmt.Errorf("qwen: download result: %w", err))
				}
				return transform.Success(data, mimeType)
			}
			if text := strings.TrimSpace(item.Text); text != "" {
				texts = append(texts, text)
			}
		}
	}
	if len(texts) > 0 {
		return transform.TextOnly(strings.Join(texts, "\n\n"))
	}
	if resp.Message != "" {
		return transform.Failure(transform.ErrorDecode, fmt.Sprintf("qwen: %s: %s", resp.Code, resp.Message))
	}
	return transform.FromError(fmt.Errorf("qwen: %w", transform.ErrNoImage))
}

func (b *QwenBackend) download(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, "", &llm.StatusError{Provider: "qwen", StatusCode: resp.StatusCode, Message: "image download from " + url}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDownloadBytes+1))
	if err != nil {
		return nil, "", err
	}
	if len(data) > MaxDownloadBytes {
		return nil, "", fmt.Errorf("image exceeds %d bytes", MaxDownloadBytes)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty download: %w", transform.ErrMalformedImage)
	}
	return data, imageMIME(data, resp.Header.Get("Content-Type")), nil
}

func dataURL(data []byte, mimeType string) string {
	return "data:" + detectMime(data, mimeType) + ";base64," + base64.StdEncoding.EncodeToString(data)
}
