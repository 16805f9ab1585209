package vision

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"sentraSalon/internal/prompts"
	"sentraSalon/internal/transform"
)

const defaultImageModel = "gemini-2.5-flash-image"

// contentGenerator is satisfied by *genai.Models.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// NewGenAIClient creates the shared Gemini SDK client once per process.
func NewGenAIClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("vision: gemini API key missing")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("vision: create genai client: %w", err)
	}
	return client, nil
}

// GeminiBackend sends the subject and reference photos with role labels to a
// Gemini image model. Without a reference it falls back to the description prompt.
type GeminiBackend struct {
	models   contentGenerator
	model    string
	analyzer *Analyzer
}

// NewGeminiBackend wires the two-image backend. analyzer may be nil.
func NewGeminiBackend(models contentGenerator, model string, analyzer *Analyzer) *GeminiBackend {
	return &GeminiBackend{models: models, model: normalizeImageModel(model), analyzer: analyzer}
}

func (b *GeminiBackend) Name() string { return "gemini" }

// Transform implements transform.Backend.
func (b *GeminiBackend) Transform(ctx context.Context, req transform.Request) transform.Result {
	if err := req.Validate(); err != nil {
		return transform.FromError(err)
	}
	if !req.HasReference() {
		return generate(ctx, b.models, b.model, textParts(req))
	}

	prompt := prompts.TransferPrompt(req.Options)
	if b.analyzer != nil {
		analysis := b.analyzer.Analyze(ctx, req.ReferenceImage, req.ReferenceMIME)
		prompt = prompts.WithAnalysis(prompt, analysis.Description)
	}
	if desc := strings.TrimSpace(req.Description); desc != "" && strings.TrimSpace(req.Options.PromptOverride) == "" {
		prompt += "\n\nAdditional notes from the client: " + desc
	}

	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromText(prompts.SourceLabel),
		genai.NewPartFromBytes(req.SubjectImage, detectMime(req.SubjectImage, req.SubjectMIME)),
		genai.NewPartFromText(prompts.TargetLabel),
		genai.NewPartFromBytes(req.ReferenceImage, detectMime(req.ReferenceImage, req.ReferenceMIME)),
	}
	return generate(ctx, b.models, b.model, parts)
}

// GeminiTextBackend renders a described hairstyle onto the subject photo.
type GeminiTextBackend struct {
	models contentGenerator
	model  string
}

// NewGeminiTextBackend wires the description-driven backend.
func NewGeminiTextBackend(models contentGenerator, model string) *GeminiTextBackend {
	return &GeminiTextBackend{models: models, model: normalizeImageModel(model)}
}

func (b *GeminiTextBackend) Name() string { return "gemini-text" }

// Transform implements transform.Backend. A reference image without a
// description is described generically.
func (b *GeminiTextBackend) Transform(ctx context.Context, req transform.Request) transform.Result {
	if err := req.Validate(); err != nil {
		return transform.FromError(err)
	}
	return generate(ctx, b.models, b.model, textParts(req))
}

func textParts(req transform.Request) []*genai.Part {
	description := req.Description
	if !req.HasDescription() {
		description = prompts.FallbackDescription
	}
	return []*genai.Part{
		genai.NewPartFromText(prompts.TextPrompt(description, req.Options)),
		genai.NewPartFromBytes(req.SubjectImage, detectMime(req.SubjectImage, req.SubjectMIME)),
	}
}

func generate(ctx context.Context, models contentGenerator, model string, parts []*genai.Part) transform.Result {
	if models == nil {
		return transform.Failure(transform.ErrorNetwork, "gemini: client not configured")
	}
	resp, err := models.GenerateContent(ctx, model, []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.4),
	})
	if err != nil {
		return transform.FromError(fmt.Errorf("gemini: generate: %w", err))
	}
	return DecodeGenAI(resp)
}

func normalizeImageModel(model string) string {
	clean := strings.TrimPrefix(strings.TrimSpace(model), "models/")
	if clean == "" {
		return defaultImageModel
	}
	return clean
}
