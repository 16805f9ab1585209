package vision

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"sentraSalon/internal/llm"
	"sentraSalon/internal/prompts"
	"sentraSalon/internal/transform"
)

func TestGeminiBackend(t *testing.T) {
	ctx := context.Background()
	subject := pngBytes(t, 4, 4)
	reference := pngBytes(t, 6, 6)

	t.Run("attaches both images with role labels", func(t *testing.T) {
		gen := &mockContentGenerator{generateFn: func(_ context.Context, _ string, _ []*genai.Content) (*genai.GenerateContentResponse, error) {
			return imageResponse(pngBytes(t, 4, 4), "image/png"), nil
		}}
		backend := NewGeminiBackend(gen, "", nil)

		res := backend.Transform(ctx, transform.Request{SubjectImage: subject, ReferenceImage: reference})
		require.Equal(t, transform.KindSuccess, res.Kind)
		assert.Equal(t, []string{defaultImageModel}, gen.models)

		parts := gen.lastParts()
		require.Len(t, parts, 5)
		assert.Equal(t, prompts.SourceLabel, parts[1].Text)
		assert.Equal(t, subject, parts[2].InlineData.Data)
		assert.Equal(t, prompts.TargetLabel, parts[3].Text)
		assert.Equal(t, reference, parts[4].InlineData.Data)
		assert.Contains(t, strings.ToLower(prompts.SourceLabel), "source")
		assert.Contains(t, strings.ToLower(prompts.TargetLabel), "target")

		prompt := strings.ToLower(parts[0].Text)
		assert.Contains(t, prompt, "preserve")
		assert.Contains(t, prompt, "transfer")
	})

	t.Run("styling options reach the reference prompt", func(t *testing.T) {
		gen := &mockContentGenerator{generateFn: func(context.Context, string, []*genai.Content) (*genai.GenerateContentResponse, error) {
			return imageResponse(pngBytes(t, 2, 2), "image/png"), nil
		}}
		backend := NewGeminiBackend(gen, "", nil)

		res := backend.Transform(ctx, transform.Request{
			SubjectImage:   subject,
			ReferenceImage: reference,
			Options:        prompts.Options{HairColor: "Blonde", HairLength: "Short", PreserveColor: true},
		})
		require.Equal(t, transform.KindSuccess, res.Kind)
		prompt := gen.lastParts()[0].Text
		assert.Contains(t, prompt, "Blonde")
		assert.Contains(t, prompt, "Short")
		assert.Contains(t, prompt, "Keep the original hair color")
	})

	t.Run("prompt override replaces the default", func(t *testing.T) {
		gen := &mockContentGenerator{generateFn: func(context.Context, string, []*genai.Content) (*genai.GenerateContentResponse, error) {
			return textResponse("refused"), nil
		}}
		backend := NewGeminiBackend(gen, "models/custom-image", nil)

		res := backend.Transform(ctx, transform.Request{
			SubjectImage:   subject,
			ReferenceImage: reference,
			Description:    "ignored",
			Options:        prompts.Options{PromptOverride: "Just swap the hair."},
		})
		assert.Equal(t, transform.KindTextOnly, res.Kind)
		assert.Equal(t, "refused", res.Explanation)
		assert.Equal(t, "Just swap the hair.", gen.lastParts()[0].Text)
		assert.Equal(t, []string{"custom-image"}, gen.models)
	})

	t.Run("refused analysis falls back to generic description", func(t *testing.T) {
		gen := &mockContentGenerator{generateFn: func(context.Context, string, []*genai.Content) (*genai.GenerateContentResponse, error) {
			return imageResponse(pngBytes(t, 2, 2), "image/png"), nil
		}}
		vision := &mockMultimodal{generateFn: func(context.Context, []llm.Part) (string, error) {
			return "Sorry, I cannot analyze this.", nil
		}}
		backend := NewGeminiBackend(gen, "", NewAnalyzer(vision, nil, time.Hour))

		res := backend.Transform(ctx, transform.Request{SubjectImage: subject, ReferenceImage: reference})
		require.Equal(t, transform.KindSuccess, res.Kind)
		prompt := gen.lastParts()[0].Text
		assert.Contains(t, prompt, prompts.FallbackDescription)
		assert.NotContains(t, prompt, "Sorry")
	})

	t.Run("description only uses the text prompt", func(t *testing.T) {
		gen := &mockContentGenerator{generateFn: func(context.Context, string, []*genai.Content) (*genai.GenerateContentResponse, error) {
			return imageResponse(pngBytes(t, 2, 2), "image/png"), nil
		}}
		backend := NewGeminiBackend(gen, "", nil)

		res := backend.Transform(ctx, transform.Request{
			SubjectImage: subject,
			Description:  "Shoulder-length waves",
			Options:      prompts.Options{HairColor: "Blonde"},
		})
		require.Equal(t, transform.KindSuccess, res.Kind)
		parts := gen.lastParts()
		require.Len(t, parts, 2)
		assert.Contains(t, parts[0].Text, "Shoulder-length waves")
		assert.Contains(t, parts[0].Text, "Blonde")
	})

	t.Run("timeout is a failure", func(t *testing.T) {
		gen := &mockContentGenerator{generateFn: func(ctx context.Context, _ string, _ []*genai.Content) (*genai.GenerateContentResponse, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}}
		backend := NewGeminiBackend(gen, "", nil)

		callCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()
		res := backend.Transform(callCtx, transform.Request{SubjectImage: subject, ReferenceImage: reference})
		assert.Equal(t, transform.KindFailure, res.Kind)
		assert.Equal(t, transform.ErrorTimeout, res.ErrorKind)
	})

	t.Run("vendor error is a network failure", func(t *testing.T) {
		gen := &mockContentGenerator{generateFn: func(context.Context, string, []*genai.Content) (*genai.GenerateContentResponse, error) {
			return nil, errors.New("Error 503, Message: overloaded")
		}}
		res := NewGeminiBackend(gen, "", nil).Transform(ctx, transform.Request{SubjectImage: subject, ReferenceImage: reference})
		assert.Equal(t, transform.ErrorNetwork, res.ErrorKind)
		assert.Contains(t, res.Message, "overloaded")
	})

	t.Run("missing style never calls the vendor", func(t *testing.T) {
		gen := &mockContentGenerator{}
		res := NewGeminiBackend(gen, "", nil).Transform(ctx, transform.Request{SubjectImage: subject})
		assert.Equal(t, transform.ErrorValidation, res.ErrorKind)
		assert.Empty(t, gen.models)
	})
}

func TestGeminiTextBackend(t *testing.T) {
	gen := &mockContentGenerator{generateFn: func(context.Context, string, []*genai.Content) (*genai.GenerateContentResponse, error) {
		return textResponse("Here is a description instead."), nil
	}}
	backend := NewGeminiTextBackend(gen, "")
	assert.Equal(t, "gemini-text", backend.Name())

	res := backend.Transform(context.Background(), transform.Request{
		SubjectImage: pngBytes(t, 2, 2),
		Description:  "Pixie cut",
		Options:      prompts.Options{HairLength: "Short", Occasion: "Wedding"},
	})
	assert.Equal(t, transform.KindTextOnly, res.Kind)
	assert.Equal(t, "Here is a description instead.", res.Explanation)

	prompt := gen.lastParts()[0].Text
	assert.Contains(t, prompt, "Pixie cut")
	assert.Contains(t, prompt, "Hair length: Short")
	assert.Contains(t, prompt, "Styled for: Wedding")
}
