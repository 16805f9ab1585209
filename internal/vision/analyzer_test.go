package vision

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sentraSalon/internal/llm"
	"sentraSalon/internal/prompts"
	"sentraSalon/internal/transform"
)

func TestAnalyzer(t *testing.T) {
	ctx := context.Background()
	reference := pngBytes(t, 5, 5)
	detailed := "Chin-length blunt bob, glossy dark brown, straight texture, centre parting, no bangs, moderate volume."

	t.Run("refusal falls back", func(t *testing.T) {
		client := &mockMultimodal{generateFn: func(context.Context, []llm.Part) (string, error) {
			return "Sorry, I cannot analyze this.", nil
		}}
		got := NewAnalyzer(client, nil, time.Hour).Analyze(ctx, reference, "image/png")
		assert.Equal(t, prompts.FallbackDescription, got.Description)
		assert.True(t, got.Fallback)
		assert.Equal(t, transform.ErrorRefusal, got.Reason)
	})

	t.Run("long refusal is still rejected", func(t *testing.T) {
		client := &mockMultimodal{generateFn: func(context.Context, []llm.Part) (string, error) {
			return "I'm sorry, but I am unable to help identify or describe people in images like this one.", nil
		}}
		got := NewAnalyzer(client, nil, time.Hour).Analyze(ctx, reference, "")
		assert.Equal(t, prompts.FallbackDescription, got.Description)
	})

	t.Run("usable analysis is cached", func(t *testing.T) {
		client := &mockMultimodal{generateFn: func(_ context.Context, parts []llm.Part) (string, error) {
			assert.Len(t, parts, 2)
			assert.True(t, strings.Contains(parts[0].Text, "hairstyle"))
			assert.True(t, parts[1].IsImage())
			return "  " + detailed + "\n", nil
		}}
		store := newMapCache()
		analyzer := NewAnalyzer(client, store, time.Hour)

		first := analyzer.Analyze(ctx, reference, "image/png")
		assert.Equal(t, detailed, first.Description)
		assert.False(t, first.Fallback)
		assert.False(t, first.Cached)

		second := analyzer.Analyze(ctx, reference, "image/png")
		assert.Equal(t, detailed, second.Description)
		assert.True(t, second.Cached)
		assert.Equal(t, 1, client.calls)
	})

	t.Run("vendor error falls back without failing", func(t *testing.T) {
		client := &mockMultimodal{generateFn: func(context.Context, []llm.Part) (string, error) {
			return "", &llm.StatusError{Provider: "gemini", StatusCode: 500, Message: "boom"}
		}}
		got := NewAnalyzer(client, nil, time.Hour).Analyze(ctx, reference, "image/png")
		assert.Equal(t, prompts.FallbackDescription, got.Description)
		assert.Equal(t, transform.ErrorNetwork, got.Reason)
	})

	t.Run("deadline is classified", func(t *testing.T) {
		client := &mockMultimodal{generateFn: func(context.Context, []llm.Part) (string, error) {
			return "", errors.Join(errors.New("gemini perform request"), context.DeadlineExceeded)
		}}
		got := NewAnalyzer(client, nil, time.Hour).Analyze(ctx, reference, "image/png")
		assert.Equal(t, transform.ErrorTimeout, got.Reason)
	})

	t.Run("nil analyzer", func(t *testing.T) {
		var analyzer *Analyzer
		got := analyzer.Analyze(ctx, reference, "image/png")
		assert.True(t, got.Fallback)
	})
}
