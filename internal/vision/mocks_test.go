package vision

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"sentraSalon/internal/cache"
	"sentraSalon/internal/llm"
)

// --- Mocks ---

type mockContentGenerator struct {
	generateFn func(ctx context.Context, model string, contents []*genai.Content) (*genai.GenerateContentResponse, error)

	mu       sync.Mutex
	models   []string
	contents [][]*genai.Content
}

func (m *mockContentGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.mu.Lock()
	m.models = append(m.models, model)
	m.contents = append(m.contents, contents)
	m.mu.Unlock()
	return m.generateFn(ctx, model, contents)
}

func (m *mockContentGenerator) lastParts() []*genai.Part {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.contents) == 0 || len(m.contents[len(m.contents)-1]) == 0 {
		return nil
	}
	return m.contents[len(m.contents)-1][0].Parts
}

type mockMultimodal struct {
	generateFn func(ctx context.Context, parts []llm.Part) (string, error)
	calls      int
}

func (m *mockMultimodal) Generate(ctx context.Context, parts []llm.Part, _ float64) (string, error) {
	m.calls++
	return m.generateFn(ctx, parts)
}

type mapCache struct {
	mu     sync.Mutex
	values map[string]string
}

func newMapCache() *mapCache { return &mapCache{values: map[string]string{}} }

func (c *mapCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return v, nil
}

func (c *mapCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *mapCache) Close() error { return nil }

func imageResponse(data []byte, mime string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{{InlineData: &genai.Blob{MIMEType: mime, Data: data}}},
			},
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(1, 1, color.RGBA{G: 180, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func pngSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func partTexts(parts []*genai.Part) []string {
	var out []string
	for _, p := range parts {
		if p.Text != "" {
			out = append(out, p.Text)
		}
	}
	return out
}
