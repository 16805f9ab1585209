package vision

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/oauth2"

	"sentraSalon/internal/cache"
	"sentraSalon/internal/config"
	"sentraSalon/internal/llm"
	"sentraSalon/internal/transform"
)

// Backends is the set of adapters built from configuration.
type Backends struct {
	Registry *transform.Registry
	Analyzer *Analyzer
	Vision   *llm.GeminiClient

	closers []func() error
}

// Close releases vendor clients created at startup.
func (b *Backends) Close() {
	for _, fn := range b.closers {
		if err := fn(); err != nil {
			log.Printf("vision: close backend: %v", err)
		}
	}
}

// NewBackends registers every backend whose credentials are configured. A
// backend with missing credentials is skipped, not an error.
func NewBackends(ctx context.Context, cfg config.Config, analysisCache cache.Cache) (*Backends, error) {
	out := &Backends{Registry: transform.NewRegistry()}
	timeout := cfg.RequestTimeout()

	var tokenSource oauth2.TokenSource
	if strings.TrimSpace(cfg.Gemini.ServiceAccountJSON) != "" {
		ts, err := llm.ServiceAccountTokenSource(ctx, cfg.Gemini.ServiceAccountJSON)
		if err != nil {
			return nil, err
		}
		tokenSource = ts
	}
	if cfg.Gemini.APIKey != "" || tokenSource != nil {
		out.Vision = llm.NewGeminiClient(cfg.Gemini.APIKey, cfg.Gemini.VisionModel, timeout, tokenSource).WithBaseURL(cfg.Gemini.BaseURL)
		log.Printf("vision: gemini client ready (model %s)", out.Vision.Model())
		out.Analyzer = NewAnalyzer(out.Vision, analysisCache, cfg.AnalysisCacheTTL())
	}

	var preAnalysis *Analyzer
	if cfg.Gemini.PreAnalysis {
		if out.Analyzer == nil {
			log.Println("vision: PRE_ANALYSIS set but no Gemini credentials; skipping reference analysis")
		}
		preAnalysis = out.Analyzer
	}

	if cfg.Gemini.APIKey != "" {
		client, err := NewGenAIClient(ctx, cfg.Gemini.APIKey)
		if err != nil {
			return nil, err
		}
		out.Registry.Register(NewGeminiBackend(client.Models, cfg.Gemini.ImageModel, preAnalysis))
		out.Registry.Register(NewGeminiTextBackend(client.Models, cfg.Gemini.ImageModel))
	}

	if cfg.Qwen.APIKey != "" {
		out.Registry.Register(NewQwenBackend(QwenConfig{
			APIKey:  cfg.Qwen.APIKey,
			BaseURL: cfg.Qwen.BaseURL,
			Model:   cfg.Qwen.Model,
			Timeout: timeout,
		}))
	}

	if cfg.NanoBanana.APIKey != "" {
		backend, err := NewNanoBananaBackend(NanoBananaConfig{
			APIKey:  cfg.NanoBanana.APIKey,
			BaseURL: cfg.NanoBanana.BaseURL,
			Model:   cfg.NanoBanana.Model,
			Timeout: timeout,
		}, preAnalysis)
		if err != nil {
			log.Printf("vision: nanobanana disabled: %v", err)
		} else {
			out.Registry.Register(backend)
		}
	}

	if cfg.Vertex.ProjectID != "" {
		backend, err := NewImagenBackend(ctx, ImagenConfig{
			ProjectID:          cfg.Vertex.ProjectID,
			Location:           cfg.Vertex.Location,
			Model:              cfg.Vertex.ImagenModel,
			ServiceAccountFile: cfg.Vertex.ServiceAccountFile,
			ServiceAccountJSON: cfg.Vertex.ServiceAccountJSON,
		}, out.Analyzer)
		if err != nil {
			log.Printf("vision: imagen disabled: %v", err)
		} else {
			out.Registry.Register(backend)
			out.closers = append(out.closers, backend.Close)
		}
	}

	if len(out.Registry.Names()) == 0 {
		return out, fmt.Errorf("vision: no backend configured (set GEMINI_API_KEY, QWEN_API_KEY, NANOBANANA_API_KEY or VERTEX_PROJECT_ID)")
	}
	if err := out.Registry.SetDefault(cfg.DefaultBackend); err != nil {
		log.Printf("vision: default backend %q unavailable, using %q", cfg.DefaultBackend, out.Registry.Default())
	}
	return out, nil
}
