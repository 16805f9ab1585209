package vision

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"sentraSalon/internal/cache"
	"sentraSalon/internal/llm"
	"sentraSalon/internal/prompts"
	"sentraSalon/internal/transform"
)

// DefaultAnalysisTimeout bounds the pre-analysis call.
const DefaultAnalysisTimeout = 30 * time.Second

// multimodalGenerator is satisfied by llm.GeminiClient.
type multimodalGenerator interface {
	Generate(ctx context.Context, parts []llm.Part, temperature float64) (string, error)
}

// Analysis is the outcome of describing a reference hairstyle.
type Analysis struct {
	Description string              `json:"description"`
	Fallback    bool                `json:"fallback"`
	Reason      transform.ErrorKind `json:"reason,omitempty"`
	Cached      bool                `json:"cached"`
}

// Analyzer describes a reference hairstyle in text before the main transform.
type Analyzer struct {
	client  multimodalGenerator
	cache   cache.Cache
	ttl     time.Duration
	timeout time.Duration
}

// NewAnalyzer wires an analyzer. A nil cache disables caching.
func NewAnalyzer(client multimodalGenerator, c cache.Cache, ttl time.Duration) *Analyzer {
	if c == nil {
		c = cache.Noop{}
	}
	return &Analyzer{client: client, cache: c, ttl: ttl, timeout: DefaultAnalysisTimeout}
}

// Analyze never fails: vendor errors and refusals yield the generic fallback description.
func (a *Analyzer) Analyze(ctx context.Context, image []byte, mimeType string) Analysis {
	if a == nil || a.client == nil || len(image) == 0 {
		return Analysis{Description: prompts.FallbackDescription, Fallback: true}
	}

	key := cache.Key("analysis", image)
	if cached, err := a.cache.Get(ctx, key); err == nil && cached != "" {
		return Analysis{Description: cached, Cached: true}
	} else if err != nil && !errors.Is(err, cache.ErrMiss) {
		log.Printf("vision: analysis cache read: %v", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, err := a.client.Generate(callCtx, []llm.Part{
		llm.TextPart(prompts.AnalysisPrompt()),
		llm.ImagePart(image, detectMime(image, mimeType)),
	}, 0.2)
	if err != nil {
		log.Printf("vision: reference analysis failed, using fallback: %v", err)
		return Analysis{Description: prompts.FallbackDescription, Fallback: true, Reason: transform.Classify(err)}
	}

	if prompts.IsRefusal(text) {
		log.Printf("vision: reference analysis rejected (%d chars), using fallback", len(strings.TrimSpace(text)))
		return Analysis{Description: prompts.SanitizeAnalysis(text), Fallback: true, Reason: transform.ErrorRefusal}
	}
	description := strings.TrimSpace(text)

	if err := a.cache.Set(ctx, key, description, a.ttl); err != nil {
		log.Printf("vision: analysis cache write: %v", err)
	}
	return Analysis{Description: description}
}
