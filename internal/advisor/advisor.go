package advisor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"sentraSalon/internal/llm"
	"sentraSalon/internal/prompts"
)

var (
	// ErrUnavailable is returned when no vision client is configured.
	ErrUnavailable = errors.New("advisor: unavailable")
	// ErrNoStyles is returned when a comparison names no styles.
	ErrNoStyles = errors.New("advisor: at least one style is required")
	// ErrNoImage is returned when no client photo is given.
	ErrNoImage = errors.New("advisor: image required")
)

const advisorTemperature = 0.4

type generator interface {
	Generate(ctx context.Context, parts []llm.Part, temperature float64) (string, error)
}

// Advice is the text of a styling consultation.
type Advice struct {
	Kind   string   `json:"kind"`
	Styles []string `json:"styles,omitempty"`
	Text   string   `json:"text"`
}

// Category groups hairstyles for browsing.
type Category struct {
	Name   string   `json:"name"`
	Styles []string `json:"styles"`
}

// Advisor produces hairstyle consultations from a client photo.
type Advisor struct {
	client generator
	model  string
}

// New wraps a multimodal client, typically the Gemini vision model. A non-empty
// model replaces the client's default for every consultation.
func New(client generator, model string) *Advisor {
	return &Advisor{client: client, model: model}
}

// Recommend analyses the face and rates the desired style.
func (a *Advisor) Recommend(ctx context.Context, image []byte, mimeType, desiredStyle string, prefs map[string]string) (Advice, error) {
	if strings.TrimSpace(desiredStyle) == "" {
		desiredStyle = "any flattering style"
	}
	text, err := a.ask(ctx, image, mimeType, prompts.RecommendPrompt(desiredStyle, prefs))
	if err != nil {
		return Advice{}, err
	}
	return Advice{Kind: "recommend", Styles: []string{strings.TrimSpace(desiredStyle)}, Text: text}, nil
}

// Compare scores each style against the photo and picks one.
func (a *Advisor) Compare(ctx context.Context, image []byte, mimeType string, styles []string) (Advice, error) {
	cleaned := make([]string, 0, len(styles))
	for _, s := range styles {
		if s = strings.TrimSpace(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	if len(cleaned) == 0 {
		return Advice{}, ErrNoStyles
	}
	text, err := a.ask(ctx, image, mimeType, prompts.ComparePrompt(cleaned))
	if err != nil {
		return Advice{}, err
	}
	return Advice{Kind: "compare", Styles: cleaned, Text: text}, nil
}

// Consult runs a virtual consultation. Unknown kinds become general.
func (a *Advisor) Consult(ctx context.Context, image []byte, mimeType, kind string) (Advice, error) {
	kind = prompts.ConsultKind(kind)
	text, err := a.ask(ctx, image, mimeType, prompts.ConsultPrompt(kind))
	if err != nil {
		return Advice{}, err
	}
	return Advice{Kind: kind, Text: text}, nil
}

// Categories lists the style catalog sorted by name.
func Categories() []Category {
	names := make([]string, 0, len(prompts.StyleCategories))
	for name := range prompts.StyleCategories {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Category, 0, len(names))
	for _, name := range names {
		styles := append([]string(nil), prompts.StyleCategories[name]...)
		out = append(out, Category{Name: name, Styles: styles})
	}
	return out
}

func (a *Advisor) ask(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	if a == nil || a.client == nil {
		return "", ErrUnavailable
	}
	if len(image) == 0 {
		return "", ErrNoImage
	}
	text, err := a.client.Generate(llm.WithModel(ctx, a.model), []llm.Part{llm.TextPart(prompt), llm.ImagePart(image, mimeType)}, advisorTemperature)
	if err != nil {
		return "", fmt.Errorf("advisor: generate: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("advisor: empty response")
	}
	return text, nil
}
