package advisor

import (
	"context"

	"sentraSalon/internal/llm"
)

// --- Mocks ---

type mockGenerator struct {
	generateFn func(ctx context.Context, parts []llm.Part) (string, error)
	parts      []llm.Part
}

func (m *mockGenerator) Generate(ctx context.Context, parts []llm.Part, _ float64) (string, error) {
	m.parts = parts
	return m.generateFn(ctx, parts)
}

func reply(text string) *mockGenerator {
	return &mockGenerator{generateFn: func(context.Context, []llm.Part) (string, error) { return text, nil }}
}
