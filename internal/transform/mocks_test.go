package transform

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type mockBackend struct {
	name        string
	transformFn func(ctx context.Context, req Request) Result

	mu    sync.Mutex
	calls []Request
}

func (m *mockBackend) Name() string { return m.name }

func (m *mockBackend) Transform(ctx context.Context, req Request) Result {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
	if m.transformFn == nil {
		return Failure(ErrorNetwork, "not implemented")
	}
	return m.transformFn(ctx, req)
}

func (m *mockBackend) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
