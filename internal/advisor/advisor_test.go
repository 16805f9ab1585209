package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentraSalon/internal/llm"
	"sentraSalon/internal/prompts"
)

var photo = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}

func TestAdvisor(t *testing.T) {
	ctx := context.Background()

	t.Run("recommend sends prompt and photo", func(t *testing.T) {
		gen := reply("  1. FACE SHAPE ANALYSIS: oval\n")
		advice, err := New(gen, "").Recommend(ctx, photo, "image/jpeg", "Textured Lob", map[string]string{"length": "medium"})
		require.NoError(t, err)
		assert.Equal(t, "1. FACE SHAPE ANALYSIS: oval", advice.Text)
		assert.Equal(t, []string{"Textured Lob"}, advice.Styles)

		require.Len(t, gen.parts, 2)
		assert.Contains(t, gen.parts[0].Text, "Textured Lob")
		assert.Contains(t, gen.parts[0].Text, `"length":"medium"`)
		assert.True(t, gen.parts[1].IsImage())
	})

	t.Run("compare drops blank styles", func(t *testing.T) {
		gen := reply("Top choice: Shag Cut")
		advice, err := New(gen, "").Compare(ctx, photo, "", []string{" Shag Cut", "", "Pixie Cut "})
		require.NoError(t, err)
		assert.Equal(t, []string{"Shag Cut", "Pixie Cut"}, advice.Styles)
		assert.Contains(t, gen.parts[0].Text, "1. Shag Cut\n2. Pixie Cut")
	})

	t.Run("compare needs styles", func(t *testing.T) {
		_, err := New(reply("x"), "").Compare(ctx, photo, "", []string{" "})
		assert.ErrorIs(t, err, ErrNoStyles)
	})

	t.Run("unknown consult kind is general", func(t *testing.T) {
		gen := reply("Top 5 recommended styles ...")
		advice, err := New(gen, "").Consult(ctx, photo, "image/jpeg", "spa-day")
		require.NoError(t, err)
		assert.Equal(t, prompts.ConsultGeneral, advice.Kind)
		assert.Contains(t, gen.parts[0].Text, "comprehensive hair consultation")
	})

	t.Run("vendor error is wrapped", func(t *testing.T) {
		gen := &mockGenerator{generateFn: func(context.Context, []llm.Part) (string, error) {
			return "", &llm.StatusError{Provider: "gemini", StatusCode: 503, Message: "overloaded"}
		}}
		_, err := New(gen, "").Consult(ctx, photo, "", prompts.ConsultMakeover)
		var statusErr *llm.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, 503, statusErr.StatusCode)
	})

	t.Run("empty reply", func(t *testing.T) {
		_, err := New(reply("   "), "").Consult(ctx, photo, "", "")
		assert.Error(t, err)
	})

	t.Run("unavailable and missing image", func(t *testing.T) {
		_, err := New(nil, "").Consult(ctx, photo, "", "")
		assert.ErrorIs(t, err, ErrUnavailable)
		_, err = New(reply("x"), "").Consult(ctx, nil, "", "")
		assert.ErrorIs(t, err, ErrNoImage)
	})

	t.Run("advisor model replaces the client default", func(t *testing.T) {
		var paths []string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			paths = append(paths, r.URL.Path)
			_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"Soft layers suit you."}]}}]}`)
		}))
		defer srv.Close()

		client := llm.NewGeminiClient("k", "gemini-2.5-flash", time.Second, nil).WithBaseURL(srv.URL)

		advice, err := New(client, "gemini-2.5-pro").Consult(ctx, photo, "image/jpeg", "")
		require.NoError(t, err)
		assert.Equal(t, "Soft layers suit you.", advice.Text)

		_, err = New(client, "").Consult(ctx, photo, "image/jpeg", "")
		require.NoError(t, err)

		assert.Equal(t, []string{
			"/models/gemini-2.5-pro:generateContent",
			"/models/gemini-2.5-flash:generateContent",
		}, paths)
	})
}

func TestCategories(t *testing.T) {
	categories := Categories()
	require.Len(t, categories, 6)
	assert.Equal(t, "Classic", categories[0].Name)
	assert.Equal(t, "Romantic", categories[5].Name)
	for _, c := range categories {
		assert.Len(t, c.Styles, 5, c.Name)
	}
}

func advisorRequest(t *testing.T, path string, fields map[string][]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", "client.jpg")
	require.NoError(t, err)
	_, err = fw.Write(photo)
	require.NoError(t, err)
	for name, values := range fields {
		for _, v := range values {
			require.NoError(t, mw.WriteField(name, v))
		}
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandler(t *testing.T) {
	t.Run("recommend", func(t *testing.T) {
		h := Handler{Advisor: New(reply("Looks great"), "")}
		rec := httptest.NewRecorder()
		h.Recommend(rec, advisorRequest(t, "/api/advisor/recommend", map[string][]string{
			"desired_style": {"Wolf Cut"},
			"preferences":   {`{"maintenance":"low"}`},
		}))
		require.Equal(t, http.StatusOK, rec.Code)

		var got struct {
			Status string `json:"status"`
			Advice Advice `json:"advice"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "success", got.Status)
		assert.Equal(t, "Looks great", got.Advice.Text)
	})

	t.Run("bad preferences", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Handler{Advisor: New(reply("x"), "")}.Recommend(rec, advisorRequest(t, "/api/advisor/recommend", map[string][]string{
			"preferences": {"not json"},
		}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("compare accepts comma separated styles", func(t *testing.T) {
		gen := reply("Top choice: Bob")
		rec := httptest.NewRecorder()
		Handler{Advisor: New(gen, "")}.Compare(rec, advisorRequest(t, "/api/advisor/compare", map[string][]string{
			"styles": {"Classic Bob, Pixie Cut", "Afro"},
		}))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, gen.parts[0].Text, "3. Afro")
	})

	t.Run("compare without styles", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Handler{Advisor: New(reply("x"), "")}.Compare(rec, advisorRequest(t, "/api/advisor/compare", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("vendor failure", func(t *testing.T) {
		gen := &mockGenerator{generateFn: func(context.Context, []llm.Part) (string, error) {
			return "", &llm.StatusError{Provider: "gemini", StatusCode: 500, Message: "boom"}
		}}
		rec := httptest.NewRecorder()
		Handler{Advisor: New(gen, "")}.Consult(rec, advisorRequest(t, "/api/advisor/consult", map[string][]string{"kind": {"professional"}}))
		require.Equal(t, http.StatusBadGateway, rec.Code)

		var got failedResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "failed", got.Status)
		assert.Contains(t, got.Error, "boom")
	})

	t.Run("inactive", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Handler{}.Consult(rec, advisorRequest(t, "/api/advisor/consult", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("categories", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Handler{}.Categories(rec, httptest.NewRequest(http.MethodGet, "/api/advisor/categories", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var got []Category
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Len(t, got, 6)
	})
}
