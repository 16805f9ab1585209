package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextPrompt(t *testing.T) {
	t.Run("option values appear verbatim", func(t *testing.T) {
		opts := Options{
			HairLength:  "Short",
			HairColor:   "Blonde",
			HairTexture: "Wavy",
			Occasion:    "Wedding",
			FaceShape:   "Oval",
			Maintenance: "Low maintenance",
		}
		prompt := TextPrompt("Classic bob", opts)

		assert.Contains(t, prompt, "Classic bob")
		assert.Contains(t, prompt, "Hair length: Short")
		assert.Contains(t, prompt, "Hair color: Blonde")
		assert.Contains(t, prompt, "Hair texture: Wavy")
		assert.Contains(t, prompt, "Styled for: Wedding")
		assert.Contains(t, prompt, "Optimized for Oval face shape")
		assert.Contains(t, prompt, "Maintenance level: Low maintenance")
	})

	t.Run("defaults are skipped", func(t *testing.T) {
		opts := Options{
			HairLength:  "Medium",
			HairColor:   "Keep Natural",
			HairTexture: "Natural",
			Occasion:    "Everyday",
			FaceShape:   "Auto-detect",
		}
		prompt := TextPrompt("Pixie cut", opts)

		assert.NotContains(t, prompt, "Hair length:")
		assert.NotContains(t, prompt, "Hair color:")
		assert.NotContains(t, prompt, "Styled for:")
		assert.Contains(t, prompt, naturalAdaptation)
	})

	t.Run("override replaces everything", func(t *testing.T) {
		prompt := TextPrompt("Pixie cut", Options{PromptOverride: "just do it", HairColor: "Red"})
		assert.Equal(t, "just do it", prompt)
	})
}

func TestTransferPrompt(t *testing.T) {
	prompt := strings.ToLower(TransferPrompt(Options{}))
	assert.Contains(t, prompt, "preserve")
	assert.Contains(t, prompt, "transfer")
	assert.Contains(t, prompt, "skin tone")

	assert.Equal(t, "custom", TransferPrompt(Options{PromptOverride: "  custom "}))
	assert.Contains(t, TryOnPrompt(Options{}), "Virtual Hair Try-On")
	assert.NotContains(t, TransferPrompt(Options{}), "Styling preferences")
}

func TestReferencePromptsCarryOptions(t *testing.T) {
	opts := Options{HairColor: "Blonde", HairLength: "Short", Occasion: "Wedding", PreserveColor: true}
	for name, prompt := range map[string]string{
		"transfer": TransferPrompt(opts),
		"try-on":   TryOnPrompt(opts),
		"edit":     EditPrompt("", opts, true),
	} {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, prompt, "Styling preferences: ")
			assert.Contains(t, prompt, "Hair color: Blonde")
			assert.Contains(t, prompt, "Hair length: Short")
			assert.Contains(t, prompt, "Styled for: Wedding")
			assert.Contains(t, prompt, keepColorNote)
		})
	}

	t.Run("edit with description keeps the color note", func(t *testing.T) {
		prompt := EditPrompt("curly", Options{HairColor: "Blonde", PreserveColor: true}, true)
		assert.Contains(t, prompt, "Hair color: Blonde")
		assert.Contains(t, prompt, keepColorNote)
	})

	t.Run("override wins", func(t *testing.T) {
		assert.Equal(t, "only this", TransferPrompt(Options{PromptOverride: "only this", HairColor: "Blonde"}))
	})
}

func TestEditPrompt(t *testing.T) {
	t.Run("reference without instruction uses transfer task", func(t *testing.T) {
		prompt := EditPrompt("", Options{}, true)
		assert.True(t, strings.HasPrefix(prompt, "HAIR TRANSFER TASK"))
		assert.Contains(t, prompt, "Preserve")
		assert.Contains(t, prompt, "transfer")
	})

	t.Run("single image default", func(t *testing.T) {
		assert.Equal(t, singleImageTask, EditPrompt("", Options{}, false))
	})

	t.Run("description with style and custom requirements", func(t *testing.T) {
		prompt := EditPrompt("a bob with bangs", Options{Style: StyleColor, CustomInstructions: "no fringe", HairColor: "Blonde"}, false)
		assert.Contains(t, prompt, "Transform this person's hairstyle to: a bob with bangs.")
		assert.Contains(t, prompt, StyleInstruction(StyleColor))
		assert.Contains(t, prompt, "Hair color: Blonde")
		assert.Contains(t, prompt, "Additional requirements: no fringe")
		assert.True(t, strings.HasSuffix(prompt, "Only change the hair."))
	})

	t.Run("reference with description is prefixed", func(t *testing.T) {
		prompt := EditPrompt("curly", Options{}, true)
		assert.True(t, strings.HasPrefix(prompt, referenceTransferPrefix))
		assert.NotContains(t, prompt, preservationSuffix)
	})
}

func TestSanitizeAnalysis(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"refusal", "Sorry, I cannot analyze this.", FallbackDescription},
		{"too short", "Short bob.", FallbackDescription},
		{"apology inside long text", "I apologize, but describing people in images is something I will not do for this request.", FallbackDescription},
		{"usable", "Chin-length blunt bob, dark brown with subtle caramel highlights, straight texture, deep side part, no bangs.", "Chin-length blunt bob, dark brown with subtle caramel highlights, straight texture, deep side part, no bangs."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeAnalysis(tt.in))
		})
	}
}

func TestWithAnalysis(t *testing.T) {
	assert.Equal(t, "base", WithAnalysis("base", "  "))
	assert.Contains(t, WithAnalysis("base", "long waves"), "long waves")
}

func TestCatalog(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		catalog := DefaultCatalog()
		assert.Len(t, catalog.List(), 20)
		tpl, ok := catalog.Lookup("bob cut")
		require.True(t, ok)
		assert.Contains(t, tpl.Description, "chin-length")
	})

	t.Run("resolve prefers free text", func(t *testing.T) {
		catalog := DefaultCatalog()
		assert.Equal(t, "my own", catalog.ResolveDescription(" my own ", "Bob Cut"))
		assert.Contains(t, catalog.ResolveDescription("", "Pixie Cut"), "pixie")
		assert.Empty(t, catalog.ResolveDescription("", "Unknown"))
	})

	t.Run("yaml overrides and extends", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "templates.yaml")
		content := "templates:\n  - name: Bob Cut\n    description: Jaw-length bob\n  - name: Wolf Cut\n    description: Shaggy mullet-inspired layers\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		catalog, err := LoadCatalog(path)
		require.NoError(t, err)

		tpl, ok := catalog.Lookup("Bob Cut")
		require.True(t, ok)
		assert.Equal(t, "Jaw-length bob", tpl.Description)
		assert.Len(t, catalog.List(), 21)
	})

	t.Run("missing file yields defaults", func(t *testing.T) {
		catalog, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Len(t, catalog.List(), 20)
	})
}

func TestAdvisorPrompts(t *testing.T) {
	assert.Contains(t, RecommendPrompt("Pixie Cut", nil), "None specified")
	assert.Contains(t, RecommendPrompt("Pixie Cut", map[string]string{"color": "red"}), `"color":"red"`)
	assert.Contains(t, ComparePrompt([]string{"Bob", "Pixie"}), "2. Pixie")
	assert.Equal(t, ConsultGeneral, ConsultKind("unknown"))
	assert.Contains(t, ConsultPrompt("makeover"), "Bold color options")
	assert.Len(t, StyleCategories, 6)
}

func TestOptionsFromMap(t *testing.T) {
	opts := OptionsFromMap(map[string]string{
		"hair_color":     " Blonde ",
		"preserve_color": "on",
		"style":          StyleCreative,
		"ignored":        "x",
	})
	assert.Equal(t, "Blonde", opts.HairColor)
	assert.True(t, opts.PreserveColor)
	assert.False(t, opts.AgeAppropriate)
	assert.Equal(t, StyleCreative, opts.Style)
}
