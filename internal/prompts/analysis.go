package prompts

import "strings"

const analysisPrompt = `You are a professional hairstylist. Describe ONLY the hairstyle in this image so another stylist could recreate it exactly.
Cover, in one compact paragraph:
- length and overall cut
- hair color, including highlights or gradients
- texture (straight, wavy, curly, coily)
- parting position
- layering
- bangs or fringe
- volume and shape
Do not describe the person's face, clothing or background.`

// FallbackDescription replaces an analysis that is too short or reads like a refusal.
const FallbackDescription = "the hairstyle shown in the reference image with all its characteristics"

const minAnalysisLength = 50

var refusalMarkers = []string{
	"cannot analyze",
	"can't analyze",
	"unable to analyze",
	"cannot help",
	"can't help",
	"sorry",
	"i apologize",
	"i cannot",
	"i can't",
}

// AnalysisPrompt asks a vision model to describe a reference hairstyle.
func AnalysisPrompt() string {
	return analysisPrompt
}

// IsRefusal reports whether an analysis text should be discarded.
func IsRefusal(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < minAnalysisLength {
		return true
	}
	lower := strings.ToLower(trimmed)
	for _, marker := range refusalMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// SanitizeAnalysis returns the analysis text, or the generic fallback when it is unusable.
func SanitizeAnalysis(text string) string {
	if IsRefusal(text) {
		return FallbackDescription
	}
	return strings.TrimSpace(text)
}
