package prompts

import (
	"encoding/json"
	"fmt"
	"strings"
)

const recommendTemplate = `You are a professional hair styling consultant. Analyze this photo and provide detailed styling recommendations.

The client is interested in: %s

Additional preferences: %s

Please provide:

1. FACE SHAPE ANALYSIS:
- Identified face shape
- Key facial features to consider

2. STYLE COMPATIBILITY (Rate 1-10):
- How well the requested style would suit them
- Specific reasons why

3. RECOMMENDED ADJUSTMENTS:
- How to adapt the style for their features
- Specific modifications needed

4. STYLING TIPS:
- How to achieve this look
- Products needed
- Daily maintenance required

5. ALTERNATIVE SUGGESTIONS:
- 3 other styles that would suit them well
- Why these alternatives work

6. COLOR RECOMMENDATIONS:
- Best hair colors for their skin tone
- If they want highlights/lowlights suggestions

7. PROFESSIONAL NOTES:
- What to tell their hairstylist
- Reference points for the salon

Format the response in clear sections. Be encouraging and professional in tone.`

const compareTemplate = `As a professional hair styling consultant, compare these hairstyle options for this client:

%s

For each style, provide:
- Compatibility score (1-10)
- Key advantages
- Potential challenges
- Maintenance level

Then recommend the TOP choice with detailed reasoning.

Format with clear headers.`

const consultTemplate = `You are an expert hair stylist providing a virtual consultation.

%s

Be specific, encouraging, and professional.
Format with clear sections and bullet points.`

// Consultation kinds.
const (
	ConsultGeneral      = "general"
	ConsultMakeover     = "makeover"
	ConsultProfessional = "professional"
	ConsultSpecialEvent = "special_event"
)

var consultFocus = map[string]string{
	ConsultGeneral: `Provide a comprehensive hair consultation including:
- Current hair analysis
- Face shape and features
- Top 5 recommended styles
- Color suggestions
- Maintenance tips
- Products recommendations`,
	ConsultMakeover: `Suggest a complete hair makeover:
- Dramatic style changes that would work
- Bold color options
- Modern trending styles suitable for them
- Step-by-step transformation plan
- Expected results and timeline`,
	ConsultProfessional: `Recommend professional/office-appropriate styles:
- Conservative yet stylish options
- Easy morning routine styles
- Low-maintenance professional looks
- Polish and sophistication factors`,
	ConsultSpecialEvent: `Suggest special event hairstyles:
- Formal occasion styles
- Wedding guest options
- Party looks
- How to request these at a salon`,
}

// StyleCategories groups well-known hairstyles for browsing.
var StyleCategories = map[string][]string{
	"Classic":      {"Classic Bob", "Sleek Straight", "Soft Waves", "Side Part", "Low Bun"},
	"Modern":       {"Textured Lob", "Shag Cut", "Curtain Bangs", "Wolf Cut", "Butterfly Cut"},
	"Edgy":         {"Pixie Cut", "Undercut", "Asymmetric Bob", "Mohawk Style", "Buzz Cut"},
	"Romantic":     {"Beach Waves", "Loose Curls", "Braided Crown", "Soft Layers", "Hollywood Waves"},
	"Professional": {"Sleek Low Ponytail", "French Twist", "Polished Bob", "Neat Bun", "Shoulder-Length Layers"},
	"Natural":      {"Afro", "Natural Curls", "Protective Styles", "Locs", "Twist Out"},
}

// RecommendPrompt builds the face analysis and recommendation request.
func RecommendPrompt(desiredStyle string, preferences map[string]string) string {
	prefs := "None specified"
	if len(preferences) > 0 {
		if encoded, err := json.Marshal(preferences); err == nil {
			prefs = string(encoded)
		}
	}
	return fmt.Sprintf(recommendTemplate, strings.TrimSpace(desiredStyle), prefs)
}

// ComparePrompt builds the numbered comparison request.
func ComparePrompt(styles []string) string {
	lines := make([]string, 0, len(styles))
	for i, style := range styles {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, strings.TrimSpace(style)))
	}
	return fmt.Sprintf(compareTemplate, strings.Join(lines, "\n"))
}

// ConsultKind normalises a consultation kind, defaulting to general.
func ConsultKind(kind string) string {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if _, ok := consultFocus[kind]; ok {
		return kind
	}
	return ConsultGeneral
}

// ConsultPrompt builds the virtual consultation request for the given kind.
func ConsultPrompt(kind string) string {
	return fmt.Sprintf(consultTemplate, consultFocus[ConsultKind(kind)])
}
