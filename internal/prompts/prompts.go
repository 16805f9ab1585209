package prompts

import (
	"fmt"
	"strings"
)

const salonTransferPrompt = `Create a professional hair styling visualization for salon consultation purposes.

Context: This is a legitimate hair salon styling tool to help customers visualize different hairstyles before making a decision. This is for professional beauty consultation only.

Task: Transfer the hairstyle from the reference onto the customer while you preserve everything else about them.

Input Analysis:
- Image 1: Customer portrait for professional styling consultation (source person)
- Image 2: Reference hairstyle from a style catalog (target hairstyle)

Professional Styling Requirements:
1. Preserve the customer's face, facial identity, skin, pose and background exactly as they are
2. Transfer only the hairstyle shape, texture, length and parting from the reference
3. Adapt the hair color naturally to the customer's skin tone
4. Show realistic hair texture and movement
5. Create a professional salon-quality visualization

Output: A professional styling visualization suitable for salon consultation, showing the proposed hairstyle in a realistic and helpful manner for the customer's styling decision.`

const virtualTryOnPrompt = `Task: Virtual Hair Try-On with Precise Feature Preservation

PRIMARY OBJECTIVE: Transfer ONLY the hairstyle from Image 2 to the person in Image 1.

CRITICAL PRESERVATION REQUIREMENTS (DO NOT ALTER):
1. Facial Features - MUST remain 100% identical:
   - Exact same face shape and bone structure
   - Original eye shape, size, color, and position
   - Original nose shape and size
   - Original mouth and lips exactly as they are
   - Original skin tone and texture
   - All facial marks, moles, or distinguishing features
   - Original facial expressions

2. Physical Attributes to PRESERVE:
   - Body position and pose
   - Clothing and accessories
   - Background environment
   - Image quality and lighting on the face
   - Person's age appearance
   - Gender presentation
   - Ethnic features

HAIR TRANSFER REQUIREMENTS (FROM IMAGE 2):
1. Hair Style Elements to Transfer:
   - Overall hair shape and volume
   - Hair length (short/medium/long)
   - Hair texture (straight/wavy/curly/kinky)
   - Hair parting style and position
   - Bangs or fringe style if present
   - Hair flow direction and movement

2. Hair Color Adaptation:
   - Transfer the hairstyle SHAPE but adapt the color naturally
   - If the reference has an unnatural color (blue, pink, etc.), adapt it to look realistic on the person
   - Ensure the hair color looks natural with the person's skin tone

3. Natural Integration:
   - Hair should look like it naturally grows from the person's scalp
   - Hairline should match the person's natural hairline
   - Hair should cast appropriate shadows on face and shoulders
   - Hair edges should blend seamlessly, no harsh cutouts

QUALITY REQUIREMENTS:
- Output must be photorealistic
- No artifacts or distortions on the face
- Natural lighting consistency between hair and face
- Professional photography quality

Image 1 (User Photo): The person whose appearance must be preserved
Image 2 (Hairstyle Reference): Source for the hairstyle only

Generate a single, high-quality image showing the person from Image 1 with the hairstyle from Image 2,
maintaining absolute fidelity to the person's facial features and identity.`

const textStylingTemplate = `Professional Salon Styling Request:

Task: Create a professional hair styling visualization based on the following specifications.

Customer has requested this hairstyle:
%s

Additional styling preferences:
%s

Professional Requirements:
- This is for a licensed salon consultation
- Show how the requested hairstyle would look professionally styled
- Preserve the customer's natural facial features, skin and background
- Transfer only the described hairstyle onto the customer
- Ensure the style looks realistic and achievable
- Professional salon-quality visualization

Create a styling visualization showing the requested hairstyle.`

const naturalAdaptation = "Natural adaptation to suit the customer's features"

// Role labels placed in front of each image so vendor models do not swap subject and reference.
const (
	SourceLabel = "PERSON TO TRANSFORM (Image 1, source person):"
	TargetLabel = "TARGET HAIRSTYLE REFERENCE (Image 2, target hairstyle):"
)

// TransferPrompt returns the instruction for a two-image transfer. A non-empty
// PromptOverride replaces the default entirely.
func TransferPrompt(opts Options) string {
	if override := strings.TrimSpace(opts.PromptOverride); override != "" {
		return override
	}
	return WithPreferences(salonTransferPrompt, opts)
}

// TryOnPrompt is the feature-preservation prompt used by the chat-completions backend.
func TryOnPrompt(opts Options) string {
	if override := strings.TrimSpace(opts.PromptOverride); override != "" {
		return override
	}
	return WithPreferences(virtualTryOnPrompt, opts)
}

// TextPrompt builds the description-driven prompt. Without an override the
// option strings are layered under the description.
func TextPrompt(description string, opts Options) string {
	if override := strings.TrimSpace(opts.PromptOverride); override != "" {
		return override
	}
	details := opts.Details()
	if details == "" {
		details = naturalAdaptation
	}
	return fmt.Sprintf(textStylingTemplate, strings.TrimSpace(description), details)
}

const keepColorNote = "IMPORTANT: Keep the original hair color from the first image, only change the style and shape."

// WithPreferences appends the caller's styling options to a reference-image prompt.
func WithPreferences(prompt string, opts Options) string {
	if opts.PreserveColor {
		prompt += "\n" + keepColorNote
	}
	if details := opts.Details(); details != "" {
		prompt += "\n\nStyling preferences: " + details + "."
	}
	return prompt
}

// WithAnalysis appends a pre-analysed description of the reference hairstyle.
func WithAnalysis(prompt, analysis string) string {
	analysis = strings.TrimSpace(analysis)
	if analysis == "" {
		return prompt
	}
	return fmt.Sprintf("%s\n\nTarget hairstyle to transfer (from the reference analysis):\n%s", prompt, analysis)
}
