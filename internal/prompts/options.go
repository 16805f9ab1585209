package prompts

import (
	"fmt"
	"strconv"
	"strings"
)

// Options are the styling preferences a caller can attach to a transform.
type Options struct {
	PromptOverride     string `json:"prompt_override,omitempty"`
	Template           string `json:"template,omitempty"`
	HairLength         string `json:"hair_length,omitempty"`
	HairColor          string `json:"hair_color,omitempty"`
	HairTexture        string `json:"hair_texture,omitempty"`
	Occasion           string `json:"occasion,omitempty"`
	FaceShape          string `json:"face_shape,omitempty"`
	Maintenance        string `json:"maintenance,omitempty"`
	PreserveColor      bool   `json:"preserve_color,omitempty"`
	AgeAppropriate     bool   `json:"age_appropriate,omitempty"`
	Style              string `json:"style,omitempty"`
	CustomInstructions string `json:"custom_instructions,omitempty"`
}

// Allowed values offered to clients. Values outside these lists are still passed through.
var (
	HairLengths       = []string{"Very Short", "Short", "Medium", "Long", "Very Long"}
	HairColors        = []string{"Keep Natural", "Black", "Brown", "Blonde", "Red", "Gray/Silver", "Highlights", "Ombre", "Balayage"}
	HairTextures      = []string{"Natural", "Straight", "Wavy", "Curly", "Coily", "Kinky"}
	Occasions         = []string{"Everyday", "Professional/Office", "Formal Event", "Casual", "Wedding", "Photo Shoot"}
	FaceShapes        = []string{"Auto-detect", "Oval", "Round", "Square", "Heart", "Diamond", "Oblong"}
	MaintenanceLevels = []string{"Low maintenance", "Moderate maintenance", "High maintenance styling OK"}
)

const (
	defaultLength    = "Medium"
	defaultColor     = "Keep Natural"
	defaultTexture   = "Natural"
	defaultOccasion  = "Everyday"
	defaultFaceShape = "Auto-detect"
)

// OptionsFromMap reads the recognised option names from a flat key/value map,
// as submitted by forms and the CLI. Unknown keys are ignored.
func OptionsFromMap(values map[string]string) Options {
	get := func(key string) string { return strings.TrimSpace(values[key]) }
	return Options{
		PromptOverride:     get("prompt_override"),
		Template:           get("template"),
		HairLength:         get("hair_length"),
		HairColor:          get("hair_color"),
		HairTexture:        get("hair_texture"),
		Occasion:           get("occasion"),
		FaceShape:          get("face_shape"),
		Maintenance:        get("maintenance"),
		PreserveColor:      parseBool(get("preserve_color")),
		AgeAppropriate:     parseBool(get("age_appropriate")),
		Style:              get("style"),
		CustomInstructions: get("custom_instructions"),
	}
}

// Details renders the informational option strings, skipping values left at their defaults.
func (o Options) Details() string {
	var details []string
	if v := strings.TrimSpace(o.HairLength); v != "" && v != defaultLength {
		details = append(details, fmt.Sprintf("Hair length: %s", v))
	}
	if v := strings.TrimSpace(o.HairColor); v != "" && v != defaultColor {
		details = append(details, fmt.Sprintf("Hair color: %s", v))
	}
	if o.PreserveColor {
		details = append(details, "Keep the natural hair color")
	}
	if v := strings.TrimSpace(o.HairTexture); v != "" && v != defaultTexture {
		details = append(details, fmt.Sprintf("Hair texture: %s", v))
	}
	if v := strings.TrimSpace(o.Occasion); v != "" && v != defaultOccasion {
		details = append(details, fmt.Sprintf("Styled for: %s", v))
	}
	if v := strings.TrimSpace(o.FaceShape); v != "" && v != defaultFaceShape {
		details = append(details, fmt.Sprintf("Optimized for %s face shape", v))
	}
	if v := strings.TrimSpace(o.Maintenance); v != "" {
		details = append(details, fmt.Sprintf("Maintenance level: %s", v))
	}
	if o.AgeAppropriate {
		details = append(details, "Suggest age-appropriate adaptations")
	}
	if v := strings.TrimSpace(o.CustomInstructions); v != "" {
		details = append(details, v)
	}
	return strings.Join(details, ". ")
}

func parseBool(raw string) bool {
	switch strings.ToLower(raw) {
	case "on", "yes":
		return true
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return parsed
}
