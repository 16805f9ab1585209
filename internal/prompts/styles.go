package prompts

import (
	"fmt"
	"strings"
)

// Generation styles steer how freely a backend may reinterpret the hairstyle.
const (
	StyleNatural  = "Natural Hair Transfer"
	StyleCreative = "Creative Style Fusion"
	StyleColor    = "Color Adaptation"
)

// Styles lists the generation styles in display order.
var Styles = []string{StyleNatural, StyleCreative, StyleColor}

const (
	referenceTransferTask = "HAIR TRANSFER TASK: Take the hairstyle from Image 2 and apply it to the person in Image 1. " +
		"Copy the EXACT hair color, length, texture, style, cut, and shape from the reference image (Image 2) onto the person (Image 1). " +
		"Replace ALL of the person's hair with the reference hairstyle. " +
		"Preserve everything else about the person unchanged and transfer only their hair to match the reference exactly."
	referenceTransferPrefix = "HAIR TRANSFER TASK: Take the hairstyle from the second image and put it on the person in the first image. "
	singleImageTask         = "Transform this person's hairstyle. Keep all facial features, skin tone, clothing, and background exactly the same. " +
		"Only change the hair naturally and realistically."
	preservationSuffix = " Keep all facial features, skin tone, clothing, and background exactly the same. Only change the hair."
)

// StyleInstruction returns the sentence that expresses a generation style.
func StyleInstruction(style string) string {
	switch strings.TrimSpace(style) {
	case StyleCreative:
		return "Adapt the hairstyle creatively to suit their face shape and features. Make it unique while keeping their identity intact."
	case StyleColor:
		return "Adapt the hair color to complement their skin tone for the most flattering result."
	default:
		return "Apply the transformation naturally and realistically."
	}
}

// EditInstruction composes the caller-provided part of an edit prompt from the
// description, generation style and custom instructions. It returns "" when
// nothing was supplied so the backend default applies.
func EditInstruction(description string, opts Options, hasReference bool) string {
	if override := strings.TrimSpace(opts.PromptOverride); override != "" {
		return override
	}

	var prompt string
	if desc := strings.TrimSpace(description); desc != "" {
		prompt = fmt.Sprintf("Transform this person's hairstyle to: %s. %s", desc, StyleInstruction(opts.Style))
		if details := detailsWithoutCustom(opts); details != "" {
			prompt += " " + details + "."
		}
	}
	if custom := strings.TrimSpace(opts.CustomInstructions); custom != "" {
		if prompt != "" {
			prompt += " Additional requirements: " + custom
		} else {
			prompt = custom
		}
	}
	if prompt != "" && !hasReference {
		prompt += preservationSuffix
	}
	return prompt
}

// EditPrompt returns the full instruction for the DashScope image-edit model.
func EditPrompt(description string, opts Options, hasReference bool) string {
	instruction := EditInstruction(description, opts, hasReference)
	if hasReference {
		if strings.TrimSpace(opts.PromptOverride) == "" && strings.TrimSpace(description) == "" {
			return WithPreferences(referenceTransferTask, opts)
		}
		if opts.PreserveColor && strings.TrimSpace(opts.PromptOverride) == "" {
			instruction += "\n" + keepColorNote
		}
		return referenceTransferPrefix + instruction
	}
	if instruction == "" {
		return singleImageTask
	}
	return instruction
}

func detailsWithoutCustom(opts Options) string {
	opts.CustomInstructions = ""
	return opts.Details()
}
