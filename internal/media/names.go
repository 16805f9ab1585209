package media

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimestampName builds names like styled_20250102_150405.png.
func TimestampName(prefix string, at time.Time, mimeType string) string {
	return fmt.Sprintf("%s_%s%s", prefix, at.Format("20060102_150405"), ExtensionFor(mimeType))
}

// UUIDName builds names like generated_hair_1a2b3c4d.png.
func UUIDName(prefix, mimeType string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s_%s%s", prefix, id[:8], ExtensionFor(mimeType))
}

// ExtensionFor maps an image MIME type to a file extension, defaulting to .png.
func ExtensionFor(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	switch mimeType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
