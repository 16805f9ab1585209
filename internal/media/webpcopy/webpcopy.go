// Package webpcopy produces WebP copies of generated images. It needs cgo and libwebp.
package webpcopy

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

// Encoder returns a converter bound to a quality setting.
func Encoder(quality float32) func([]byte) ([]byte, error) {
	return func(data []byte) ([]byte, error) {
		return Encode(data, quality)
	}
}

// Encode converts a PNG or JPEG payload to lossy WebP.
func Encode(data []byte, quality float32) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("webp: decode image: %w", err)
	}

	if quality <= 0 || quality > 100 {
		quality = 80
	}
	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, quality)
	if err != nil {
		return nil, fmt.Errorf("webp: webp options: %w", err)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, options); err != nil {
		return nil, fmt.Errorf("webp: encode webp: %w", err)
	}
	return buf.Bytes(), nil
}
