// Package thumbnail scales receipt images for the proof overlay.
package thumbnail

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"

	"github.com/garyjia/billed/internal/application/port"
)

// Resizer implements port.ImageResizer with imaging
type Resizer struct{}

// NewResizer creates a new Resizer
func NewResizer() *Resizer {
	return &Resizer{}
}

// Resize scales data down to maxWidth keeping its aspect ratio. Images
// already narrow enough are returned untouched. PNG stays PNG, everything
// else is re-encoded as JPEG.
func (r *Resizer) Resize(data []byte, contentType string, maxWidth int) ([]byte, string, error) {
	if maxWidth <= 0 {
		return data, contentType, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	if img.Bounds().Dx() <= maxWidth {
		return data, contentType, nil
	}

	resized := imaging.Resize(img, maxWidth, 0, imaging.Lanczos)

	format, outType := imaging.JPEG, "image/jpeg"
	if contentType == "image/png" {
		format, outType = imaging.PNG, "image/png"
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format); err != nil {
		return nil, "", fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), outType, nil
}

var _ port.ImageResizer = (*Resizer)(nil)
