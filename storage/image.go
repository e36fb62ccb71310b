package storage

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// Images larger than this on either axis are scaled down before upload.
// Smaller images are never enlarged.
const maxImageDimension = 1920

const jpegQuality = 85

// ProcessImage decodes an uploaded image, scales it to fit the maximum
// dimensions, and re-encodes it as JPEG. Returns an error for data that is
// not a decodable image.
func ProcessImage(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxImageDimension || bounds.Dy() > maxImageDimension {
		img = imaging.Fit(img, maxImageDimension, maxImageDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
