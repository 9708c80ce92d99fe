// Package media cleans attachments before they leave the server.
package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
)

// JPEGQuality is the quality used when re-encoding JPEG attachments.
const JPEGQuality = 92

type codec struct {
	name   string
	decode func(io.Reader) (image.Image, error)
	encode func(io.Writer, image.Image) error
}

var codecs = map[string]codec{
	"image/jpeg": {
		name:   "jpeg",
		decode: jpeg.Decode,
		encode: func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
		},
	},
	"image/png": {
		name:   "png",
		decode: png.Decode,
		encode: png.Encode,
	},
}

// Strippable reports whether StripMetadata rewrites content of this type.
func Strippable(contentType string) bool {
	_, ok := codecs[normalize(contentType)]
	return ok
}

// StripMetadata re-encodes images to remove EXIF, GPS, and other metadata.
// Any other content type (GIF, WebP, PDF, video) is returned unchanged.
func StripMetadata(data []byte, contentType string) ([]byte, error) {
	c, ok := codecs[normalize(contentType)]
	if !ok {
		return data, nil
	}

	img, err := c.decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", c.name, err)
	}
	var buf bytes.Buffer
	if err := c.encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", c.name, err)
	}
	return buf.Bytes(), nil
}

func normalize(contentType string) string {
	ct, _, _ := strings.Cut(contentType, ";")
	ct = strings.ToLower(strings.TrimSpace(ct))
	if ct == "image/jpg" || ct == "image/pjpeg" {
		return "image/jpeg"
	}
	return ct
}
