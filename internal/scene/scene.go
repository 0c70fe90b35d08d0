// Package scene encodes tile geometry into scene payloads: binary glTF
// directly, or wrapped in a b3dm container. Textures are JPEG or PNG
// encoded and embedded in the payload buffer.
package scene

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
)

// Encode errors.
var (
	ErrEmptyMesh = errors.New("mesh has no triangles")
	ErrNoTexture = errors.New("no texture for requested bounds")
)

// DefaultJPEGQuality is used when the configured quality is out of range.
const DefaultJPEGQuality = 85

// Texture is an encoded image ready for embedding.
type Texture struct {
	Data []byte
	MIME string
}

// EncodeJPEG compresses an image into an embeddable JPEG texture.
func EncodeJPEG(img image.Image, quality int) (*Texture, error) {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encoding jpeg texture: %w", err)
	}
	return &Texture{Data: buf.Bytes(), MIME: "image/jpeg"}, nil
}

// EncodePNG compresses an image into an embeddable PNG texture.
func EncodePNG(img image.Image) (*Texture, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png texture: %w", err)
	}
	return &Texture{Data: buf.Bytes(), MIME: "image/png"}, nil
}
