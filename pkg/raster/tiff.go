package raster

import (
	"bytes"
	"fmt"
	"image"
	"os"

	"golang.org/x/image/tiff"
)

// ParseTIFF parses a grayscale TIFF elevation raster from raw bytes.
//
// Only integer grayscale TIFFs are supported; floating-point sample formats
// are rejected by the decoder. Samples are returned as raw 16-bit values
// (8-bit sources are widened); converting them to meters is the caller's
// concern. noData is the raw sample value marking unmeasured cells.
func ParseTIFF(data []byte, noData float32) (*Grid, error) {
	if len(data) == 0 {
		return nil, ErrEmptyRaster
	}

	img, err := tiff.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding TIFF: %w", err)
	}

	switch img.(type) {
	case *image.Gray, *image.Gray16:
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedTIFF, img)
	}

	b := img.Bounds()
	grid := &Grid{
		Width:  b.Dx(),
		Height: b.Dy(),
		Values: make([]float32, b.Dx()*b.Dy()),
		NoData: noData,
	}

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v, _, _, _ := img.At(x, y).RGBA()
			grid.Values[i] = float32(v)
			i++
		}
	}

	return grid, nil
}

// ParseTIFFFile parses a TIFF elevation raster file from disk.
func ParseTIFFFile(path string, noData float32) (*Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading TIFF file: %w", err)
	}
	return ParseTIFF(data, noData)
}
