package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/chewxy/math32"
)

// ParseHeightPNG parses a grayscale height PNG from raw bytes.
//
// Samples are returned as raw 16-bit values (8-bit sources are widened);
// converting them to meters is the caller's concern. noData is the raw
// sample value marking unmeasured cells.
func ParseHeightPNG(data []byte, noData float32) (*Grid, error) {
	img, err := decodePNG(data)
	if err != nil {
		return nil, err
	}

	switch img.(type) {
	case *image.Gray, *image.Gray16:
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidPNGDepth, img)
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
			// RGBA returns the gray value widened to 16 bits.
			v, _, _, _ := img.At(x, y).RGBA()
			grid.Values[i] = float32(v)
			i++
		}
	}

	return grid, nil
}

// ParseTerrariumPNG parses a Terrarium-encoded RGB elevation PNG from raw
// bytes. Heights decode to meters as (R*256 + G + B/256) - 32768. The
// encoding has no no-data sentinel; the returned grid uses NaN, which no
// pixel produces.
func ParseTerrariumPNG(data []byte) (*Grid, error) {
	img, err := decodePNG(data)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	grid := &Grid{
		Width:  b.Dx(),
		Height: b.Dy(),
		Values: make([]float32, b.Dx()*b.Dy()),
		NoData: math32.NaN(),
	}

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			r8 := float32(r >> 8)
			g8 := float32(g >> 8)
			b8 := float32(bl >> 8)
			grid.Values[i] = r8*256 + g8 + b8/256 - 32768
			i++
		}
	}

	return grid, nil
}

// ParseHeightPNGFile parses a grayscale height PNG file from disk.
func ParseHeightPNGFile(path string, noData float32) (*Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading height PNG file: %w", err)
	}
	return ParseHeightPNG(data, noData)
}

// ParseTerrariumPNGFile parses a Terrarium PNG file from disk.
func ParseTerrariumPNGFile(path string) (*Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading Terrarium PNG file: %w", err)
	}
	return ParseTerrariumPNG(data)
}

func decodePNG(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyRaster
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding PNG: %w", err)
	}
	return img, nil
}
