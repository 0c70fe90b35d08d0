package raster

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// createTestGrayPNG encodes a 16-bit grayscale PNG with the given samples.
func createTestGrayPNG(t *testing.T, width, height int, samples []uint16) []byte {
	t.Helper()

	img := image.NewGray16(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray16(x, y, color.Gray16{Y: samples[y*width+x]})
		}
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encoding test PNG: %v", err)
	}
	return buf.Bytes()
}

// createTestTerrariumPNG encodes heights in meters as Terrarium RGB pixels.
func createTestTerrariumPNG(t *testing.T, width, height int, meters []float64) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := (meters[y*width+x] + 32768) * 256
			n := uint32(v)
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(n >> 16),
				G: uint8(n >> 8),
				B: uint8(n),
				A: 255,
			})
		}
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encoding test PNG: %v", err)
	}
	return buf.Bytes()
}

func TestParseHeightPNG_Gray16(t *testing.T) {
	data := createTestGrayPNG(t, 2, 2, []uint16{0, 1000, 30000, 65535})

	grid, err := ParseHeightPNG(data, 0)
	if err != nil {
		t.Fatalf("ParseHeightPNG failed: %v", err)
	}

	if grid.Width != 2 || grid.Height != 2 {
		t.Fatalf("expected 2x2 grid, got %dx%d", grid.Width, grid.Height)
	}

	if got := grid.At(1, 0); got != 1000 {
		t.Errorf("expected raw sample 1000 at (1,0), got %f", got)
	}
	if got := grid.At(1, 1); got != 65535 {
		t.Errorf("expected raw sample 65535 at (1,1), got %f", got)
	}
	if !grid.IsNoData(0, 0) {
		t.Error("expected raw value 0 to match the no-data sentinel")
	}
}

func TestParseHeightPNG_RejectsColor(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encoding test PNG: %v", err)
	}

	_, err := ParseHeightPNG(buf.Bytes(), 0)
	if !errors.Is(err, ErrInvalidPNGDepth) {
		t.Errorf("expected ErrInvalidPNGDepth, got %v", err)
	}
}

func TestParseHeightPNG_Empty(t *testing.T) {
	_, err := ParseHeightPNG(nil, 0)
	if !errors.Is(err, ErrEmptyRaster) {
		t.Errorf("expected ErrEmptyRaster, got %v", err)
	}
}

func TestParseTerrariumPNG_DecodesMeters(t *testing.T) {
	meters := []float64{0, 8848, -415, 120.5}
	data := createTestTerrariumPNG(t, 2, 2, meters)

	grid, err := ParseTerrariumPNG(data)
	if err != nil {
		t.Fatalf("ParseTerrariumPNG failed: %v", err)
	}

	// Terrarium quantizes to 1/256 m.
	const eps = 1.0 / 256
	for i, want := range meters {
		got := float64(grid.Values[i])
		if got < want-eps || got > want+eps {
			t.Errorf("sample %d: expected %f m, got %f m", i, want, got)
		}
	}

	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if grid.IsNoData(x, y) {
				t.Errorf("expected no no-data cells, got one at (%d,%d)", x, y)
			}
		}
	}
}
