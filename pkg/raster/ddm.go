package raster

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// ParseDDM parses a DDM elevation grid from raw bytes.
//
// DDM is a headerless dump of little-endian float32 elevation samples in
// meters, row-major with row 0 at the north edge. The grid is square; the
// side length is inferred from the byte count. The no-data sentinel is not
// part of the format and must be supplied by the caller.
func ParseDDM(data []byte, noData float32) (*Grid, error) {
	if len(data) == 0 {
		return nil, ErrEmptyRaster
	}
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of float32 samples", ErrInvalidDDMSize, len(data))
	}

	count := len(data) / 4
	side := int(math.Sqrt(float64(count)))
	if side*side != count {
		return nil, fmt.Errorf("%w: %d samples do not form a square grid", ErrInvalidDDMSize, count)
	}

	values := make([]float32, count)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &values); err != nil {
		return nil, fmt.Errorf("reading DDM samples: %w", err)
	}

	return &Grid{
		Width:  side,
		Height: side,
		Values: values,
		NoData: noData,
	}, nil
}

// ParseDDMFile parses a DDM file from disk.
func ParseDDMFile(path string, noData float32) (*Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading DDM file: %w", err)
	}
	return ParseDDM(data, noData)
}
