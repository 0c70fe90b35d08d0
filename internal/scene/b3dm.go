package scene

import (
	"encoding/binary"
	"io"

	"github.com/arpentry/relief/internal/mesh"
)

const (
	b3dmMagic      = "b3dm"
	b3dmVersion    = 1
	b3dmHeaderSize = 28
)

// featureTable declares zero batched models, the form plain terrain
// tiles take.
const featureTable = `{"BATCH_LENGTH":0}`

// WrapB3DM wraps a binary glTF payload in a b3dm container. The feature
// table is padded with spaces and the glTF body with zero bytes so both
// start and end on 8-byte boundaries.
func WrapB3DM(glb []byte) []byte {
	ft := []byte(featureTable)
	for (b3dmHeaderSize+len(ft))%8 != 0 {
		ft = append(ft, ' ')
	}

	bodyPad := 0
	for (len(glb)+bodyPad)%8 != 0 {
		bodyPad++
	}

	total := b3dmHeaderSize + len(ft) + len(glb) + bodyPad
	out := make([]byte, 0, total)

	out = append(out, b3dmMagic...)
	out = binary.LittleEndian.AppendUint32(out, b3dmVersion)
	out = binary.LittleEndian.AppendUint32(out, uint32(total))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(ft)))
	out = binary.LittleEndian.AppendUint32(out, 0)
	out = binary.LittleEndian.AppendUint32(out, 0)
	out = binary.LittleEndian.AppendUint32(out, 0)
	out = append(out, ft...)
	out = append(out, glb...)
	out = append(out, make([]byte, bodyPad)...)

	return out
}

// B3DM encodes tile geometry as a b3dm payload.
func B3DM(geom *mesh.Geometry, indices []uint32, tex *Texture) ([]byte, error) {
	glb, err := GLB(geom, indices, tex)
	if err != nil {
		return nil, err
	}
	return WrapB3DM(glb), nil
}

// WriteB3DM encodes tile geometry as b3dm to a writer.
func WriteB3DM(w io.Writer, geom *mesh.Geometry, indices []uint32, tex *Texture) error {
	data, err := B3DM(geom, indices, tex)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
