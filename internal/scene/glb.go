package scene

import (
	"bytes"
	"fmt"
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/arpentry/relief/internal/mesh"
)

// WriteGLB encodes tile geometry as binary glTF. Coordinates are emitted
// as given, Y up. Index width follows vertex count: 16 bit up to 65535
// vertices, 32 bit above. A nil texture produces an untextured material.
func WriteGLB(w io.Writer, geom *mesh.Geometry, indices []uint32, tex *Texture) error {
	if len(indices) == 0 {
		return ErrEmptyMesh
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = "relief"

	attrs := map[string]int{
		gltf.POSITION:   modeler.WritePosition(doc, vec3s(geom.Positions)),
		gltf.NORMAL:     modeler.WriteNormal(doc, vec3s(geom.Normals)),
		gltf.TEXCOORD_0: modeler.WriteTextureCoord(doc, vec2s(geom.UVs)),
	}

	material := &gltf.Material{
		Name: "terrain",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			MetallicFactor:  gltf.Float(0),
			RoughnessFactor: gltf.Float(1),
		},
	}

	if tex != nil {
		img, err := modeler.WriteImage(doc, "terrain", tex.MIME, bytes.NewReader(tex.Data))
		if err != nil {
			return fmt.Errorf("embedding texture: %w", err)
		}
		doc.Samplers = append(doc.Samplers, &gltf.Sampler{
			MagFilter: gltf.MagLinear,
			MinFilter: gltf.MinLinear,
			WrapS:     gltf.WrapClampToEdge,
			WrapT:     gltf.WrapClampToEdge,
		})
		doc.Textures = append(doc.Textures, &gltf.Texture{
			Sampler: gltf.Index(len(doc.Samplers) - 1),
			Source:  gltf.Index(img),
		})
		material.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{
			Index: len(doc.Textures) - 1,
		}
	}

	var idx int
	if geom.VertexCount() <= 65535 {
		short := make([]uint16, len(indices))
		for i, v := range indices {
			short[i] = uint16(v)
		}
		idx = modeler.WriteIndices(doc, short)
	} else {
		idx = modeler.WriteIndices(doc, indices)
	}

	doc.Materials = append(doc.Materials, material)
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: "tile",
		Primitives: []*gltf.Primitive{{
			Attributes: attrs,
			Indices:    gltf.Index(idx),
			Material:   gltf.Index(len(doc.Materials) - 1),
		}},
	})
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: "tile", Mesh: gltf.Index(len(doc.Meshes) - 1)})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)

	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding glb: %w", err)
	}
	return nil
}

// GLB encodes tile geometry as an in-memory binary glTF payload.
func GLB(geom *mesh.Geometry, indices []uint32, tex *Texture) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGLB(&buf, geom, indices, tex); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func vec3s(flat []float32) [][3]float32 {
	out := make([][3]float32, len(flat)/3)
	for i := range out {
		out[i] = [3]float32{flat[3*i], flat[3*i+1], flat[3*i+2]}
	}
	return out
}

func vec2s(flat []float32) [][2]float32 {
	out := make([][2]float32, len(flat)/2)
	for i := range out {
		out[i] = [2]float32{flat[2*i], flat[2*i+1]}
	}
	return out
}
