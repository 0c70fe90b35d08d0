package scene

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/arpentry/relief/internal/mesh"
)

func quadGeometry() (*mesh.Geometry, []uint32) {
	geom := &mesh.Geometry{
		Positions:    []float32{0, 0, 0, 1, 0, 0, 0, 1, 0, 1, 1, 0},
		UVs:          []float32{0, 0, 1, 0, 0, 1, 1, 1},
		Normals:      []float32{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1},
		MinElevation: 0,
		MaxElevation: 1,
	}
	return geom, []uint32{0, 1, 2, 1, 3, 2}
}

func testTexture(t *testing.T) *Texture {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	tex, err := EncodeJPEG(img, 90)
	if err != nil {
		t.Fatalf("EncodeJPEG failed: %v", err)
	}
	return tex
}

func decodeGLB(t *testing.T, data []byte) *gltf.Document {
	t.Helper()
	var doc gltf.Document
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		t.Fatalf("decoding glb: %v", err)
	}
	return &doc
}

func TestGLB_Header(t *testing.T) {
	geom, indices := quadGeometry()

	data, err := GLB(geom, indices, nil)
	if err != nil {
		t.Fatalf("GLB failed: %v", err)
	}

	if string(data[0:4]) != "glTF" {
		t.Errorf("magic = %q, want glTF", data[0:4])
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != 2 {
		t.Errorf("version = %d, want 2", v)
	}
	if l := binary.LittleEndian.Uint32(data[8:12]); int(l) != len(data) {
		t.Errorf("declared length = %d, actual %d", l, len(data))
	}
}

func TestGLB_Untextured(t *testing.T) {
	geom, indices := quadGeometry()

	data, err := GLB(geom, indices, nil)
	if err != nil {
		t.Fatalf("GLB failed: %v", err)
	}
	doc := decodeGLB(t, data)

	if len(doc.Meshes) != 1 || len(doc.Meshes[0].Primitives) != 1 {
		t.Fatalf("mesh count = %d, want one mesh with one primitive", len(doc.Meshes))
	}
	prim := doc.Meshes[0].Primitives[0]

	for _, attr := range []string{gltf.POSITION, gltf.NORMAL, gltf.TEXCOORD_0} {
		if _, ok := prim.Attributes[attr]; !ok {
			t.Errorf("primitive missing attribute %s", attr)
		}
	}

	pos := doc.Accessors[prim.Attributes[gltf.POSITION]]
	if pos.Count != 4 {
		t.Errorf("position accessor count = %d, want 4", pos.Count)
	}
	if len(pos.Min) != 3 || len(pos.Max) != 3 {
		t.Errorf("position accessor min/max lengths = %d/%d, want 3/3", len(pos.Min), len(pos.Max))
	}

	if prim.Indices == nil {
		t.Fatal("primitive has no indices accessor")
	}
	idx := doc.Accessors[*prim.Indices]
	if idx.Count != 6 {
		t.Errorf("index accessor count = %d, want 6", idx.Count)
	}
	if idx.ComponentType != gltf.ComponentUshort {
		t.Errorf("index component type = %v, want unsigned short", idx.ComponentType)
	}

	if len(doc.Textures) != 0 || len(doc.Images) != 0 {
		t.Error("untextured tile carries texture objects")
	}
	if prim.Material == nil {
		t.Fatal("primitive has no material")
	}
	mat := doc.Materials[*prim.Material]
	if mat.PBRMetallicRoughness == nil || mat.PBRMetallicRoughness.BaseColorTexture != nil {
		t.Error("untextured material references a base color texture")
	}
}

func TestGLB_Textured(t *testing.T) {
	geom, indices := quadGeometry()

	data, err := GLB(geom, indices, testTexture(t))
	if err != nil {
		t.Fatalf("GLB failed: %v", err)
	}
	doc := decodeGLB(t, data)

	if len(doc.Images) != 1 || len(doc.Textures) != 1 || len(doc.Samplers) != 1 {
		t.Fatalf("images/textures/samplers = %d/%d/%d, want 1/1/1",
			len(doc.Images), len(doc.Textures), len(doc.Samplers))
	}
	if mime := doc.Images[0].MimeType; mime != "image/jpeg" {
		t.Errorf("image mime type = %q, want image/jpeg", mime)
	}

	s := doc.Samplers[0]
	if s.WrapS != gltf.WrapClampToEdge || s.WrapT != gltf.WrapClampToEdge {
		t.Error("sampler does not clamp to edge")
	}

	prim := doc.Meshes[0].Primitives[0]
	mat := doc.Materials[*prim.Material]
	if mat.PBRMetallicRoughness.BaseColorTexture == nil {
		t.Fatal("textured material has no base color texture")
	}
	if mat.PBRMetallicRoughness.BaseColorTexture.Index != 0 {
		t.Errorf("base color texture index = %d, want 0",
			mat.PBRMetallicRoughness.BaseColorTexture.Index)
	}
}

func TestGLB_WideIndices(t *testing.T) {
	n := 65537
	geom := &mesh.Geometry{
		Positions: make([]float32, n*3),
		UVs:       make([]float32, n*2),
		Normals:   make([]float32, n*3),
	}
	indices := []uint32{0, 1, uint32(n - 1)}

	data, err := GLB(geom, indices, nil)
	if err != nil {
		t.Fatalf("GLB failed: %v", err)
	}
	doc := decodeGLB(t, data)

	prim := doc.Meshes[0].Primitives[0]
	idx := doc.Accessors[*prim.Indices]
	if idx.ComponentType != gltf.ComponentUint {
		t.Errorf("index component type = %v, want unsigned int", idx.ComponentType)
	}
}

func TestGLB_EmptyMesh(t *testing.T) {
	geom, _ := quadGeometry()

	if _, err := GLB(geom, nil, nil); !errors.Is(err, ErrEmptyMesh) {
		t.Fatalf("error = %v, want ErrEmptyMesh", err)
	}
}
