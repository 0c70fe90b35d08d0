package tileset

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"github.com/arpentry/relief/internal/geo"
)

func testBuilder() *Builder {
	return &Builder{
		Global: geo.PlanarBounds{
			Min: orb.Point{1000, 2000},
			Max: orb.Point{5096, 6096},
		},
		MinHeight: 100,
		MaxHeight: 500,
		MaxLevel:  2,
		Policy:    ResolutionError{Base: 64, Min: 1},
		Ext:       "glb",
	}
}

func TestBuilder_TreeShape(t *testing.T) {
	ts := testBuilder().Build()

	if ts.Asset.Version != "1.0" || ts.Asset.GltfUpAxis != "Y" {
		t.Errorf("unexpected asset: %+v", ts.Asset)
	}
	if ts.GeometricError != 64 {
		t.Errorf("expected root descriptor error 64, got %f", ts.GeometricError)
	}

	root := ts.Root
	if root.Refine != RefineReplace {
		t.Errorf("expected REPLACE refine, got %q", root.Refine)
	}
	if root.Content == nil || root.Content.URI != "tiles/0/0/0/tile.glb" {
		t.Errorf("unexpected root content: %+v", root.Content)
	}
	if len(root.Children) != 4 {
		t.Fatalf("expected 4 children at level 0, got %d", len(root.Children))
	}

	count := 0
	var walk func(*Tile, uint32)
	walk = func(n *Tile, level uint32) {
		count++
		if n.Refine != RefineReplace {
			t.Errorf("node at level %d: refine %q", level, n.Refine)
		}
		if level == 2 && len(n.Children) != 0 {
			t.Errorf("leaf at level 2 has %d children", len(n.Children))
		}
		if level < 2 && len(n.Children) != 4 {
			t.Errorf("interior node at level %d has %d children", level, len(n.Children))
		}
		for _, c := range n.Children {
			walk(c, level+1)
		}
	}
	walk(root, 0)

	// 1 + 4 + 16 nodes for maxLevel 2.
	if count != 21 {
		t.Errorf("expected 21 nodes, got %d", count)
	}
}

func TestBuilder_GeometricErrorHalves(t *testing.T) {
	ts := testBuilder().Build()

	if ts.Root.GeometricError != 64 {
		t.Errorf("root error = %f, want 64", ts.Root.GeometricError)
	}
	child := ts.Root.Children[0]
	if child.GeometricError != 32 {
		t.Errorf("level 1 error = %f, want 32", child.GeometricError)
	}
	if child.Children[0].GeometricError != 16 {
		t.Errorf("level 2 error = %f, want 16", child.Children[0].GeometricError)
	}
}

func TestBuilder_RootBoundingVolume(t *testing.T) {
	ts := testBuilder().Build()
	box := ts.Root.BoundingVolume.Box

	// The root tile is centered on the dataset, so the planar offsets are
	// zero and Y spans the height range.
	want := [12]float64{
		0, 300, 0,
		2048, 0, 0,
		0, 200, 0,
		0, 0, 2048,
	}
	if box != want {
		t.Errorf("root box = %v, want %v", box, want)
	}
}

func TestBuilder_ChildBoundingVolume(t *testing.T) {
	ts := testBuilder().Build()

	// Child 1/1/0 covers the northeast quadrant: planar center offset
	// (+1024, +1024), so the box center is (+1024, 300, -1024).
	ne := ts.Root.Children[1]
	box := ne.BoundingVolume.Box

	if box[0] != 1024 || box[1] != 300 || box[2] != -1024 {
		t.Errorf("northeast child center = (%f, %f, %f), want (1024, 300, -1024)", box[0], box[1], box[2])
	}
	if box[3] != 1024 || box[7] != 200 || box[11] != 1024 {
		t.Errorf("northeast child half-extents = (%f, %f, %f), want (1024, 200, 1024)", box[3], box[7], box[11])
	}
}

func TestTileset_Encode(t *testing.T) {
	data, err := testBuilder().Build().Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var doc struct {
		Asset struct {
			Version    string `json:"version"`
			GltfUpAxis string `json:"gltfUpAxis"`
		} `json:"asset"`
		GeometricError float64         `json:"geometricError"`
		Root           json.RawMessage `json:"root"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decoding descriptor: %v", err)
	}

	if doc.Asset.Version != "1.0" || doc.Asset.GltfUpAxis != "Y" {
		t.Errorf("unexpected asset in JSON: %+v", doc.Asset)
	}
	if doc.GeometricError != 64 {
		t.Errorf("unexpected descriptor error in JSON: %f", doc.GeometricError)
	}
	if !strings.Contains(string(doc.Root), `"refine":"REPLACE"`) {
		t.Error("expected refine REPLACE in encoded root")
	}
	if !strings.Contains(string(doc.Root), `"uri":"tiles/2/3/3/tile.glb"`) {
		t.Error("expected deepest southeast tile content in encoded root")
	}
}

func TestContentLayout(t *testing.T) {
	addr := Address{Level: 3, Column: 5, Row: 1}

	if got := ContentURI(addr, "b3dm"); got != "tiles/3/5/1/tile.b3dm" {
		t.Errorf("ContentURI = %q", got)
	}

	want := filepath.Join("out", "tiles", "3", "5", "1", "tile.glb")
	if got := ContentPath("out", addr, "glb"); got != want {
		t.Errorf("ContentPath = %q, want %q", got, want)
	}
}
