package tileset

import (
	"encoding/json"
	"fmt"
)

// Asset identifies the tileset format version and the glTF up axis.
type Asset struct {
	Version    string `json:"version"`
	GltfUpAxis string `json:"gltfUpAxis"`
}

// BoundingVolume carries the oriented box enclosing a tile: center
// followed by the three half-axis vectors, 12 numbers in all.
type BoundingVolume struct {
	Box [12]float64 `json:"box"`
}

// Content points at a tile's scene payload, relative to the descriptor.
type Content struct {
	URI string `json:"uri"`
}

// Tile is one node of the descriptor tree.
type Tile struct {
	BoundingVolume BoundingVolume `json:"boundingVolume"`
	Refine         string         `json:"refine"`
	GeometricError float64        `json:"geometricError"`
	Content        *Content       `json:"content,omitempty"`
	Children       []*Tile        `json:"children,omitempty"`
}

// Tileset is the root document served as tileset.json.
type Tileset struct {
	Asset          Asset   `json:"asset"`
	GeometricError float64 `json:"geometricError"`
	Root           *Tile   `json:"root"`
}

// Encode renders the descriptor as JSON.
func (ts *Tileset) Encode() ([]byte, error) {
	data, err := json.Marshal(ts)
	if err != nil {
		return nil, fmt.Errorf("encoding tileset descriptor: %w", err)
	}
	return data, nil
}
