// Package tileset models the quadtree address space of a dataset and
// renders the 3D Tiles descriptor that indexes it.
package tileset

import "fmt"

// Address identifies one tile in the quadtree. Column 0 is the west edge,
// row 0 the north edge. Level 0 is a single tile covering the dataset's
// whole square bounds.
type Address struct {
	Level  uint32
	Column uint32
	Row    uint32
}

// Valid reports whether the address names an existing tile at or above
// maxLevel.
func (a Address) Valid(maxLevel uint32) bool {
	if a.Level > maxLevel || a.Level > 31 {
		return false
	}
	n := uint32(1) << a.Level
	return a.Column < n && a.Row < n
}

// Children returns the four child addresses in northwest, northeast,
// southwest, southeast order.
func (a Address) Children() [4]Address {
	l, c, r := a.Level+1, a.Column*2, a.Row*2
	return [4]Address{
		{l, c, r},
		{l, c + 1, r},
		{l, c, r + 1},
		{l, c + 1, r + 1},
	}
}

// String returns the address as "level/column/row".
func (a Address) String() string {
	return fmt.Sprintf("%d/%d/%d", a.Level, a.Column, a.Row)
}
