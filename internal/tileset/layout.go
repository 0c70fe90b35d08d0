package tileset

import (
	"fmt"
	"path/filepath"
	"strconv"
)

// ContentURI returns a tile's content path relative to the descriptor,
// "tiles/{level}/{column}/{row}/tile.{ext}".
func ContentURI(addr Address, ext string) string {
	return fmt.Sprintf("tiles/%d/%d/%d/tile.%s", addr.Level, addr.Column, addr.Row, ext)
}

// ContentPath returns a tile's on-disk path under root, mirroring the
// descriptor layout.
func ContentPath(root string, addr Address, ext string) string {
	return filepath.Join(root, "tiles",
		strconv.FormatUint(uint64(addr.Level), 10),
		strconv.FormatUint(uint64(addr.Column), 10),
		strconv.FormatUint(uint64(addr.Row), 10),
		"tile."+ext)
}
