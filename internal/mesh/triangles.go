package mesh

// BuildTriangles remaps raw triangle triples through the index map. A
// triangle referencing any filtered vertex is dropped whole; surviving
// triangles keep their winding order. Degenerate triangles pass through
// untouched, as do duplicates.
func BuildTriangles(raw []uint32, im *IndexMap) []uint32 {
	out := make([]uint32, 0, len(raw))
	for i := 0; i+3 <= len(raw); i += 3 {
		a, okA := im.Final(int(raw[i]))
		b, okB := im.Final(int(raw[i+1]))
		c, okC := im.Final(int(raw[i+2]))
		if !okA || !okB || !okC {
			continue
		}
		out = append(out, a, b, c)
	}
	return out
}
