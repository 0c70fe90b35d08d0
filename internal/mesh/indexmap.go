package mesh

// invalidIndex marks raw vertices that were filtered out. It never leaves
// this package; callers see the (index, ok) form.
const invalidIndex = -1

// IndexMap records, for every raw triangulation vertex in input order,
// whether it survived filtering and which final vertex index it received.
// Final indices are dense and order-preserving: the k-th surviving raw
// vertex gets index k.
type IndexMap struct {
	final []int32
	valid int
}

func newIndexMap(rawCount int) *IndexMap {
	return &IndexMap{final: make([]int32, 0, rawCount)}
}

func (im *IndexMap) appendValid() uint32 {
	idx := uint32(im.valid)
	im.final = append(im.final, int32(im.valid))
	im.valid++
	return idx
}

func (im *IndexMap) appendInvalid() {
	im.final = append(im.final, invalidIndex)
}

// Final returns the final index assigned to a raw vertex. ok is false for
// filtered vertices and for raw indices outside the map.
func (im *IndexMap) Final(raw int) (uint32, bool) {
	if raw < 0 || raw >= len(im.final) || im.final[raw] == invalidIndex {
		return 0, false
	}
	return uint32(im.final[raw]), true
}

// Len returns the number of raw vertices covered by the map.
func (im *IndexMap) Len() int {
	return len(im.final)
}

// ValidCount returns the number of surviving vertices.
func (im *IndexMap) ValidCount() int {
	return im.valid
}
