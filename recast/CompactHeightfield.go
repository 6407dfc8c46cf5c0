package recast

// CompactHeightfield stores the open space above walkable spans. Cells index into spans, which run bottom up
// inside a cell; dist, areas and the region ids on spans are parallel to spans.
type CompactHeightfield struct {
	width          int
	height         int
	spanCount      int
	walkableHeight int
	walkableClimb  int
	borderSize     int
	/** Largest value in dist. */
	maxDistance int
	/** One past the largest region id in use. */
	maxRegions int
	bmin       []float32
	bmax       []float32
	cs         float32
	ch         float32
	cells      []CompactCell
	spans      []CompactSpan
	/** Distance to the nearest area border, in chamfer units of half a cell. */
	dist  []int
	areas []int
}

func (this *CompactHeightfield) Get_maxDistance() int {
	return this.maxDistance
}
func (this *CompactHeightfield) Get_maxRegions() int {
	return this.maxRegions
}
func (this *CompactHeightfield) Get_spanCount() int {
	return this.spanCount
}

// WalkableSpanCount counts spans that survived erosion.
func (this *CompactHeightfield) WalkableSpanCount() int {
	n := 0
	for _, a := range this.areas {
		if a != RC_NULL_AREA {
			n++
		}
	}
	return n
}

// neighbour follows the connection of span i in cell (x, z) towards dir and returns the neighbour cell and
// span index, ok is false when the span has no walkable neighbour on that side.
func (this *CompactHeightfield) neighbour(x, z, i, dir int) (nx, nz, ni int, ok bool) {
	con := GetCon(&this.spans[i], dir)
	if con == RC_NOT_CONNECTED {
		return 0, 0, -1, false
	}
	nx = x + GetDirOffsetX(dir)
	nz = z + GetDirOffsetY(dir)
	return nx, nz, this.cells[nx+nz*this.width].index + con, true
}
