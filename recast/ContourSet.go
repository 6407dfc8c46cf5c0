package recast

// Contour is the outline of one region. Vertices are packed as (x, y, z, flags), where flags carry the
// neighbour region and the border bits.
type Contour struct {
	/** Simplified outline. */
	verts  []int
	nverts int
	/** Raw outline before simplification. */
	rverts  []int
	nrverts int
	area    int
	reg     int
}

// ContourSet holds every region outline of a compact heightfield, in its cell space.
type ContourSet struct {
	conts      []*Contour
	bmin       []float32
	bmax       []float32
	cs         float32
	ch         float32
	width      int
	height     int
	borderSize int
	/** Max deviation allowed while simplifying the outlines. */
	maxError float32
}
