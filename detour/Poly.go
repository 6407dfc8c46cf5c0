package detour

// Poly is a convex polygon of a tile. neis holds, per edge, the internal neighbour index+1, DT_EXT_LINK with
// a tile side for portal edges, or zero for a wall.
type Poly struct {
	index     int
	firstLink int
	/** Indices into MeshData verts, the first vertCount are used. */
	verts     []int
	neis      []int
	flags     int
	vertCount int
	/** Area id in the low 6 bits, polygon type in the top 2. */
	areaAndtype int
}

func (this *Poly) Init(index, maxVertsPerPoly int) {
	this.index = index
	this.firstLink = DT_NULL_LINK
	this.verts = make([]int, maxVertsPerPoly)
	this.neis = make([]int, maxVertsPerPoly)
}

func (this *Poly) setArea(a int) {
	this.areaAndtype = (this.areaAndtype & 0xc0) | (a & 0x3f)
}

func (this *Poly) setType(t int) {
	this.areaAndtype = (this.areaAndtype & 0x3f) | (t << 6)
}

func (this *Poly) getArea() int {
	return this.areaAndtype & 0x3f
}

func (this *Poly) getType() int {
	return this.areaAndtype >> 6
}

func (this *Poly) GetArea() int {
	return this.getArea()
}
func (this *Poly) GetFlags() int {
	return this.flags
}

// GetVerts returns the vertex indices into MeshData verts, only the first GetVertCount are used.
func (this *Poly) GetVerts() []int {
	return this.verts[:this.vertCount]
}
func (this *Poly) GetVertCount() int {
	return this.vertCount
}
