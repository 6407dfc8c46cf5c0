package detour

// PolyDetail locates the detail triangles of one polygon inside MeshData detailVerts and detailTris.
type PolyDetail struct {
	vertBase  int
	triBase   int
	vertCount int
	triCount  int
}

type MeshData struct {
	/** The tile header. */
	header *MeshHeader
	/** The tile vertices. [Size: MeshHeader::vertCount] */
	verts []float32
	/** The tile polygons. [Size: MeshHeader::polyCount] */
	polys []*Poly
	/** The tile's detail sub-meshes. [Size: MeshHeader::detailMeshCount] */
	detailMeshes []*PolyDetail
	/** The detail mesh's unique vertices. [(x, y, z) * MeshHeader::detailVertCount] */
	detailVerts []float32
	/** The detail mesh's triangles. [(vertA, vertB, vertC) * MeshHeader::detailTriCount] */
	detailTris []int
	/** The tile bounding volume nodes. [Capacity: 2 * polyCount, used: MeshHeader::bvNodeCount] (nil if bounding volumes are disabled.) */
	bvTree []BVNode
}

func (this *MeshData) GetHeader() *MeshHeader {
	return this.header
}
func (this *MeshData) GetVerts() []float32 {
	return this.verts
}
func (this *MeshData) GetPolys() []*Poly {
	return this.polys
}
func (this *MeshData) GetDetailVerts() []float32 {
	return this.detailVerts
}
func (this *MeshData) GetDetailTris() []int {
	return this.detailTris
}

// GetBVTree returns the whole node array, len is the allocated capacity and the header holds the used count.
func (this *MeshData) GetBVTree() []BVNode {
	return this.bvTree
}
