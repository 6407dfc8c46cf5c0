package recast

// PolyMesh is the polygon mesh of a tile in cell coordinates. Each polygon takes 2*nvp entries of polys:
// nvp vertex indices then nvp neighbour entries, unused slots hold RC_MESH_NULL_IDX.
type PolyMesh struct {
	verts    []int
	polys    []int
	regs     []int
	areas    []int
	nverts   int
	npolys   int
	nvp      int
	maxpolys int
	/** Set from the area ids once the mesh is built. */
	flags      []int
	bmin       []float32
	bmax       []float32
	cs         float32
	ch         float32
	borderSize int
	/** Simplification error of the source contours. */
	maxEdgeError float32
}

func (this *PolyMesh) Get_bmin() []float32 {
	return this.bmin
}
func (this *PolyMesh) Get_bmax() []float32 {
	return this.bmax
}
func (this *PolyMesh) Get_verts() []int {
	return this.verts
}
func (this *PolyMesh) Get_nverts() int {
	return this.nverts
}
func (this *PolyMesh) Get_polys() []int {
	return this.polys
}
func (this *PolyMesh) Get_npolys() int {
	return this.npolys
}
func (this *PolyMesh) Get_areas() []int {
	return this.areas
}
func (this *PolyMesh) Get_flags() []int {
	return this.flags
}
func (this *PolyMesh) Get_nvp() int {
	return this.nvp
}

// PolyMeshDetail adds height detail to a PolyMesh. meshes holds (vertBase, vertCount, triBase, triCount)
// per polygon, tris holds three vertex indices and an edge flag byte per triangle.
type PolyMeshDetail struct {
	meshes  []int
	verts   []float32
	tris    []int
	nmeshes int
	nverts  int
	ntris   int
}

func (this *PolyMeshDetail) Get_nmeshes() int {
	return this.nmeshes
}
func (this *PolyMeshDetail) Get_nverts() int {
	return this.nverts
}
func (this *PolyMeshDetail) Get_ntris() int {
	return this.ntris
}
func (this *PolyMeshDetail) Get_verts() []float32 {
	return this.verts
}
func (this *PolyMeshDetail) Get_meshes() []int {
	return this.meshes
}
func (this *PolyMeshDetail) Get_tris() []int {
	return this.tris
}
