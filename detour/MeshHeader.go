package detour

// MeshHeader describes one tile: where it sits in the grid, how much it holds and the agent it was built for.
type MeshHeader struct {
	/** DT_NAVMESH_MAGIC and DT_NAVMESH_VERSION, checked by AddTile. */
	magic   int
	version int
	/** Grid location, y runs along world z. */
	x         int
	y         int
	layer     int
	userId    int
	polyCount int
	vertCount int
	/** Link capacity, one per edge and two per portal edge. */
	maxLinkCount    int
	detailMeshCount int
	/** Detail vertices beyond the polygon vertices. */
	detailVertCount int
	detailTriCount  int
	/** Used nodes of MeshData bvTree, zero without a tree. */
	bvNodeCount    int
	walkableHeight float32
	walkableRadius float32
	walkableClimb  float32
	/** World bounds of the tile. */
	bmin []float32
	bmax []float32
	/** World to BV tree units. */
	bvQuantFactor float32
}

func (this *MeshHeader) GetX() int {
	return this.x
}
func (this *MeshHeader) GetY() int {
	return this.y
}
func (this *MeshHeader) GetLayer() int {
	return this.layer
}
func (this *MeshHeader) GetPolyCount() int {
	return this.polyCount
}
func (this *MeshHeader) GetVertCount() int {
	return this.vertCount
}
func (this *MeshHeader) GetBvNodeCount() int {
	return this.bvNodeCount
}
func (this *MeshHeader) GetBvQuantFactor() float32 {
	return this.bvQuantFactor
}
func (this *MeshHeader) GetBmin() []float32 {
	return this.bmin
}
func (this *MeshHeader) GetBmax() []float32 {
	return this.bmax
}
