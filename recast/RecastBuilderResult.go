package recast

type RecastBuilderResult struct {
	/** The heightfield the meshes were built from, after filtering. */
	solid *Heightfield
	chf   *CompactHeightfield
	cset  *ContourSet
	pmesh *PolyMesh
	/** Nil when the detail mesh was not requested. */
	dmesh *PolyMeshDetail
}

func (this *RecastBuilderResult) GetSolidHeightfield() *Heightfield {
	return this.solid
}
func (this *RecastBuilderResult) GetCompactHeightfield() *CompactHeightfield {
	return this.chf
}
func (this *RecastBuilderResult) GetContourSet() *ContourSet {
	return this.cset
}
func (this *RecastBuilderResult) GetMesh() *PolyMesh {
	return this.pmesh
}

func (this *RecastBuilderResult) GetMeshDetail() *PolyMeshDetail {
	return this.dmesh
}

// IsEmpty reports a tile without any polygon, a valid outcome for fully blocked or empty tiles.
func (this *RecastBuilderResult) IsEmpty() bool {
	return this.pmesh == nil || this.pmesh.npolys == 0
}
